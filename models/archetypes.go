package models

// AllAverageID is the sentinel archetype id for the population-wide
// baseline row.
const AllAverageID = "All_Average"

// Archetype describes one of the nine predefined employer archetypes.
type Archetype struct {
	ID         string `json:"id"`
	FamilyID   string `json:"familyId"`
	Name       string `json:"name"`
	FamilyName string `json:"familyName"`
	HexColor   string `json:"hexColor"`
	ShortDesc  string `json:"shortDescription"`
}

// Archetypes is the fixed registry of employer archetypes, grouped into
// three families (a: strategists, b: pragmatists, c: logisticians).
var Archetypes = []Archetype{
	{ID: "a1", FamilyID: "a", Name: "Savvy Healthcare Navigators", FamilyName: "Strategists", HexColor: "#3b82f6", ShortDesc: "Engaged workforces that use the right care at the right time."},
	{ID: "a2", FamilyID: "a", Name: "Complex Condition Managers", FamilyName: "Strategists", HexColor: "#2563eb", ShortDesc: "High-acuity populations managed through coordinated specialty care."},
	{ID: "a3", FamilyID: "a", Name: "Proactive Care Consumers", FamilyName: "Strategists", HexColor: "#1d4ed8", ShortDesc: "Prevention-forward members with strong primary care attachment."},
	{ID: "b1", FamilyID: "b", Name: "Resourceful Adapters", FamilyName: "Pragmatists", HexColor: "#10b981", ShortDesc: "Cost-conscious members who adapt utilization to benefit design."},
	{ID: "b2", FamilyID: "b", Name: "Care Channel Optimizers", FamilyName: "Pragmatists", HexColor: "#059669", ShortDesc: "Members who favor convenient, lower-cost sites of care."},
	{ID: "b3", FamilyID: "b", Name: "Engaged Benefit Utilizers", FamilyName: "Pragmatists", HexColor: "#047857", ShortDesc: "Steady utilizers who respond well to plan steering."},
	{ID: "c1", FamilyID: "c", Name: "Scalable Access Seekers", FamilyName: "Logisticians", HexColor: "#f59e0b", ShortDesc: "Distributed workforces constrained by geographic access."},
	{ID: "c2", FamilyID: "c", Name: "Urgent Care Defaulters", FamilyName: "Logisticians", HexColor: "#d97706", ShortDesc: "Episodic utilizers who default to urgent and emergency channels."},
	{ID: "c3", FamilyID: "c", Name: "Under-Engaged Populations", FamilyName: "Logisticians", HexColor: "#b45309", ShortDesc: "Low-engagement members with untapped preventive opportunity."},
}

// ArchetypeByID returns the archetype definition for an id, if registered.
func ArchetypeByID(id string) (Archetype, bool) {
	for _, a := range Archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Archetype{}, false
}

// IsValidArchetypeID reports whether id names a registered archetype.
func IsValidArchetypeID(id string) bool {
	_, ok := ArchetypeByID(id)
	return ok
}

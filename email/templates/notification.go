// Package templates provides the internal team notification template
package templates

import (
	"fmt"
	"html/template"
	"time"
)

// TeamNotificationProps holds the dynamic data for the internal
// notification email.
type TeamNotificationProps struct {
	RequesterName string
	RequesterOrg  string
	Email         string
	ArchetypeID   string
	ArchetypeName string
	RequestedAt   time.Time
}

// GetTeamNotificationContent generates the HTML content summarizing a new
// report request for the internal team.
func GetTeamNotificationContent(props TeamNotificationProps) string {
	esc := template.HTMLEscapeString

	return GetParagraph("A new full report was requested:") +
		GetParagraph(fmt.Sprintf("<strong>Requester:</strong> %s", esc(props.RequesterName))) +
		GetParagraph(fmt.Sprintf("<strong>Organization:</strong> %s", esc(props.RequesterOrg))) +
		GetParagraph(fmt.Sprintf("<strong>Email:</strong> %s", esc(props.Email))) +
		GetParagraph(fmt.Sprintf("<strong>Archetype:</strong> %s (%s)", esc(props.ArchetypeName), esc(props.ArchetypeID))) +
		GetParagraph(fmt.Sprintf("<strong>Requested at:</strong> %s", props.RequestedAt.Format(time.RFC1123)))
}

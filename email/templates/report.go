// Package templates provides the report-ready email template
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"
)

// ReportEmailProps holds the dynamic data for the report-ready email.
type ReportEmailProps struct {
	Name          string
	ArchetypeName string
	AccessURL     string
	ExpiresAt     time.Time
	TrackingURL   string
}

// reportGreetingTmpl is a pre-parsed template for the greeting.
// Using html/template automatically escapes the user-provided name.
var reportGreetingTmpl = template.Must(template.New("reportGreeting").Parse("Hello {{.}},"))

// GetReportEmailContent generates the HTML content for the report-ready
// email, including the tracking-pixel reference.
func GetReportEmailContent(props ReportEmailProps) string {
	name := props.Name
	if name == "" {
		name = "there"
	}

	var greeting bytes.Buffer
	if err := reportGreetingTmpl.Execute(&greeting, name); err != nil {
		log.Printf("ERROR: Failed to render report email greeting: %v", err)
		greeting.Reset()
		greeting.WriteString("Hello there,")
	}

	archetypeName := template.HTMLEscapeString(props.ArchetypeName)

	content := GetParagraph(greeting.String()) +
		GetParagraph(fmt.Sprintf("Your full <strong>%s</strong> report is ready. It compares your organization's healthcare cost, utilization, and risk profile against the archetype average.", archetypeName)) +
		GetButton(ButtonProps{
			Text: "View Your Report",
			URL:  props.AccessURL,
		}) +
		GetParagraph(fmt.Sprintf("This link is unique to your organization and expires on %s.", props.ExpiresAt.Format("January 2, 2006"))) +
		GetParagraph("If the button doesn't work, copy and paste this address into your browser:") +
		GetParagraph(fmt.Sprintf(`<a href="%s">%s</a>`, props.AccessURL, props.AccessURL))

	if props.TrackingURL != "" {
		content += fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none;" />`, props.TrackingURL)
	}

	return content
}

// Package email provides the transactional email client
package email

import (
	"fmt"
	"time"

	"github.com/resendlabs/resend-go"

	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/email/templates"
)

// ReportEmailProps holds the dynamic data for a report-ready email.
type ReportEmailProps struct {
	Name          string
	To            string
	ArchetypeID   string
	ArchetypeName string
	AccessURL     string
	AccessToken   string
	ExpiresAt     time.Time
}

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

type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
	teamEmail string
	origin    string
}

func NewClient() (*Client, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &Client{
		resend:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.EmailFrom,
		fromName:  config.EmailFromName,
		teamEmail: config.TeamEmail,
		origin:    config.SiteOrigin,
	}, nil
}

// SendReportReady sends the user-facing report email with the tracking
// pixel reference embedded.
func (c *Client) SendReportReady(props ReportEmailProps) error {
	subject := fmt.Sprintf("Your %s report is ready", props.ArchetypeName)

	content := templates.GetReportEmailContent(templates.ReportEmailProps{
		Name:          props.Name,
		ArchetypeName: props.ArchetypeName,
		AccessURL:     props.AccessURL,
		ExpiresAt:     props.ExpiresAt,
		TrackingURL:   c.trackingURL(props.ArchetypeID, props.AccessToken),
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{props.To},
		Subject: subject,
		Html:    htmlContent,
	}

	if _, err := c.resend.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

// SendTeamNotification sends the internal summary of a new report request.
// No-op when no team address is configured.
func (c *Client) SendTeamNotification(props TeamNotificationProps) error {
	if c.teamEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New report request: %s (%s)", props.RequesterOrg, props.ArchetypeID)

	content := templates.GetTeamNotificationContent(templates.TeamNotificationProps{
		RequesterName: props.RequesterName,
		RequesterOrg:  props.RequesterOrg,
		Email:         props.Email,
		ArchetypeID:   props.ArchetypeID,
		ArchetypeName: props.ArchetypeName,
		RequestedAt:   props.RequestedAt,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.teamEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	if _, err := c.resend.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send team notification: %w", err)
	}
	return nil
}

func (c *Client) trackingURL(archetypeID, token string) string {
	return fmt.Sprintf("%s/functions/v1/track-access/%s/%s", c.origin, archetypeID, token)
}

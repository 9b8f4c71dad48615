// Package mailer delivers test sends of a generated template, either through
// Postmark or, without credentials, to files on disk.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrFailedToSend  = errors.New("mailer: failed to send email")
	ErrInvalidConfig = errors.New("mailer: invalid config")
	ErrInvalidParams = errors.New("mailer: invalid email params")
)

// EmailSender sends a single HTML email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
	// Template is the session or file name the body came from.
	Template string `json:"template,omitempty"`
}

// TestTag marks every test send of a template.
const TestTag = "mailcraft-test"

// NewTestParams builds the test send of a template named name.
func NewTestParams(to, name, html string) SendEmailParams {
	return SendEmailParams{
		SendTo:   to,
		Subject:  "[mailcraft test] " + name,
		BodyHTML: html,
		Tag:      TestTag,
		Template: name,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidAddress(addr string) bool {
	return emailRegex.MatchString(addr)
}

func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.SendTo) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	case !ValidAddress(p.SendTo):
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidParams, p.SendTo)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyHTML) == "":
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// Config selects and configures the sender.
type Config struct {
	PostmarkServerToken  string
	PostmarkAccountToken string
	SenderEmail          string
	SupportEmail         string
	MessageStream        string
	DevOutputDir         string

	// PostmarkBaseURL overrides the API endpoint.
	PostmarkBaseURL string
}

// New returns a Postmark sender when a server token is configured and a
// DevSender writing to DevOutputDir otherwise.
func New(cfg Config) (EmailSender, error) {
	if cfg.PostmarkServerToken != "" {
		return NewPostmarkSender(cfg)
	}
	if cfg.DevOutputDir == "" {
		return nil, fmt.Errorf("%w: no Postmark token and no dev output directory", ErrInvalidConfig)
	}
	return NewDevSender(cfg.DevOutputDir), nil
}

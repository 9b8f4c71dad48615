package mailer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/postmark"
)

const (
	// defaultStream is Postmark's transactional stream.
	defaultStream = "outbound"

	// TemplateHeader names the template a test send was built from so it can
	// be found in the Postmark activity feed.
	TemplateHeader = "X-Mailcraft-Template"
)

type postmarkSender struct {
	client  *postmark.Client
	from    string
	replyTo string
	stream  string
}

func (c Config) checkPostmark() error {
	switch {
	case c.PostmarkServerToken == "":
		return fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	case c.SenderEmail == "":
		return fmt.Errorf("%w: sender email is required", ErrInvalidConfig)
	case !ValidAddress(c.SenderEmail):
		return fmt.Errorf("%w: sender email must be a valid email address", ErrInvalidConfig)
	case c.SupportEmail != "" && !ValidAddress(c.SupportEmail):
		return fmt.Errorf("%w: support email must be a valid email address", ErrInvalidConfig)
	}
	return nil
}

func NewPostmarkSender(cfg Config) (EmailSender, error) {
	if err := cfg.checkPostmark(); err != nil {
		return nil, err
	}

	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	if cfg.PostmarkBaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.PostmarkBaseURL, "/")
	}
	stream := cfg.MessageStream
	if stream == "" {
		stream = defaultStream
	}

	return &postmarkSender{
		client:  client,
		from:    cfg.SenderEmail,
		replyTo: cfg.SupportEmail,
		stream:  stream,
	}, nil
}

// message maps a test send onto a Postmark email. Opens and links are never
// tracked so the rendered template matches what the builder produced.
func (s *postmarkSender) message(params SendEmailParams) postmark.Email {
	email := postmark.Email{
		From:          s.from,
		ReplyTo:       s.replyTo,
		To:            params.SendTo,
		Subject:       params.Subject,
		Tag:           params.Tag,
		HTMLBody:      params.BodyHTML,
		TrackLinks:    "None",
		MessageStream: s.stream,
		Metadata: map[string]string{
			"html_bytes": strconv.Itoa(len(params.BodyHTML)),
		},
	}
	if params.Template != "" {
		email.Headers = []postmark.Header{{Name: TemplateHeader, Value: params.Template}}
		email.Metadata["template"] = params.Template
	}
	return email
}

func (s *postmarkSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	_, err := s.client.SendEmail(ctx, s.message(params))
	var apiErr postmark.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: Postmark rejected the email (code %d): %s", ErrFailedToSend, apiErr.ErrorCode, apiErr.Message)
	case err != nil:
		return errors.Join(ErrFailedToSend, err)
	}
	return nil
}

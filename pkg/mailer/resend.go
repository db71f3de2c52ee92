package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const defaultResendTimeout = 10 * time.Second

// ResendOptions configures the Resend client. BaseURL overrides the API root.
type ResendOptions struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// ResendSender delivers messages through the Resend email API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(opts ResendOptions) (*ResendSender, error) {
	if opts.APIKey == "" {
		return nil, errors.New("resend api key required")
	}
	if opts.From == "" {
		return nil, errors.New("from address required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultResendTimeout}
	}

	client := resend.NewCustomClient(opts.HTTPClient, opts.APIKey)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &ResendSender{client: client, from: opts.From}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
)

// SESMailer sends plain-text mail from a verified SES identity.
type SESMailer struct {
	client *ses.Client
	from   string
}

func NewSESMailer(cfg aws.Config, from string) *SESMailer {
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
		},
		Source: aws.String(m.from),
	}
	if _, err := m.client.SendEmail(ctx, input); err != nil {
		log.Error().Err(err).Str(PACKAGE, "utils").Str(FUNC, "send").Msg("SES send error")
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

func (m *SESMailer) SendResetEmail(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("Your password reset code is: %s\n\nUse this in the app to set a new password. The code expires in 30 minutes.", code)
	return m.send(ctx, to, "Password Reset Code", body)
}

func (m *SESMailer) SendWelcomeEmail(ctx context.Context, to, name, tempPassword string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour coach created an account for you.\nEmail: %s\nTemporary password: %s\n\nPlease change it after your first login.", name, to, tempPassword)
	return m.send(ctx, to, "Welcome aboard", body)
}

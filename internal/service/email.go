package service

import (
	"context"
	"fmt"

	"vehicle-rental-desk/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridClient is the part of *sendgrid.Client the e-mail service uses.
type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    sendgridClient
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return newEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newEmailService(client sendgridClient, fromEmail, fromName string) *emailService {
	return &emailService{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (s *emailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

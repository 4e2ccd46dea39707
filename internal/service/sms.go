package service

import (
	"context"
	"fmt"

	"vehicle-rental-desk/internal/logger"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioMessenger interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type smsService struct {
	api  twilioMessenger
	from string
}

func NewSMSService(accountSID, authToken, fromNumber string) SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &smsService{api: client.Api, from: fromNumber}
}

func (s *smsService) Send(_ context.Context, toPhone, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(s.from)
	params.SetBody(body)

	logger.ExternalServiceCall("twilio", "create_message", "to", toPhone)
	_, err := s.api.CreateMessage(params)
	logger.ExternalServiceResult("twilio", "create_message", err, "to", toPhone)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

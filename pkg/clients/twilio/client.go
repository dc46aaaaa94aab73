package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Client defines the interface for sending SMS through Twilio
type Client interface {
	SendSMS(to, body string) (string, error)
}

// messageCreator is the slice of the Twilio REST API the client uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type clientImpl struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

// NewClient creates a new Twilio client sending from the given number
func NewClient(accountSid, authToken, from string, logger *zap.Logger) Client {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return newClient(client.Api, from, logger)
}

func newClient(api messageCreator, from string, logger *zap.Logger) *clientImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clientImpl{api: api, from: from, logger: logger}
}

func (c *clientImpl) SendSMS(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("error sending sms: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	c.logger.Info("sent sms", zap.String("sid", sid))
	return sid, nil
}

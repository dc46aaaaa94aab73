package twilio

import (
	"errors"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSendSMS(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(api, "+15550100", nil)

	sid, err := c.SendSMS("+15550199", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "+15550199", *api.params.To)
	assert.Equal(t, "+15550100", *api.params.From)
	assert.Equal(t, "hello", *api.params.Body)
}

func TestSendSMSError(t *testing.T) {
	c := newClient(&fakeAPI{err: errors.New("invalid number")}, "+15550100", nil)
	_, err := c.SendSMS("nope", "hello")
	assert.ErrorContains(t, err, "invalid number")
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDemoType(t *testing.T) {
	for _, s := range []string{"live", "video", "assessment"} {
		dt, err := ParseDemoType(s)
		require.NoError(t, err)
		assert.Equal(t, DemoType(s), dt)
	}

	_, err := ParseDemoType("Live")
	assert.ErrorIs(t, err, ErrUnknownDemoType)
	_, err = ParseDemoType("")
	assert.ErrorIs(t, err, ErrUnknownDemoType)
}

func TestComplete(t *testing.T) {
	date := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	contact := DemoRequest{Name: "Jane Doe", Email: "jane@x.com", Company: "Acme Health"}

	tests := []struct {
		name     string
		req      func() DemoRequest
		complete bool
	}{
		{"assessment with contact", func() DemoRequest {
			r := contact
			r.DemoType = DemoAssessment
			return r
		}, true},
		{"video with contact", func() DemoRequest {
			r := contact
			r.DemoType = DemoVideo
			return r
		}, true},
		{"live without schedule", func() DemoRequest {
			r := contact
			r.DemoType = DemoLive
			return r
		}, false},
		{"live with schedule", func() DemoRequest {
			r := contact
			r.DemoType = DemoLive
			r.ScheduledDate = &date
			r.ScheduledTime = "9:00 AM EST"
			return r
		}, true},
		{"missing company", func() DemoRequest {
			r := contact
			r.Company = ""
			r.DemoType = DemoAssessment
			return r
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.complete, tt.req().Complete())
		})
	}
}

func TestMissingUsesJSONNames(t *testing.T) {
	r := DemoRequest{Email: "jane@x.com", DemoType: DemoLive}
	assert.Equal(t, []string{"name", "company", "scheduled_date", "scheduled_time"}, r.Missing(RequiredFields(DemoLive)...))
}

func TestInvalidOptions(t *testing.T) {
	r := DemoRequest{Role: "Practice Manager", TeamSize: "51-200 employees", ScheduledTime: "3:00 PM EST"}
	assert.Empty(t, r.InvalidOptions())

	r = DemoRequest{Role: "Astronaut", TeamSize: "51-200 employees", ScheduledTime: "3:30 PM EST"}
	assert.Equal(t, []string{"role", "scheduled_time"}, r.InvalidOptions())
}

func TestRequiredFieldsAreCopies(t *testing.T) {
	f := ContactFields()
	f[0] = "Phone"
	assert.Equal(t, "Name", ContactFields()[0])
}

package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/services"
)

func render(t *testing.T, snap services.Snapshot, errMsg string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Wizard(snap, models.DefaultCatalog(), "/api/demo/sessions/s1", errMsg).Render(context.Background(), &buf))
	return buf.String()
}

func TestWizardContactStep(t *testing.T) {
	html := render(t, services.Snapshot{
		SessionID:  "s1",
		DemoType:   models.DemoLive,
		Title:      "Schedule Live Demo",
		Step:       "contact",
		StepNumber: 1,
		StepCount:  3,
		Request:    models.DemoRequest{Name: "Jane <Doe>", Role: "IT Director"},
	}, "")

	assert.Contains(t, html, "Your Information")
	assert.Contains(t, html, `value="Jane &lt;Doe&gt;"`)
	assert.Contains(t, html, "<option selected>IT Director</option>")
	assert.Contains(t, html, `hx-post="/api/demo/sessions/s1/next"`)
	assert.Contains(t, html, " disabled>Next Step</button>")
	assert.NotContains(t, html, "Previous")
	assert.Equal(t, 3, bytes.Count([]byte(html), []byte("<li")))
}

func TestWizardSchedulingStep(t *testing.T) {
	date := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	html := render(t, services.Snapshot{
		SessionID:  "s1",
		DemoType:   models.DemoLive,
		Step:       "scheduling",
		StepNumber: 3,
		StepCount:  3,
		CanAdvance: true,
		Request:    models.DemoRequest{ScheduledDate: &date, ScheduledTime: "2:00 PM EST"},
	}, "scheduled_date: demos run on weekdays only")

	assert.Contains(t, html, `value="2026-10-19"`)
	assert.Contains(t, html, "<option selected>2:00 PM EST</option>")
	assert.Contains(t, html, ">Confirm Demo</button>")
	assert.Contains(t, html, "Previous")
	assert.Contains(t, html, "weekdays only")
}

func TestWizardVideoAndSubmitted(t *testing.T) {
	info := models.DefaultCatalog().Demo(models.DemoVideo)
	html := render(t, services.Snapshot{
		DemoType: models.DemoVideo,
		Step:     "contact",
		Content:  &info,
	}, "")
	assert.Contains(t, html, info.VideoURL)
	assert.Contains(t, html, "Schedule Live Demo")

	html = render(t, services.Snapshot{
		DemoType:     models.DemoAssessment,
		Step:         "submitted",
		Confirmation: "We'll contact you within 24 hours with next steps.",
	}, "")
	assert.Contains(t, html, "Request Submitted Successfully!")
	assert.Contains(t, html, "within 24 hours")
	assert.NotContains(t, html, "<form")
}

func TestNextLabel(t *testing.T) {
	assert.Equal(t, "Schedule Time", nextLabel(services.Snapshot{Step: "qualification", DemoType: models.DemoLive}))
	assert.Equal(t, "Submit Request", nextLabel(services.Snapshot{Step: "qualification", DemoType: models.DemoAssessment}))
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Len(t, c.Roles, 6)
	assert.Len(t, c.TeamSizes, 5)
	assert.Len(t, c.TimeSlots, 7)
	assert.Equal(t, 30*time.Minute, c.LiveDuration)
	assert.Equal(t, "Get Free Assessment", c.Demo(DemoAssessment).Title)
	assert.Equal(t, 12*time.Minute, c.Demo(DemoVideo).Duration)
	assert.NotEmpty(t, c.Demo(DemoVideo).Highlights)

	assert.True(t, c.Contains("time_slots", "1:00 PM EST"))
	assert.False(t, c.Contains("time_slots", "12:00 PM EST"))
	assert.False(t, c.Contains("colors", "blue"))
}

func TestParseCatalog(t *testing.T) {
	_, err := ParseCatalog([]byte("roles: [a]\nteam_sizes: [b]\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("roles: [a]\nteam_sizes: [b]\ntime_slots: [c]\ndemos:\n  live: {title: x}\n"))
	assert.ErrorContains(t, err, "video")

	c, err := ParseCatalog([]byte(`
roles: [a]
team_sizes: [b]
time_slots: [c]
demos:
  live: {title: L}
  video: {title: V}
  assessment: {title: A}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, c.Options("time_slots"))
}

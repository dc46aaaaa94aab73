package models

import (
	"fmt"
	"time"
)

// DemoType selects which demo a prospect asked for
type DemoType string

const (
	DemoLive       DemoType = "live"
	DemoVideo      DemoType = "video"
	DemoAssessment DemoType = "assessment"
)

// ParseDemoType converts user input into a DemoType
func ParseDemoType(s string) (DemoType, error) {
	switch t := DemoType(s); t {
	case DemoLive, DemoVideo, DemoAssessment:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDemoType, s)
}

// StatusPending is the only status a request ever carries; follow-up happens outside this service
const StatusPending = "pending"

// DemoRequest is what a prospect submits to request a sales demonstration
type DemoRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Company string `json:"company" validate:"required"`
	Phone   string `json:"phone,omitempty"`

	Role     string `json:"role,omitempty" validate:"omitempty,catalog=roles"`
	TeamSize string `json:"team_size,omitempty" validate:"omitempty,catalog=team_sizes"`

	CurrentChallenges string `json:"current_challenges,omitempty"`
	AdditionalNotes   string `json:"additional_notes,omitempty"`

	// Scheduling fields, live demos only
	ScheduledDate *time.Time `json:"scheduled_date,omitempty" validate:"required"`
	ScheduledTime string     `json:"scheduled_time,omitempty" validate:"required,catalog=time_slots"`

	DemoType    DemoType  `json:"demo_type"`
	RequestedAt time.Time `json:"requested_at,omitzero"`
	Status      string    `json:"status,omitempty"`
}

var (
	contactFields    = []string{"Name", "Email", "Company"}
	schedulingFields = []string{"ScheduledDate", "ScheduledTime"}
)

// ContactFields lists the fields every demo request needs
func ContactFields() []string {
	return append([]string(nil), contactFields...)
}

// SchedulingFields lists the fields only a live demo needs
func SchedulingFields() []string {
	return append([]string(nil), schedulingFields...)
}

// RequiredFields returns the Go field names that must be set before a request of
// type t counts as complete.
func RequiredFields(t DemoType) []string {
	fields := ContactFields()
	if t == DemoLive {
		fields = append(fields, schedulingFields...)
	}
	return fields
}

// Complete reports whether every field required for the request's demo type is set
func (r DemoRequest) Complete() bool {
	return len(r.Missing(RequiredFields(r.DemoType)...)) == 0
}

// Missing validates the named fields and returns the json names of those that fail
func (r DemoRequest) Missing(fields ...string) []string {
	return invalidFields(validate.StructPartial(r, fields...))
}

// InvalidOptions returns the json names of enumerated fields whose values are
// not in the catalog. Empty values are allowed here; Missing handles required.
func (r DemoRequest) InvalidOptions() []string {
	var bad []string
	for _, f := range []struct{ name, set, value string }{
		{"role", "roles", r.Role},
		{"team_size", "team_sizes", r.TeamSize},
		{"scheduled_time", "time_slots", r.ScheduledTime},
	} {
		if f.value == "" {
			continue
		}
		if err := validate.Var(f.value, "catalog="+f.set); err != nil {
			bad = append(bad, f.name)
		}
	}
	return bad
}

// Ack is the acknowledgement a submission backend returns
type Ack struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

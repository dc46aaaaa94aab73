// Package wizard implements the step state machine behind the demo-request modal.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/aihealthrcm/demo-desk/pkg/models"
)

// Step identifies the screen the wizard is showing.
type Step int

const (
	StepContact Step = iota + 1
	StepQualification
	StepScheduling
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepQualification:
		return "qualification"
	case StepScheduling:
		return "scheduling"
	case StepSubmitted:
		return "submitted"
	}
	return "unknown"
}

// DateLayout is the wire format of scheduled dates.
const DateLayout = "2006-01-02"

// Submitter accepts a completed demo request.
type Submitter interface {
	Submit(ctx context.Context, req models.DemoRequest) (models.Ack, error)
}

// Patch carries field updates. Nil fields are left alone; an empty string clears.
type Patch struct {
	Name              *string `json:"name,omitempty" form:"name"`
	Email             *string `json:"email,omitempty" form:"email"`
	Company           *string `json:"company,omitempty" form:"company"`
	Phone             *string `json:"phone,omitempty" form:"phone"`
	Role              *string `json:"role,omitempty" form:"role"`
	TeamSize          *string `json:"team_size,omitempty" form:"team_size"`
	CurrentChallenges *string `json:"current_challenges,omitempty" form:"current_challenges"`
	AdditionalNotes   *string `json:"additional_notes,omitempty" form:"additional_notes"`
	ScheduledDate     *string `json:"scheduled_date,omitempty" form:"scheduled_date"`
	ScheduledTime     *string `json:"scheduled_time,omitempty" form:"scheduled_time"`
}

// Wizard owns one DemoRequest while a modal is open. It is not safe for
// concurrent use; callers serialise access.
type Wizard struct {
	variant Variant
	step    Step
	req     models.DemoRequest
	ack     *models.Ack
	lastErr error
	now     func() time.Time
}

type Option func(*Wizard)

// WithClock replaces time.Now, used for the scheduling date rules and request timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// New opens a wizard at the contact step with an empty request.
func New(v Variant, opts ...Option) *Wizard {
	w := &Wizard{variant: v, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	w.Reset()
	return w
}

func (w *Wizard) Variant() Variant { return w.variant }
func (w *Wizard) Step() Step       { return w.step }

// Request returns a copy of the request being collected.
func (w *Wizard) Request() models.DemoRequest {
	req := w.req
	if req.ScheduledDate != nil {
		d := *req.ScheduledDate
		req.ScheduledDate = &d
	}
	return req
}

// Ack is set once the request has been submitted.
func (w *Wizard) Ack() *models.Ack { return w.ack }

// LastError is the most recent submission failure, cleared on success or reset.
func (w *Wizard) LastError() error { return w.lastErr }

// StepCount is the number of steps before the terminal state.
func (w *Wizard) StepCount() int { return int(w.variant.FinalStep()) }

// Reset discards the request and returns to the contact step.
func (w *Wizard) Reset() {
	w.step = StepContact
	w.req = models.DemoRequest{DemoType: w.variant.Type()}
	w.ack = nil
	w.lastErr = nil
}

// Reopen resets the wizard for a different demo type.
func (w *Wizard) Reopen(v Variant) {
	w.variant = v
	w.Reset()
}

// Blocking returns the fields that keep the current step from moving forward.
func (w *Wizard) Blocking() []string {
	switch w.step {
	case StepContact:
		return w.req.Missing(models.ContactFields()...)
	case w.variant.FinalStep():
		return w.req.Missing(models.RequiredFields(w.variant.Type())...)
	}
	return nil
}

// Next runs the current step's forward action. On the final step it submits
// the request through sub and enters StepSubmitted only once sub acknowledges.
func (w *Wizard) Next(ctx context.Context, sub Submitter) (Step, error) {
	if w.step == StepSubmitted {
		return w.step, ErrTerminal
	}
	if missing := w.Blocking(); len(missing) > 0 {
		return w.step, &ValidationError{Step: w.step, Fields: missing, Reason: "required"}
	}
	if w.step != w.variant.FinalStep() {
		w.step++
		return w.step, nil
	}
	return w.submit(ctx, sub)
}

func (w *Wizard) submit(ctx context.Context, sub Submitter) (Step, error) {
	if sub == nil {
		w.lastErr = errors.New("no submission backend")
		return w.step, &TransportError{Err: w.lastErr}
	}
	req := w.Request()
	req.DemoType = w.variant.Type()
	req.RequestedAt = w.now().UTC()
	req.Status = models.StatusPending

	ack, err := sub.Submit(ctx, req)
	if err != nil {
		w.lastErr = err
		return w.step, &TransportError{Err: err}
	}
	w.req = req
	w.ack = &ack
	w.lastErr = nil
	w.step = StepSubmitted
	return w.step, nil
}

// Back moves one step back. It never validates and never touches field values.
func (w *Wizard) Back() (Step, error) {
	if w.step == StepSubmitted {
		return w.step, ErrTerminal
	}
	if w.step > StepContact {
		w.step--
	}
	return w.step, nil
}

// Update applies p atomically: if any field is rejected nothing changes.
func (w *Wizard) Update(p Patch) error {
	if w.step == StepSubmitted {
		return ErrTerminal
	}
	next := w.Request()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&next.Name, p.Name)
	set(&next.Email, p.Email)
	set(&next.Company, p.Company)
	set(&next.Phone, p.Phone)
	set(&next.Role, p.Role)
	set(&next.TeamSize, p.TeamSize)
	set(&next.CurrentChallenges, p.CurrentChallenges)
	set(&next.AdditionalNotes, p.AdditionalNotes)

	if p.ScheduledDate != nil || p.ScheduledTime != nil {
		if w.variant.Type() != models.DemoLive {
			return &ValidationError{
				Step:   w.step,
				Fields: scheduling(p),
				Reason: "scheduling is only offered for live demos",
			}
		}
		set(&next.ScheduledTime, p.ScheduledTime)
		if p.ScheduledDate != nil {
			date, err := w.parseDate(*p.ScheduledDate)
			if err != nil {
				return err
			}
			next.ScheduledDate = date
		}
	}

	if bad := next.InvalidOptions(); len(bad) > 0 {
		return &ValidationError{Step: w.step, Fields: bad, Reason: "not an offered option", Err: models.ErrUnknownOption}
	}
	w.req = next
	return nil
}

// parseDate accepts weekdays strictly after today, as YYYY-MM-DD or a midnight
// RFC 3339 timestamp; an empty string clears the date.
func (w *Wizard) parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	invalid := func(reason string) error {
		return &ValidationError{Step: w.step, Fields: []string{"scheduled_date"}, Reason: reason}
	}
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		// snapshots encode the date as an RFC 3339 midnight timestamp
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil || ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 || ts.Nanosecond() != 0 {
			return nil, invalid("expected YYYY-MM-DD")
		}
		date = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	y, m, d := w.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !date.After(today) {
		return nil, invalid("date must be after today")
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil, invalid("demos run on weekdays only")
	}
	return &date, nil
}

func scheduling(p Patch) []string {
	var fields []string
	if p.ScheduledDate != nil {
		fields = append(fields, "scheduled_date")
	}
	if p.ScheduledTime != nil {
		fields = append(fields, "scheduled_time")
	}
	return fields
}

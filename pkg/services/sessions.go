package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aihealthrcm/demo-desk/pkg/clients/airtable"
	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/wizard"
)

var ErrSessionNotFound = errors.New("demo session not found")

// Snapshot is the view of a session handed to hosts after every action
type Snapshot struct {
	SessionID    string             `json:"session_id"`
	DemoType     models.DemoType    `json:"demo_type"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Step         string             `json:"step"`
	StepNumber   int                `json:"step_number"`
	StepCount    int                `json:"step_count"`
	FormSteps    int                `json:"form_steps"`
	Request      models.DemoRequest `json:"request"`
	Blocking     []string           `json:"blocking,omitempty"`
	CanAdvance   bool               `json:"can_advance"`
	Content      *models.DemoInfo   `json:"content,omitempty"`
	Ack          *models.Ack        `json:"ack,omitempty"`
	Confirmation string             `json:"confirmation,omitempty"`
	LastError    string             `json:"last_error,omitempty"`
	Retryable    bool               `json:"retryable,omitempty"`
	ExpiresAt    time.Time          `json:"expires_at"`
}

// Submitted reports whether the wizard reached its terminal state
func (s Snapshot) Submitted() bool {
	return s.Step == wizard.StepSubmitted.String()
}

// SessionOptions tunes session lifetimes
type SessionOptions struct {
	// TTL is how long an untouched session lives
	TTL time.Duration
	// DisplayDuration is how long a submitted session stays readable before it closes
	DisplayDuration time.Duration
	// SubmitTimeout bounds a single forward action that submits
	SubmitTimeout time.Duration
	Clock         func() time.Time
}

type session struct {
	mu         sync.Mutex
	wizard     *wizard.Wizard
	expiresAt  time.Time
	closed     bool
	closeTimer *time.Timer
}

// SessionService owns every open demo wizard. Hosts refer to a wizard only by
// its session id, so the demo type and field values live here rather than in
// the page.
type SessionService struct {
	submitter wizard.Submitter
	catalog   *models.Catalog
	logger    *zap.Logger
	opts      SessionOptions

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionService(submitter wizard.Submitter, catalog *models.Catalog, logger *zap.Logger, opts SessionOptions) *SessionService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 15 * time.Second
	}
	return &SessionService{
		submitter: submitter,
		catalog:   catalog,
		logger:    logger,
		opts:      opts,
		sessions:  make(map[string]*session),
	}
}

// Open starts a wizard for demoType with an empty request
func (svc *SessionService) Open(demoType models.DemoType) (Snapshot, error) {
	v, err := wizard.VariantFor(demoType, svc.catalog)
	if err != nil {
		return Snapshot{}, err
	}

	id := uuid.NewString()
	s := &session{
		wizard:    wizard.New(v, wizard.WithClock(svc.opts.Clock)),
		expiresAt: svc.opts.Clock().Add(svc.opts.TTL),
	}

	svc.mu.Lock()
	svc.sessions[id] = s
	svc.mu.Unlock()

	svc.logger.Info("demo session opened", zap.String("session_id", id), zap.String("demo_type", string(demoType)))

	s.mu.Lock()
	defer s.mu.Unlock()
	return svc.snapshot(id, s), nil
}

func (svc *SessionService) Get(id string) (Snapshot, error) {
	return svc.with(id, func(*session) error { return nil })
}

func (svc *SessionService) Update(id string, p wizard.Patch) (Snapshot, error) {
	return svc.with(id, func(s *session) error {
		return s.wizard.Update(p)
	})
}

// Next runs the forward action. A submission holds the session until the
// backend acknowledges or SubmitTimeout passes.
func (svc *SessionService) Next(ctx context.Context, id string) (Snapshot, error) {
	return svc.with(id, func(s *session) error {
		ctx, cancel := context.WithTimeout(ctx, svc.opts.SubmitTimeout)
		defer cancel()

		step, err := s.wizard.Next(ctx, svc.submitter)
		var terr *wizard.TransportError
		if errors.As(err, &terr) {
			svc.logger.Warn("demo request submission failed", zap.String("session_id", id), zap.Error(terr.Err))
		}
		if err == nil && step == wizard.StepSubmitted {
			svc.logger.Info("demo request submitted",
				zap.String("session_id", id),
				zap.String("ack_id", s.wizard.Ack().ID))
			s.closeTimer = time.AfterFunc(svc.opts.DisplayDuration, func() {
				_ = svc.Close(id)
			})
		}
		return err
	})
}

func (svc *SessionService) Back(id string) (Snapshot, error) {
	return svc.with(id, func(s *session) error {
		_, err := s.wizard.Back()
		return err
	})
}

// SwitchDemoType changes the host-owned demo type and reopens the wizard empty
// for it, keeping the session id.
func (svc *SessionService) SwitchDemoType(id string, demoType models.DemoType) (Snapshot, error) {
	v, err := wizard.VariantFor(demoType, svc.catalog)
	if err != nil {
		return Snapshot{}, err
	}
	return svc.with(id, func(s *session) error {
		if s.closeTimer != nil {
			s.closeTimer.Stop()
			s.closeTimer = nil
		}
		s.wizard.Reopen(v)
		svc.logger.Info("demo session switched", zap.String("session_id", id), zap.String("demo_type", string(demoType)))
		return nil
	})
}

// Close discards the session and everything entered in it
func (svc *SessionService) Close(id string) error {
	svc.mu.Lock()
	s, ok := svc.sessions[id]
	if !ok {
		svc.mu.Unlock()
		return ErrSessionNotFound
	}
	svc.logger.Debug("demo session closed", zap.String("session_id", id))
	delete(svc.sessions, id)
	svc.mu.Unlock()

	s.mu.Lock()
	s.discard()
	s.mu.Unlock()
	return nil
}

// Len reports the number of open sessions
func (svc *SessionService) Len() int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.sessions)
}

// minSweepInterval bounds how often Run scans the session map
const minSweepInterval = time.Second

// Run sweeps expired sessions until ctx is done. Intervals below
// minSweepInterval are raised to it.
func (svc *SessionService) Run(ctx context.Context, interval time.Duration) {
	interval = max(interval, minSweepInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.sweep(); n > 0 {
				svc.logger.Info("expired demo sessions", zap.Int("count", n))
			}
		}
	}
}

func (svc *SessionService) sweep() int {
	now := svc.opts.Clock()

	svc.mu.RLock()
	open := make(map[string]*session, len(svc.sessions))
	for id, s := range svc.sessions {
		open[id] = s
	}
	svc.mu.RUnlock()

	var expired []string
	for id, s := range open {
		s.mu.Lock()
		if now.After(s.expiresAt) {
			expired = append(expired, id)
		}
		s.mu.Unlock()
	}

	for _, id := range expired {
		_ = svc.Close(id)
	}
	return len(expired)
}

func (svc *SessionService) with(id string, fn func(*session) error) (Snapshot, error) {
	svc.mu.RLock()
	s, ok := svc.sessions[id]
	svc.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionNotFound
	}
	if svc.opts.Clock().After(s.expiresAt) {
		s.mu.Unlock()
		_ = svc.Close(id)
		return Snapshot{}, ErrSessionNotFound
	}
	defer s.mu.Unlock()

	err := fn(s)
	s.expiresAt = svc.opts.Clock().Add(svc.opts.TTL)
	return svc.snapshot(id, s), err
}

// snapshot must be called with s.mu held
func (svc *SessionService) snapshot(id string, s *session) Snapshot {
	w := s.wizard
	v := w.Variant()
	info := svc.catalog.Demo(v.Type())
	blocking := w.Blocking()

	snap := Snapshot{
		SessionID:   id,
		DemoType:    v.Type(),
		Title:       info.Title,
		Description: info.Description,
		Step:        w.Step().String(),
		StepNumber:  int(w.Step()),
		StepCount:   w.StepCount(),
		FormSteps:   v.Steps(),
		Request:     w.Request(),
		Blocking:    blocking,
		CanAdvance:  w.Step() != wizard.StepSubmitted && len(blocking) == 0,
		Ack:         w.Ack(),
		ExpiresAt:   s.expiresAt,
	}
	if video, ok := v.(wizard.VideoDemo); ok {
		content := video.Content
		snap.Content = &content
	}
	if w.Step() == wizard.StepSubmitted {
		snap.Confirmation = ConfirmationMessage(snap.Request, svc.catalog)
	}
	if err := w.LastError(); err != nil {
		snap.LastError = err.Error()
		snap.Retryable = userRetryable(err)
	}
	return snap
}

func (s *session) discard() {
	s.closed = true
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	s.wizard.Reset()
}

// userRetryable reports whether pressing the final button again may work.
// Unlike the automatic retries, timeouts count: the prospect chooses to wait.
func userRetryable(err error) bool {
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

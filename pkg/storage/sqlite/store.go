// Package sqlite stores submitted demo requests in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/utils"
)

const timeFormat = time.RFC3339Nano

//go:embed schema.sql
var schema string

// Store is a Submitter that persists each request as a row.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Submit inserts req and acknowledges with the new row id. A lead that already
// requested the same demo type is acknowledged with its existing row id.
func (s *Store) Submit(ctx context.Context, req models.DemoRequest) (models.Ack, error) {
	ack := models.Ack{ID: uuid.NewString(), ReceivedAt: s.now().UTC()}
	leadKey := utils.LeadKey(req.Email)

	var date sql.NullString
	if req.ScheduledDate != nil {
		date = sql.NullString{String: req.ScheduledDate.Format(time.DateOnly), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO demo_requests (
			id, lead_key, demo_type, name, email, company, phone, role, team_size,
			current_challenges, additional_notes, scheduled_date, scheduled_time,
			status, requested_at, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lead_key, demo_type) DO NOTHING`,
		ack.ID, leadKey, string(req.DemoType), req.Name, req.Email, req.Company, req.Phone, req.Role, req.TeamSize,
		req.CurrentChallenges, req.AdditionalNotes, date, req.ScheduledTime,
		req.Status, req.RequestedAt.UTC().Format(timeFormat), ack.ReceivedAt.Format(timeFormat),
	)
	if err != nil {
		return models.Ack{}, fmt.Errorf("insert demo request: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Ack{}, fmt.Errorf("insert demo request: %w", err)
	} else if n > 0 {
		return ack, nil
	}

	id, err := s.findLead(ctx, leadKey, req.DemoType)
	if err != nil {
		return models.Ack{}, err
	}
	ack.ID = id
	return ack, nil
}

// findLead returns the row id of the lead's earlier request for demoType.
func (s *Store) findLead(ctx context.Context, leadKey string, demoType models.DemoType) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM demo_requests WHERE lead_key = ? AND demo_type = ?`,
		leadKey, string(demoType)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("find demo request: %w", err)
	}
	return id, nil
}

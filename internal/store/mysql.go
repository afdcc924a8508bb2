// Package store is the MySQL-backed source of event and attendee records.
// The badge pipeline only reads; the single write path is the QR URL
// rewrite used by cleanup.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/confab/badgeforge/internal/attendee"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// Event is the event row the badge endpoints resolve before rendering.
type Event struct {
	ID       string
	Name     string
	Date     time.Time
	Location string
}

type Store struct {
	db *sql.DB
}

// Open connects and verifies reachability.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Event fetches one event row.
func (s *Store) Event(ctx context.Context, eventID string) (*Event, error) {
	query := `SELECT id, name, date, COALESCE(location, '') FROM events WHERE id = ?`
	var ev Event
	err := s.db.QueryRowContext(ctx, query, eventID).Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("error fetching event %s: %w", eventID, err)
	}
	return &ev, nil
}

// Attendees returns every registration under an event, in registration
// order. Tags are stored as a comma-separated column.
func (s *Store) Attendees(ctx context.Context, eventID string) ([]attendee.Record, error) {
	query := `
		SELECT user_id, full_name, COALESCE(work, ''), COALESCE(linkedin_username, ''),
		       COALESCE(role, ''), COALESCE(ticket_type, ''), COALESCE(tags, ''),
		       COALESCE(qr_code_url, ''), COALESCE(ticket_url, '')
		FROM attendees
		WHERE event_id = ?
		ORDER BY registered_at, user_id
	`
	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying attendees for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var records []attendee.Record
	for rows.Next() {
		var rec attendee.Record
		var tags string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Work, &rec.LinkedInUsername,
			&rec.Role, &rec.TicketType, &tags, &rec.QRCodeURL, &rec.TicketURL); err != nil {
			return nil, fmt.Errorf("error scanning attendee row: %w", err)
		}
		rec.Tags = splitTags(tags)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendee rows: %w", err)
	}
	return records, nil
}

// UpdateQRURL overwrites one attendee's stored QR URL.
func (s *Store) UpdateQRURL(ctx context.Context, eventID, userID, url string) error {
	query := `UPDATE attendees SET qr_code_url = ? WHERE event_id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, query, url, eventID, userID)
	if err != nil {
		return fmt.Errorf("error updating QR URL for %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attendee %s not found under event %s", userID, eventID)
	}
	return nil
}

func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package cleanup repairs attendee rows whose stored QR URL is corrupted:
// credential fragments baked into the string, or values that are not URLs
// at all. Flagged rows are rewritten to the canonical connect link.
package cleanup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/confab/badgeforge/internal/attendee"
)

// Store is the slice of the data layer cleanup needs.
type Store interface {
	Attendees(ctx context.Context, eventID string) ([]attendee.Record, error)
	UpdateQRURL(ctx context.Context, eventID, userID, url string) error
}

// Report summarizes one cleanup run.
type Report struct {
	Scanned   int
	Flagged   int
	Rewritten int
}

// Run scans every attendee of an event and rewrites corrupted QR URLs.
// With dryRun set, rows are flagged and counted but not written.
func Run(ctx context.Context, st Store, eventID, publicBaseURL string, dryRun bool, log *zap.Logger) (Report, error) {
	records, err := st.Attendees(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("error listing attendees: %w", err)
	}

	var report Report
	for _, rec := range records {
		report.Scanned++
		if rec.QRCodeURL == "" || !attendee.QRURLCorrupted(rec.QRCodeURL) {
			continue
		}
		report.Flagged++
		replacement := attendee.ConnectURL(publicBaseURL, rec.ID, eventID)
		log.Info("corrupted QR URL",
			zap.String("attendee", rec.ID),
			zap.String("replacement", replacement),
			zap.Bool("dry_run", dryRun))
		if dryRun {
			continue
		}
		if err := st.UpdateQRURL(ctx, eventID, rec.ID, replacement); err != nil {
			return report, fmt.Errorf("error rewriting QR URL for %s: %w", rec.ID, err)
		}
		report.Rewritten++
	}
	log.Info("cleanup completed",
		zap.Int("scanned", report.Scanned),
		zap.Int("flagged", report.Flagged),
		zap.Int("rewritten", report.Rewritten))
	return report, nil
}

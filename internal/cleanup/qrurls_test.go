package cleanup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/confab/badgeforge/internal/attendee"
)

type fakeStore struct {
	records []attendee.Record
	updates map[string]string
}

func (f *fakeStore) Attendees(ctx context.Context, eventID string) ([]attendee.Record, error) {
	return f.records, nil
}

func (f *fakeStore) UpdateQRURL(ctx context.Context, eventID, userID, url string) error {
	if f.updates == nil {
		f.updates = make(map[string]string)
	}
	f.updates[userID] = url
	return nil
}

func seeded() *fakeStore {
	return &fakeStore{records: []attendee.Record{
		{ID: "clean", QRCodeURL: "https://confab.events/connect?to=clean&event=ev1"},
		{ID: "leaky", QRCodeURL: "https://gen.example/qr?token=sk-abc123"},
		{ID: "keyed", QRCodeURL: "https://gen.example/qr?API_KEY=oops"},
		{ID: "blank", QRCodeURL: ""},
	}}
}

func TestRunRewritesCorruptedURLs(t *testing.T) {
	st := seeded()
	report, err := Run(context.Background(), st, "ev1", "https://confab.events", false, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 2, report.Flagged)
	assert.Equal(t, 2, report.Rewritten)
	assert.Equal(t, "https://confab.events/connect?to=leaky&event=ev1", st.updates["leaky"])
	assert.Equal(t, "https://confab.events/connect?to=keyed&event=ev1", st.updates["keyed"])
	assert.NotContains(t, st.updates, "clean")
	assert.NotContains(t, st.updates, "blank")
}

func TestRunDryRun(t *testing.T) {
	st := seeded()
	report, err := Run(context.Background(), st, "ev1", "https://confab.events", true, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Flagged)
	assert.Zero(t, report.Rewritten)
	assert.Empty(t, st.updates)
}

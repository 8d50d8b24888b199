package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staff = &Identity{UserID: 1, Username: "lhernandez", Name: "Luis Hernandez"}

func TestTransitionToSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x", CitizenEmail: "v@x.com"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	res, err := f.statuses.Transition(ctx, r.PublicID, models.StatusNew, staff)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Report.Comments)
	assert.Equal(t, epoch, res.Report.UpdatedAt)
	assert.Empty(t, f.notifier.statuses)
}

func TestTransitionRecordsAuditComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x", CitizenEmail: "v@x.com"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	res, err := f.statuses.Transition(ctx, r.PublicID, models.StatusDone, staff)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, models.StatusNew, res.From)
	assert.Equal(t, models.StatusDone, res.Report.Status)
	assert.Equal(t, epoch.Add(time.Hour), res.Report.UpdatedAt)

	require.Len(t, res.Report.Comments, 1)
	c := res.Report.Comments[0]
	assert.Equal(t, "Status changed from 'nuevo' to 'finalizado'", c.Content)
	assert.Contains(t, c.Content, "nuevo")
	assert.Contains(t, c.Content, "finalizado")
	require.NotNil(t, c.Author)
	assert.Equal(t, "lhernandez", *c.Author)
	assert.Equal(t, []string{r.PublicID + ":NEW->DONE"}, f.notifier.statuses)
}

func TestAnyStatusCanFollowAnyOther(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x"})
	require.NoError(t, err)

	path := []models.ReportStatus{models.StatusDone, models.StatusNew, models.StatusReassigned, models.StatusInProgress, models.StatusDone}
	for _, to := range path {
		res, err := f.statuses.Transition(ctx, r.PublicID, to, staff)
		require.NoError(t, err)
		assert.True(t, res.Changed)
	}
	got, err := f.reports.Get(ctx, r.PublicID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, len(path))
}

func TestTransitionNotificationFailureKeepsChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x", CitizenEmail: "v@x.com"})
	require.NoError(t, err)

	f.notifier.fail = errSMTPDown
	res, err := f.statuses.Transition(ctx, r.PublicID, models.StatusInProgress, staff)
	assert.ErrorIs(t, err, ErrNotificationFailed)
	require.NotNil(t, res)
	assert.Equal(t, models.StatusInProgress, res.Report.Status)
}

func TestTransitionWithoutCitizenEmailSkipsNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x"})
	require.NoError(t, err)

	f.notifier.fail = errSMTPDown
	_, err = f.statuses.Transition(ctx, r.PublicID, models.StatusInProgress, staff)
	assert.NoError(t, err)
}

func TestTransitionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.statuses.Transition(ctx, "missing", models.StatusDone, staff)
	assert.ErrorIs(t, err, ErrReportNotFound)

	r, err := f.reports.Create(ctx, CreateReportInput{Description: "x"})
	require.NoError(t, err)
	_, err = f.statuses.Transition(ctx, r.PublicID, "ARCHIVED", staff)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCanTransition(t *testing.T) {
	for _, from := range models.AllStatuses() {
		for _, to := range models.AllStatuses() {
			assert.Equal(t, from != to, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

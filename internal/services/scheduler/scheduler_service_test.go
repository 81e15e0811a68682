package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// stubContent counts reconciles and can return integrity errors or fail
type stubContent struct {
	reconciles atomic.Int32
	reportErrs []string
	err        error
}

func (s *stubContent) Reconcile(ctx context.Context) (*models.ScanReport, error) {
	s.reconciles.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ScanReport{Errors: s.reportErrs}, nil
}

func (s *stubContent) Validate(ctx context.Context) []error { return nil }

func (s *stubContent) ValidateUniqueness(ctx context.Context) error { return nil }
func (s *stubContent) GetBySlug(ctx context.Context, slug string) (*models.ContentUnit, error) {
	return nil, models.ErrNotFound
}
func (s *stubContent) ListPosts(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ContentUnit, error) {
	return nil, nil
}
func (s *stubContent) ListPages(ctx context.Context) ([]*models.ContentUnit, error) {
	return nil, nil
}
func (s *stubContent) Tags(ctx context.Context) ([]models.LabelCount, error) { return nil, nil }

func (s *stubContent) Categories(ctx context.Context) ([]models.LabelCount, error) {
	return nil, nil
}
func (s *stubContent) ListRevisions(ctx context.Context, slug string) ([]*models.Revision, error) {
	return nil, nil
}
func (s *stubContent) GetStats(ctx context.Context) (*models.ContentStats, error) {
	return &models.ContentStats{}, nil
}

func TestStartAndStop(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())

	require.NoError(t, svc.Start("0 */5 * * * *"))
	assert.True(t, svc.IsRunning())

	assert.Error(t, svc.Start("0 */5 * * * *"), "double start must fail")

	require.NoError(t, svc.Stop())
	assert.False(t, svc.IsRunning())

	assert.NoError(t, svc.Stop(), "stopping a stopped scheduler is a no-op")
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())
	assert.Error(t, svc.Start("every now and then"))
	assert.Error(t, svc.Start("* * * * * *"), "sub-minute schedules are rejected")
}

func TestTriggerScanNow_RunsReconcile(t *testing.T) {
	content := &stubContent{}
	svc := NewService(content, arbor.NewLogger())
	require.NoError(t, svc.Start("0 */5 * * * *"))
	defer svc.Stop()

	require.NoError(t, svc.TriggerScanNow())
	assert.Equal(t, int32(1), content.reconciles.Load())

	status, err := svc.GetJobStatus(ScanJobName)
	require.NoError(t, err)
	assert.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastError)
	assert.False(t, status.IsRunning)
}

func TestTriggerScanNow_WithoutStart(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())
	assert.Error(t, svc.TriggerScanNow())
}

func TestTriggerScanNow_IntegrityErrorsFailTheRun(t *testing.T) {
	content := &stubContent{reportErrs: []string{"duplicate slug \"winner\""}}
	svc := NewService(content, arbor.NewLogger())
	require.NoError(t, svc.Start("0 */5 * * * *"))
	defer svc.Stop()

	err := svc.TriggerScanNow()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integrity errors")

	status, statusErr := svc.GetJobStatus(ScanJobName)
	require.NoError(t, statusErr)
	assert.NotEmpty(t, status.LastError)
}

func TestTriggerScanNow_ReconcileFailure(t *testing.T) {
	content := &stubContent{err: errors.New("storage offline")}
	svc := NewService(content, arbor.NewLogger())
	require.NoError(t, svc.Start("0 */5 * * * *"))
	defer svc.Stop()

	err := svc.TriggerScanNow()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage offline")
}

func TestRegisterJob(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())

	ran := make(chan struct{}, 1)
	require.NoError(t, svc.RegisterJob("custom", "0 0 * * * *", func() error {
		ran <- struct{}{}
		return nil
	}))

	assert.Error(t, svc.RegisterJob("custom", "0 0 * * * *", func() error { return nil }),
		"duplicate name must fail")
	assert.Error(t, svc.RegisterJob("bad", "*/2 * * * * *", func() error { return nil }),
		"sub-minute schedule must fail")

	statuses := svc.GetAllJobStatuses()
	require.Contains(t, statuses, "custom")
	assert.True(t, statuses["custom"].Enabled)
	assert.Equal(t, "0 0 * * * *", statuses["custom"].Schedule)
}

func TestEnableDisableJob(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())
	require.NoError(t, svc.RegisterJob("toggled", "0 0 * * * *", func() error { return nil }))

	require.NoError(t, svc.DisableJob("toggled"))
	status, err := svc.GetJobStatus("toggled")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)

	require.NoError(t, svc.DisableJob("toggled"), "disable is idempotent")

	require.NoError(t, svc.EnableJob("toggled"))
	status, err = svc.GetJobStatus("toggled")
	require.NoError(t, err)
	assert.True(t, status.Enabled)

	assert.Error(t, svc.EnableJob("missing"))
	assert.Error(t, svc.DisableJob("missing"))
}

func TestGetJobStatus_NextRunAfterStart(t *testing.T) {
	svc := NewService(&stubContent{}, arbor.NewLogger())
	require.NoError(t, svc.Start("0 */5 * * * *"))
	defer svc.Stop()

	status, err := svc.GetJobStatus(ScanJobName)
	require.NoError(t, err)
	require.NotNil(t, status.NextRun)
	assert.True(t, status.NextRun.After(time.Now().Add(-time.Second)))

	_, err = svc.GetJobStatus("unknown")
	assert.Error(t, err)
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobScanner/internal/infrastructure/storage"
	"JobScanner/internal/logging"
	"JobScanner/internal/ports"
)

type fakeDriver struct {
	jobs     map[string]func(time.Time)
	started  bool
	stopped  bool
	failExpr string
}

func (d *fakeDriver) Schedule(spec string, job func(time.Time)) error {
	if spec == d.failExpr {
		return errors.New("bad expression")
	}
	if d.jobs == nil {
		d.jobs = map[string]func(time.Time){}
	}
	d.jobs[spec] = job
	return nil
}

func (d *fakeDriver) Start(context.Context) error {
	d.started = true
	return nil
}

func (d *fakeDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

var scheduleSettings = ScheduleSettings{
	CycleCron: "0 */6 * * *",
	SweepCron: "30 3 * * *",
}

func TestSchedulerRegistersCycleAndSweep(t *testing.T) {
	store := storage.NewMemoryStore()
	orch := newOrchestrator(store, []ports.SourceAdapter{healthyAdapter("a")}, defaultSettings)
	sweeper := NewSweeper(store, 7*24*time.Hour, logging.Discard())
	driver := &fakeDriver{}

	s := NewScheduler(driver, orch, sweeper, scheduleSettings, logging.Discard())
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, driver.started)
	require.Len(t, driver.jobs, 2)

	driver.jobs[scheduleSettings.CycleCron](time.Now())
	report, ok := orch.LastReport()
	require.True(t, ok)
	assert.Equal(t, TriggerSchedule, report.Trigger)
	assert.Equal(t, 1, report.Totals.Inserted)

	driver.jobs[scheduleSettings.SweepCron](time.Now())
	assert.Equal(t, 1, store.Len())

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerRunsOnStart(t *testing.T) {
	orch := newOrchestrator(storage.NewMemoryStore(), []ports.SourceAdapter{healthyAdapter("a")}, defaultSettings)
	settings := scheduleSettings
	settings.RunOnStart = true

	s := NewScheduler(&fakeDriver{}, orch, nil, settings, logging.Discard())
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		report, ok := orch.LastReport()
		return ok && report.Trigger == TriggerStartup
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerBadExpression(t *testing.T) {
	orch := newOrchestrator(storage.NewMemoryStore(), nil, defaultSettings)
	driver := &fakeDriver{failExpr: scheduleSettings.CycleCron}

	s := NewScheduler(driver, orch, nil, scheduleSettings, logging.Discard())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule cycle")
	assert.False(t, driver.started)
}

package housekeeping

import (
	"context"
	"errors"
	"testing"

	"pet-clinic-scheduling/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	calls int
	err   error
}

func (f *fakePruner) PruneDismissals(ctx context.Context) (int, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected deadline")
	}
	return 2, f.err
}

func TestRunOnce_CallsPrunerWithDeadline(t *testing.T) {
	p := &fakePruner{}
	s := New(p, logger.Nop())

	s.RunOnce()
	assert.Equal(t, 1, p.calls)
}

func TestRunOnce_ErrorIsLoggedNotPanicked(t *testing.T) {
	p := &fakePruner{err: errors.New("store down")}
	s := New(p, nil)

	assert.NotPanics(t, s.RunOnce)
	assert.Equal(t, 1, p.calls)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New(&fakePruner{}, logger.Nop())
	require.Error(t, s.Start("not a schedule"))
}

func TestStartStop(t *testing.T) {
	s := New(&fakePruner{}, logger.Nop())
	require.NoError(t, s.Start("@every 1h"))
	s.Stop(context.Background())
}

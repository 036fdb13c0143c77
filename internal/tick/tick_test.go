package tick

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNewPeriodic_RejectsInvalidPeriod verifies period validation.
func TestNewPeriodic_RejectsInvalidPeriod(t *testing.T) {
	t.Parallel()

	p, err := NewPeriodic(0)
	require.Error(t, err)
	require.Nil(t, p)
}

// TestPeriodic_WaitsOnePeriod checks that each Wait returns once per period.
func TestPeriodic_WaitsOnePeriod(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		p, err := NewPeriodic(DefaultPeriod)
		require.NoError(t, err)

		defer p.Stop()

		start := time.Now()

		for range 3 {
			require.NoError(t, p.Wait(context.Background()))
		}

		require.Equal(t, 3*DefaultPeriod, time.Since(start))
	})
}

// TestManual_CountsAdvances ensures queued advances are consumed one per Wait.
func TestManual_CountsAdvances(t *testing.T) {
	t.Parallel()

	m := NewManual()
	m.Advance(3)
	require.Equal(t, 3, m.Pending())

	for range 3 {
		require.NoError(t, m.Wait(context.Background()))
	}

	require.Zero(t, m.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.Wait(ctx), context.Canceled)
}

package status

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
)

// TestFormat renders the clock line and alarm summary.
func TestFormat(t *testing.T) {
	t.Parallel()

	got := Format(domain.Status{
		Time:   domain.Time{Hour: 0, Minute: 1, Second: 30},
		Alarm:  domain.Time{Hour: 0, Minute: 1, Second: 30},
		Alarms: 1,
	})
	require.Equal(t, " 0: 1:30 alarm= 0: 1:30 alarms=1", got)
}

// TestRun_NoAddress fails fast when no status address is known.
func TestRun_NoAddress(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, config.Default()))

	err := Run(context.Background(), &Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, ErrNoAddress)
}

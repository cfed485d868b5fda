package systemd

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemctlExists(t *testing.T) {
	t.Setenv("PATH", "")
	assert.False(t, SystemctlExists())
}

// Without NOTIFY_SOCKET set, sd.SdNotify is a documented no-op that
// returns (false, nil) -- nsmd treats that the same as "nothing to do".
func TestNotifyReadyWithoutNotifySocket(t *testing.T) {
	_ = os.Unsetenv("NOTIFY_SOCKET")
	err := NotifyReady(context.Background())
	require.NoError(t, err)
}

func TestNotifyStoppingWithoutNotifySocket(t *testing.T) {
	_ = os.Unsetenv("NOTIFY_SOCKET")
	err := NotifyStopping(context.Background())
	require.NoError(t, err)
}

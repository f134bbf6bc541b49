package instance

import (
	"errors"
	"os"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

// TestOthers covers filtering by name and skipping the current pid.
//
//nolint:paralleltest // Replaces the package-level process lister.
func TestOthers(t *testing.T) {
	original := lister
	t.Cleanup(func() { lister = original })

	lister = func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), executable: "flipclock"},
			fakeProcess{pid: 4242, executable: "flipclock"},
			fakeProcess{pid: 4343, executable: "flipclock-ctl"},
		}, nil
	}

	pids, err := Others("flipclock")
	require.NoError(t, err)
	require.Equal(t, []int{4242}, pids)

	pids, err = Others("nothing-here")
	require.NoError(t, err)
	require.Empty(t, pids)

	lister = func() ([]ps.Process, error) {
		return nil, errors.New("permission denied")
	}

	_, err = Others("flipclock")
	require.Error(t, err)
}

// TestOthers_ExcludesSelf reads the real process table.
//
//nolint:paralleltest // Shares the package-level process lister with TestOthers.
func TestOthers_ExcludesSelf(t *testing.T) {
	self, err := ps.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NotNil(t, self)

	pids, err := Others(self.Executable())
	require.NoError(t, err)
	require.NotContains(t, pids, os.Getpid())
}

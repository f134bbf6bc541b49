package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another copy of the executable is alive.
var ErrAlreadyRunning = errors.New("another instance is already running")

// lister returns the process table; replaced in tests.
//
//nolint:gochecknoglobals // Test seam.
var lister = ps.Processes

// Others returns the pids of processes running the given executable,
// excluding the current process. The name is compared case-insensitively on
// Windows.
func Others(executable string) ([]int, error) {
	processList, err := lister()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !sameExecutable(process.Executable(), executable) {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}

// EnsureSingle fails with ErrAlreadyRunning when Others finds a match for the
// current executable.
func EnsureSingle() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	pids, err := Others(filepath.Base(self))
	if err != nil {
		return err
	}

	if len(pids) > 0 {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pids[0])
	}

	return nil
}

func sameExecutable(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}

	return a == b
}

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process with the same executable is alive.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ExecutableName appends the platform executable extension to base.
func ExecutableName(base string) string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return base + ".exe"
	}

	return base
}

// FindProcesses returns the PIDs of running processes per executable name, excluding this process.
func FindProcesses(names ...string) (map[string][]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var (
		thisProcessID = os.Getpid()
		found         = make(map[string][]int, len(names))
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		processName := process.Executable()
		if !slices.Contains(names, processName) {
			continue
		}

		found[processName] = append(found[processName], process.Pid())
	}

	return found, nil
}

// EnsureSingleInstance fails with ErrAlreadyRunning when another process runs the same executable.
func EnsureSingleInstance(base string) error {
	name := ExecutableName(base)

	found, err := FindProcesses(name)
	if err != nil {
		return err
	}

	if pids := found[name]; len(pids) > 0 {
		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, pids[0])
	}

	return nil
}

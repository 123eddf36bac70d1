package sweep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrSlotBusy is returned when another live process holds the macro slot.
var ErrSlotBusy = errors.New("sweep: macro path is in use by another sweep")

// lockFileName returns the path for a macro slot's lock file.
func lockFileName(macroPath string) string {
	return macroPath + ".lock"
}

// CreateLockFile creates a lock file for a macro slot, writing the process ID to it.
func CreateLockFile(macroPath string, pid int) error {
	lockFile := lockFileName(macroPath)
	content := []byte(strconv.Itoa(pid))
	return os.WriteFile(lockFile, content, 0644)
}

// RemoveLockFile deletes a macro slot's lock file.
func RemoveLockFile(macroPath string) error {
	lockFile := lockFileName(macroPath)
	// It's not an error if the file doesn't exist.
	err := os.Remove(lockFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadLockFile reads the PID from a macro slot's lock file.
func ReadLockFile(macroPath string) (int, error) {
	lockFile := lockFileName(macroPath)
	content, err := os.ReadFile(lockFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in lock file: %w", err)
	}
	return pid, nil
}

// AcquireSlot claims the macro path for this process. The lock is created
// exclusively; only when that fails is the existing lock inspected, and a
// lock left by a process that no longer exists is taken over once.
func AcquireSlot(macroPath string) error {
	for attempt := 0; ; attempt++ {
		err := createLockExclusive(macroPath, os.Getpid())
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create lock file: %w", err)
		}

		pid, err := ReadLockFile(macroPath)
		switch {
		case err == nil && processAlive(pid):
			return fmt.Errorf("%w: %s held by pid %d", ErrSlotBusy, macroPath, pid)
		case attempt > 0:
			return fmt.Errorf("%w: %s", ErrSlotBusy, macroPath)
		case os.IsNotExist(err):
			// released between the create and the read
		default:
			// stale or corrupt lock
			if err := RemoveLockFile(macroPath); err != nil {
				return fmt.Errorf("remove stale lock file: %w", err)
			}
		}
	}
}

// createLockExclusive writes the PID to a temporary file and links it into
// place, so the lock never exists without its content. It fails with
// fs.ErrExist when the lock is already present.
func createLockExclusive(macroPath string, pid int) error {
	lockFile := lockFileName(macroPath)
	tmp, err := os.CreateTemp(filepath.Dir(lockFile), filepath.Base(lockFile)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(pid)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Link(tmp.Name(), lockFile)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

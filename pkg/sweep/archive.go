package sweep

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mattsolo1/grove-sweep/pkg/params"
)

// ErrOutputMissing is returned when the simulation exits without leaving its
// output file behind.
var ErrOutputMissing = errors.New("sweep: simulation output file not found")

// ArchiveName is "{base}_{x}_{y}.{ext}", using the same rounded values that
// were substituted into the macro.
func ArchiveName(base string, p params.Point, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", base, params.FormatFloat(p.X), params.FormatFloat(p.Y), ext)
}

// moveFile renames src to dst, falling back to copy and remove when the two
// paths live on different filesystems.
func moveFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrOutputMissing, src)
		}
		return fmt.Errorf("stat output: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("archive output: %w", err)
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("archive output across filesystems: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove archived output: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

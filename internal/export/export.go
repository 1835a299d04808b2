// Package export writes stress fields and reports to CSV, XLSX and PDF.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Filename returns a timestamped file name such as
// "stress_bulb_20260314_093000.csv".
func Filename(prefix, ext string, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// WriteFile creates path, along with any missing parent directories, and
// fills it with write. A partially written file is removed on error.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}

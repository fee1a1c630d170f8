package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// dateLayout is the suffix appended to rolled file names.
const dateLayout = "2006-01-02"

// DailyFile is an io.Writer that starts a new file each local day.
// It is safe for concurrent use.
type DailyFile struct {
	dir  string
	name string
	now  func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewDailyFile creates dir if needed and opens today's file.
func NewDailyFile(dir, name string) (*DailyFile, error) {
	return newDailyFile(dir, name, time.Now)
}

func newDailyFile(dir, name string, now func() time.Time) (*DailyFile, error) {
	if name == "" {
		return nil, fmt.Errorf("log file name is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f := &DailyFile{dir: dir, name: name, now: now}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.rotate(f.now().Format(dateLayout)); err != nil {
		return nil, err
	}
	return f, nil
}

// Write implements io.Writer.
func (f *DailyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, os.ErrClosed
	}
	if day := f.now().Format(dateLayout); day != f.day {
		if err := f.rotate(day); err != nil {
			return 0, err
		}
	}
	return f.file.Write(p)
}

// Path returns the file currently written.
func (f *DailyFile) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pathFor(f.day)
}

// Close closes the current file. Later writes fail with os.ErrClosed.
func (f *DailyFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

func (f *DailyFile) pathFor(day string) string {
	return filepath.Join(f.dir, f.name+"."+day)
}

// rotate switches to the file for day. Callers hold f.mu.
func (f *DailyFile) rotate(day string) error {
	file, err := os.OpenFile(f.pathFor(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if f.file != nil {
		f.file.Close()
	}
	f.file = file
	f.day = day
	return nil
}

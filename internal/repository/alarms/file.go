package alarms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/encoding/entrylist"
)

// Repository defines persistence operations for the alarm list.
type Repository interface {
	Load(ctx context.Context) ([]alarm.Entry, error)
	Save(ctx context.Context, entries []alarm.Entry) error
}

// FileRepository persists the alarm list to a JSON file on disk.
// The file is the single storage key; its value is the whole list.
type FileRepository struct {
	// path is the filesystem location of the alarms file.
	path string
	// mu serializes access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when the alarms file does not exist yet.
var ErrNotFound = errors.New("alarm list not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the alarms file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the alarm list in storage order.
func (r *FileRepository) Load(_ context.Context) ([]alarm.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarms file: %w", err)
	}

	entries, err := entrylist.Unmarshal(contents)
	if err != nil {
		return nil, fmt.Errorf("decode alarms file: %w", err)
	}

	return entries, nil
}

// Save replaces the stored list. The write goes through a temporary file so a
// crash never leaves a half-written list behind.
func (r *FileRepository) Save(_ context.Context, entries []alarm.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := entrylist.Marshal(entries)
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarms file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace alarms file: %w", err)
	}

	return nil
}

package repositories

import (
	"encoding/json"
	"os"
	"path"
	"sync"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"
)

// fileStore reads and writes whole JSON documents in one directory. Writes go
// to a temporary file that is renamed over the target, so a failed write never
// leaves a truncated document behind.
type fileStore struct {
	fs  afero.Fs
	dir string
	// mu serialises writers across repositories sharing the directory.
	mu sync.Mutex
}

func newFileStore(fs afero.Fs, dir string) (*fileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &fileStore{fs: fs, dir: dir}, nil
}

// read decodes name into v. A missing or empty file leaves v untouched.
func (s *fileStore) read(name string, v any) error {
	data, err := afero.ReadFile(s.fs, path.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "read %s", name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}

func (s *fileStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := path.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.Wrapf(err, "replace %s", name)
	}
	return nil
}

func (s *fileStore) ping() error {
	if _, err := s.fs.Stat(s.dir); err != nil {
		return errors.Wrap(err, "stat data dir")
	}
	return nil
}

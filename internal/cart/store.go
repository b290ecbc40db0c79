package cart

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"

	"farmdirect/internal/models"
)

// FileStore keeps a cart as a JSON document on an afero filesystem, the
// client-side analogue of browser local storage.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore returns a store writing to path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Load reads the stored cart. A missing file yields an empty cart.
func (s *FileStore) Load() (*Cart, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, errors.Wrap(err, "read cart")
	}
	var items []models.CartItem
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, errors.Wrap(err, "decode cart")
		}
	}
	return New(items...), nil
}

// Save writes c, replacing any stored cart.
func (s *FileStore) Save(c *Cart) error {
	data, err := json.Marshal(c.Items())
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create cart dir")
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return errors.Wrap(err, "write cart")
	}
	return nil
}

// Clear removes the stored cart, as done after a successful checkout.
func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove cart")
	}
	return nil
}

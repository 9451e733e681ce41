// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/quizpipe/core"
)

// Store persists artifacts under stable keys.
type Store interface {
	// Exists reports whether a complete artifact is stored under key.
	Exists(key string) (bool, error)

	// Put stores data under key. The artifact becomes visible only once it
	// has been written completely.
	Put(key string, data []byte) error

	// Get returns the artifact stored under key.
	Get(key string) ([]byte, error)
}

// DirStore stores artifacts as files in a single directory.
type DirStore struct {
	dir  string
	perm fs.FileMode
}

var _ Store = (*DirStore)(nil)

// NewDirStore returns a store rooted at dir, creating the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: artifact directory is empty", core.ErrInvalidConfiguration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	return &DirStore{dir: dir, perm: 0o644}, nil
}

// Dir returns the directory the store writes to.
func (s *DirStore) Dir() string {
	return s.dir
}

// Path returns the file path an artifact key maps to.
func (s *DirStore) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Exists reports whether a regular file exists for key.
func (s *DirStore) Exists(key string) (bool, error) {
	info, err := os.Stat(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	return info.Mode().IsRegular(), nil
}

// Put writes data to the file for key atomically.
func (s *DirStore) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return WriteFileAtomic(s.Path(key), data, s.perm)
}

// Get reads the file for key.
func (s *DirStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	return data, nil
}

// List returns the sorted keys of regular files ending in suffix. Temporary
// files left behind by interrupted writes are never listed.
func (s *DirStore) List(suffix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || isTemp(name) {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// WriteFileAtomic writes data to a temporary file next to path, syncs it and
// renames it into place. Readers observe either the previous file or the
// complete new one.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", core.ErrIOFailure, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", core.ErrIOFailure, err)
	}
	return nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

func validateKey(key string) error {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: invalid artifact key %q", core.ErrIOFailure, key)
	}
	return nil
}

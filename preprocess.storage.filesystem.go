package preprocess

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FilesystemDefineStore stores define sets as YAML files. Each version is a
// separate file so older snapshots stay readable.
//
// Directory structure:
//
//	<root>/
//	  <set-name>/
//	    v1.yaml
//	    v2.yaml
type FilesystemDefineStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStoreDriver is the driver for creating FilesystemDefineStore instances.
type FilesystemStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameFilesystem, &FilesystemStoreDriver{})
}

// Open creates a new FilesystemDefineStore instance.
// The connection string is the root directory path.
func (d *FilesystemStoreDriver) Open(connectionString string) (DefineStore, error) {
	return NewFilesystemDefineStore(connectionString)
}

// NewFilesystemDefineStore creates a define store below root, creating the
// directory when it does not exist.
func NewFilesystemDefineStore(root string) (*FilesystemDefineStore, error) {
	if root == "" {
		return nil, &StoreError{Message: ErrMsgStoreDirCreateFailed}
	}
	if err := os.MkdirAll(root, StoreDirPerm); err != nil {
		return nil, &StoreError{Message: ErrMsgStoreDirCreateFailed, Name: root, Cause: err}
	}
	return &FilesystemDefineStore{root: root}, nil
}

// Get retrieves the latest version of a define set.
func (s *FilesystemDefineStore) Get(ctx context.Context, name string) (*StoredDefineSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateDefineSetName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewDefineSetNotFoundError(name)
	}
	return s.load(name, versions[0])
}

// GetVersion retrieves a specific version of a define set.
func (s *FilesystemDefineStore) GetVersion(ctx context.Context, name string, version int) (*StoredDefineSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateDefineSetName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}
	return s.load(name, version)
}

// Save writes set as a new version file.
func (s *FilesystemDefineStore) Save(ctx context.Context, set *StoredDefineSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if set == nil {
		return &StoreError{Message: ErrMsgStoreNilDefineSet}
	}
	if err := ValidateDefineSetName(set.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	dir := filepath.Join(s.root, set.Name)
	if err := os.MkdirAll(dir, StoreDirPerm); err != nil {
		return &StoreError{Message: ErrMsgStoreDirCreateFailed, Name: dir, Cause: err}
	}

	versions, err := s.versions(set.Name)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	stored := set.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	if len(versions) > 0 {
		stored.Version = versions[0] + 1
		if first, err := s.load(set.Name, versions[len(versions)-1]); err == nil {
			stored.CreatedAt = first.CreatedAt
		}
	}
	stored.UpdatedAt = now

	data, err := yaml.Marshal(stored)
	if err != nil {
		return &StoreError{Message: ErrMsgStoreWriteFailed, Name: set.Name, Cause: err}
	}
	if err := os.WriteFile(s.versionPath(set.Name, stored.Version), data, StoreFilePerm); err != nil {
		return &StoreError{Message: ErrMsgStoreWriteFailed, Name: set.Name, Version: stored.Version, Cause: err}
	}

	set.Version = stored.Version
	set.CreatedAt = stored.CreatedAt
	set.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes all versions of a define set.
func (s *FilesystemDefineStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateDefineSetName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewDefineSetNotFoundError(name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return &StoreError{Message: ErrMsgStoreDeleteFailed, Name: name, Cause: err}
	}
	return nil
}

// List returns the names of all define sets in sorted order.
func (s *FilesystemDefineStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StoreError{Message: ErrMsgStoreListFailed, Name: s.root, Cause: err}
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || ValidateDefineSetName(entry.Name()) != nil {
			continue
		}
		versions, err := s.versions(entry.Name())
		if err != nil || len(versions) == 0 {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ListVersions returns the stored versions of a define set, newest first.
func (s *FilesystemDefineStore) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateDefineSetName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewDefineSetNotFoundError(name)
	}
	return versions, nil
}

// Exists checks whether a define set exists.
func (s *FilesystemDefineStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := ValidateDefineSetName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// Close marks the store as closed.
func (s *FilesystemDefineStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// versions lists the version numbers of a set, newest first (no locking).
func (s *FilesystemDefineStore) versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StoreError{Message: ErrMsgStoreReadFailed, Name: name, Cause: err}
	}

	var versions []int
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() ||
			!strings.HasPrefix(filename, DefineSetVersionPrefix) ||
			!strings.HasSuffix(filename, DefineSetFileExt) {
			continue
		}
		digits := strings.TrimSuffix(strings.TrimPrefix(filename, DefineSetVersionPrefix), DefineSetFileExt)
		if v, err := strconv.Atoi(digits); err == nil && v > 0 {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// load reads one version file from disk.
func (s *FilesystemDefineStore) load(name string, version int) (*StoredDefineSet, error) {
	data, err := os.ReadFile(s.versionPath(name, version))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewDefineSetVersionNotFoundError(name, version)
		}
		return nil, &StoreError{Message: ErrMsgStoreReadFailed, Name: name, Version: version, Cause: err}
	}

	var set StoredDefineSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, &StoreError{Message: ErrMsgStoreReadFailed, Name: name, Version: version, Cause: err}
	}
	return &set, nil
}

func (s *FilesystemDefineStore) versionPath(name string, version int) string {
	return filepath.Join(s.root, name, DefineSetVersionPrefix+strconv.Itoa(version)+DefineSetFileExt)
}

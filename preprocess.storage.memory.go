package preprocess

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryDefineStore is an in-memory implementation of DefineStore.
// It is primarily intended for testing and for chaining runs inside one
// process. All data is lost when the process terminates.
type MemoryDefineStore struct {
	mu     sync.RWMutex
	sets   map[string][]*StoredDefineSet // name -> versions, newest first
	closed bool
}

// MemoryStoreDriver is the driver for creating MemoryDefineStore instances.
type MemoryStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameMemory, &MemoryStoreDriver{})
}

// Open creates a new MemoryDefineStore instance.
// The connection string is ignored for memory storage.
func (d *MemoryStoreDriver) Open(connectionString string) (DefineStore, error) {
	return NewMemoryDefineStore(), nil
}

// NewMemoryDefineStore creates a new in-memory define store.
func NewMemoryDefineStore() *MemoryDefineStore {
	return &MemoryDefineStore{
		sets: make(map[string][]*StoredDefineSet),
	}
}

// Get retrieves the latest version of a define set.
func (s *MemoryDefineStore) Get(ctx context.Context, name string) (*StoredDefineSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions := s.sets[name]
	if len(versions) == 0 {
		return nil, NewDefineSetNotFoundError(name)
	}
	return versions[0].Clone(), nil
}

// GetVersion retrieves a specific version of a define set.
func (s *MemoryDefineStore) GetVersion(ctx context.Context, name string, version int) (*StoredDefineSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, ok := s.sets[name]
	if !ok {
		return nil, NewDefineSetNotFoundError(name)
	}
	for _, v := range versions {
		if v.Version == version {
			return v.Clone(), nil
		}
	}
	return nil, NewDefineSetVersionNotFoundError(name, version)
}

// Save stores set as a new version.
func (s *MemoryDefineStore) Save(ctx context.Context, set *StoredDefineSet) error {
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

	now := time.Now()
	versions := s.sets[set.Name]

	stored := set.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	if len(versions) > 0 {
		stored.Version = versions[0].Version + 1
		stored.CreatedAt = versions[len(versions)-1].CreatedAt
	}
	stored.UpdatedAt = now

	set.Version = stored.Version
	set.CreatedAt = stored.CreatedAt
	set.UpdatedAt = stored.UpdatedAt

	s.sets[set.Name] = append([]*StoredDefineSet{stored}, versions...)
	return nil
}

// Delete removes all versions of a define set.
func (s *MemoryDefineStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}
	if _, ok := s.sets[name]; !ok {
		return NewDefineSetNotFoundError(name)
	}
	delete(s.sets, name)
	return nil
}

// List returns the names of all define sets in sorted order.
func (s *MemoryDefineStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListVersions returns the stored versions of a define set, newest first.
func (s *MemoryDefineStore) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, ok := s.sets[name]
	if !ok {
		return nil, NewDefineSetNotFoundError(name)
	}
	out := make([]int, len(versions))
	for i, v := range versions {
		out[i] = v.Version
	}
	return out, nil
}

// Exists checks whether a define set exists.
func (s *MemoryDefineStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}
	_, ok := s.sets[name]
	return ok, nil
}

// Close marks the store as closed and releases its data.
func (s *MemoryDefineStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.sets = nil
	return nil
}

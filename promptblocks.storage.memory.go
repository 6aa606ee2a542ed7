package promptblocks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store.
// It is primarily intended for testing and development.
// All data is lost when the process terminates.
type MemoryStore struct {
	mu           sync.RWMutex
	blocks       map[int64]*Block
	compositions map[int64][]*Composition // id -> versions (sorted by version desc)
	nextBlockID  int64
	nextCompID   int64
	closed       bool
}

// MemoryStoreDriver is the driver for creating MemoryStore instances.
type MemoryStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameMemory, &MemoryStoreDriver{})
}

// Open creates a new MemoryStore instance.
// The connection string is ignored for memory stores.
func (d *MemoryStoreDriver) Open(connectionString string) (Store, error) {
	return NewMemoryStore(), nil
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blocks:       make(map[int64]*Block),
		compositions: make(map[int64][]*Composition),
		nextBlockID:  1,
		nextCompID:   1,
	}
}

// GetBlock retrieves a block by ID.
func (s *MemoryStore) GetBlock(ctx context.Context, id int64) (*Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	block, ok := s.blocks[id]
	if !ok {
		return nil, NewBlockNotFoundError(id)
	}
	return copyBlock(block), nil
}

// SaveBlock stores a block, assigning an ID on first save and bumping the
// version on updates.
func (s *MemoryStore) SaveBlock(ctx context.Context, block *Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if block.Name == "" {
		return &StoreError{Message: ErrMsgBlockNameRequired, Entity: EntityBlock}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	now := time.Now()
	if block.ID == 0 {
		block.ID = s.nextBlockID
		s.nextBlockID++
		block.Version = 1
		block.CreatedAt = now
	} else if existing, ok := s.blocks[block.ID]; ok {
		block.Version = existing.Version + 1
		block.CreatedAt = existing.CreatedAt
	} else {
		// Caller-chosen ID on first save
		if block.ID >= s.nextBlockID {
			s.nextBlockID = block.ID + 1
		}
		block.Version = 1
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	s.blocks[block.ID] = copyBlock(block)
	return nil
}

// DeleteBlock removes a block by ID.
func (s *MemoryStore) DeleteBlock(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if _, ok := s.blocks[id]; !ok {
		return NewBlockNotFoundError(id)
	}
	delete(s.blocks, id)
	return nil
}

// ListBlocks returns all blocks ordered by ID.
func (s *MemoryStore) ListBlocks(ctx context.Context) ([]*Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	blocks := make([]*Block, 0, len(s.blocks))
	for _, block := range s.blocks {
		blocks = append(blocks, copyBlock(block))
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	return blocks, nil
}

// GetComposition retrieves the latest version of a composition.
func (s *MemoryStore) GetComposition(ctx context.Context, id int64) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, ok := s.compositions[id]
	if !ok || len(versions) == 0 {
		return nil, NewCompositionNotFoundError(id)
	}

	// Latest version is first (sorted desc)
	return copyComposition(versions[0]), nil
}

// GetCompositionVersion retrieves a specific version of a composition.
func (s *MemoryStore) GetCompositionVersion(ctx context.Context, id int64, version int) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	for _, comp := range s.compositions[id] {
		if comp.Version == version {
			return copyComposition(comp), nil
		}
	}
	return nil, NewCompositionVersionNotFoundError(id, version)
}

// SaveComposition stores a composition, creating the next version when the
// ID is known.
func (s *MemoryStore) SaveComposition(ctx context.Context, comp *Composition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if comp.Name == "" {
		return &StoreError{Message: ErrMsgCompositionNameRequired, Entity: EntityComposition}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	now := time.Now()
	if comp.ID == 0 {
		comp.ID = s.nextCompID
		s.nextCompID++
	} else if comp.ID >= s.nextCompID {
		s.nextCompID = comp.ID + 1
	}

	versions := s.compositions[comp.ID]
	comp.Version = 1
	if len(versions) > 0 {
		comp.Version = versions[0].Version + 1
	}
	comp.CreatedAt = now
	comp.UpdatedAt = now

	// Insert at beginning (newest first)
	s.compositions[comp.ID] = append([]*Composition{copyComposition(comp)}, versions...)
	return nil
}

// DeleteComposition removes all versions of a composition.
func (s *MemoryStore) DeleteComposition(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if _, ok := s.compositions[id]; !ok {
		return NewCompositionNotFoundError(id)
	}
	delete(s.compositions, id)
	return nil
}

// DeleteCompositionVersion removes a single version of a composition.
func (s *MemoryStore) DeleteCompositionVersion(ctx context.Context, id int64, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	versions := s.compositions[id]
	for i, comp := range versions {
		if comp.Version == version {
			s.compositions[id] = append(versions[:i], versions[i+1:]...)
			if len(s.compositions[id]) == 0 {
				delete(s.compositions, id)
			}
			return nil
		}
	}
	return NewCompositionVersionNotFoundError(id, version)
}

// ListCompositions returns the latest version of every composition, ordered
// by ID.
func (s *MemoryStore) ListCompositions(ctx context.Context) ([]*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	comps := make([]*Composition, 0, len(s.compositions))
	for _, versions := range s.compositions {
		if len(versions) > 0 {
			comps = append(comps, copyComposition(versions[0]))
		}
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].ID < comps[j].ID })
	return comps, nil
}

// ListCompositionVersions returns version numbers newest first.
func (s *MemoryStore) ListCompositionVersions(ctx context.Context, id int64) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions := s.compositions[id]
	result := make([]int, len(versions))
	for i, comp := range versions {
		result[i] = comp.Version
	}
	return result, nil
}

// Close marks the store as closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.blocks = nil
	s.compositions = nil
	return nil
}

// copyBlock creates a copy of a Block.
func copyBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// copyComposition creates a deep copy of a Composition.
func copyComposition(c *Composition) *Composition {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Variables = copyStringMap(c.Variables)
	cp.Tags = copyStringSlice(c.Tags)
	return &cp
}

// copyStringMap creates a copy of a string map.
func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// copyStringSlice creates a copy of a string slice.
func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	result := make([]string, len(s))
	copy(result, s)
	return result
}

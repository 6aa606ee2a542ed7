package promptblocks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FilesystemStore persists blocks and compositions as YAML files.
//
// Directory structure:
//
//	<root>/
//	  blocks/
//	    <id>.yaml
//	  compositions/
//	    <id>/
//	      v1.yaml
//	      v2.yaml
//	      ...
//
// Composition versions are separate files; the highest version number is the
// latest.
type FilesystemStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// Filesystem layout constants
const (
	fsBlocksDir       = "blocks"
	fsCompositionsDir = "compositions"
	fsYAMLExt         = ".yaml"
	fsVersionPrefix   = "v"
	fsDirPerm         = 0o755
	fsFilePerm        = 0o644
)

// Filesystem store error messages
const (
	ErrMsgFilesystemEmptyRoot = "filesystem store root path is empty"
	ErrMsgFilesystemInit      = "filesystem store initialization failed"
	ErrMsgFilesystemRead      = "filesystem store read failed"
	ErrMsgFilesystemWrite     = "filesystem store write failed"
)

// fsBlockRecord is the on-disk form of a Block.
type fsBlockRecord struct {
	ID        int64     `yaml:"id"`
	Name      string    `yaml:"name"`
	Content   string    `yaml:"content"`
	Version   int       `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// fsCompositionRecord is the on-disk form of a Composition version.
type fsCompositionRecord struct {
	ID        int64             `yaml:"id"`
	Name      string            `yaml:"name"`
	Content   string            `yaml:"content"`
	Variables map[string]string `yaml:"variables,omitempty"`
	Version   int               `yaml:"version"`
	Tags      []string          `yaml:"tags,omitempty"`
	CreatedBy string            `yaml:"created_by,omitempty"`
	CreatedAt time.Time         `yaml:"created_at"`
	UpdatedAt time.Time         `yaml:"updated_at"`
}

// FilesystemStoreDriver is the driver for creating FilesystemStore instances.
type FilesystemStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameFilesystem, &FilesystemStoreDriver{})
}

// Open creates a new FilesystemStore instance.
// The connection string is the root directory path.
func (d *FilesystemStoreDriver) Open(connectionString string) (Store, error) {
	return NewFilesystemStore(connectionString)
}

// NewFilesystemStore creates a filesystem store rooted at the given
// directory, creating the layout if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, &StoreError{Message: ErrMsgFilesystemEmptyRoot}
	}

	for _, dir := range []string{filepath.Join(root, fsBlocksDir), filepath.Join(root, fsCompositionsDir)} {
		if err := os.MkdirAll(dir, fsDirPerm); err != nil {
			return nil, &StoreError{Message: ErrMsgFilesystemInit, Cause: err}
		}
	}

	return &FilesystemStore{root: root}, nil
}

// GetBlock retrieves a block by ID.
func (s *FilesystemStore) GetBlock(ctx context.Context, id int64) (*Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	return s.readBlock(id)
}

// SaveBlock stores a block, assigning an ID on first save and bumping the
// version on updates.
func (s *FilesystemStore) SaveBlock(ctx context.Context, block *Block) error {
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
		next, err := s.nextID(filepath.Join(s.root, fsBlocksDir))
		if err != nil {
			return err
		}
		block.ID = next
		block.Version = 1
		block.CreatedAt = now
	} else if existing, err := s.readBlock(block.ID); err == nil {
		block.Version = existing.Version + 1
		block.CreatedAt = existing.CreatedAt
	} else {
		block.Version = 1
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	record := fsBlockRecord{
		ID:        block.ID,
		Name:      block.Name,
		Content:   block.Content,
		Version:   block.Version,
		CreatedAt: block.CreatedAt,
		UpdatedAt: block.UpdatedAt,
	}
	return s.writeYAML(s.blockPath(block.ID), &record)
}

// DeleteBlock removes a block by ID.
func (s *FilesystemStore) DeleteBlock(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if err := os.Remove(s.blockPath(id)); err != nil {
		if os.IsNotExist(err) {
			return NewBlockNotFoundError(id)
		}
		return &StoreError{Message: ErrMsgFilesystemWrite, Entity: EntityBlock, ID: id, Cause: err}
	}
	return nil
}

// ListBlocks returns all blocks ordered by ID.
func (s *FilesystemStore) ListBlocks(ctx context.Context) ([]*Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(filepath.Join(s.root, fsBlocksDir))
	if err != nil {
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityBlock, Cause: err}
	}

	blocks := make([]*Block, 0, len(entries))
	for _, entry := range entries {
		id, ok := parseIDFileName(entry.Name())
		if !ok {
			continue
		}
		block, err := s.readBlock(id)
		if err != nil {
			continue // skip unreadable entries
		}
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	return blocks, nil
}

// GetComposition retrieves the latest version of a composition.
func (s *FilesystemStore) GetComposition(ctx context.Context, id int64) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions := s.compositionVersions(id)
	if len(versions) == 0 {
		return nil, NewCompositionNotFoundError(id)
	}
	return s.readComposition(id, versions[0])
}

// GetCompositionVersion retrieves a specific version of a composition.
func (s *FilesystemStore) GetCompositionVersion(ctx context.Context, id int64, version int) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	comp, err := s.readComposition(id, version)
	if err != nil {
		return nil, NewCompositionVersionNotFoundError(id, version)
	}
	return comp, nil
}

// SaveComposition stores a composition, creating the next version when the
// ID is known.
func (s *FilesystemStore) SaveComposition(ctx context.Context, comp *Composition) error {
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
		next, err := s.nextID(filepath.Join(s.root, fsCompositionsDir))
		if err != nil {
			return err
		}
		comp.ID = next
	}

	versions := s.compositionVersions(comp.ID)
	comp.Version = 1
	if len(versions) > 0 {
		comp.Version = versions[0] + 1
	}
	comp.CreatedAt = now
	comp.UpdatedAt = now

	dir := s.compositionDir(comp.ID)
	if err := os.MkdirAll(dir, fsDirPerm); err != nil {
		return &StoreError{Message: ErrMsgFilesystemWrite, Entity: EntityComposition, ID: comp.ID, Cause: err}
	}

	record := fsCompositionRecord{
		ID:        comp.ID,
		Name:      comp.Name,
		Content:   comp.Content,
		Variables: comp.Variables,
		Version:   comp.Version,
		Tags:      comp.Tags,
		CreatedBy: comp.CreatedBy,
		CreatedAt: comp.CreatedAt,
		UpdatedAt: comp.UpdatedAt,
	}
	return s.writeYAML(s.versionPath(comp.ID, comp.Version), &record)
}

// DeleteComposition removes all versions of a composition.
func (s *FilesystemStore) DeleteComposition(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	dir := s.compositionDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewCompositionNotFoundError(id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return &StoreError{Message: ErrMsgFilesystemWrite, Entity: EntityComposition, ID: id, Cause: err}
	}
	return nil
}

// DeleteCompositionVersion removes a single version of a composition.
func (s *FilesystemStore) DeleteCompositionVersion(ctx context.Context, id int64, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if err := os.Remove(s.versionPath(id, version)); err != nil {
		if os.IsNotExist(err) {
			return NewCompositionVersionNotFoundError(id, version)
		}
		return &StoreError{Message: ErrMsgFilesystemWrite, Entity: EntityComposition, ID: id, Version: version, Cause: err}
	}

	// Clean up if no versions left
	if len(s.compositionVersions(id)) == 0 {
		_ = os.Remove(s.compositionDir(id))
	}
	return nil
}

// ListCompositions returns the latest version of every composition, ordered
// by ID.
func (s *FilesystemStore) ListCompositions(ctx context.Context) ([]*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(filepath.Join(s.root, fsCompositionsDir))
	if err != nil {
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityComposition, Cause: err}
	}

	comps := make([]*Composition, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		versions := s.compositionVersions(id)
		if len(versions) == 0 {
			continue
		}
		comp, err := s.readComposition(id, versions[0])
		if err != nil {
			continue
		}
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].ID < comps[j].ID })
	return comps, nil
}

// ListCompositionVersions returns version numbers newest first.
func (s *FilesystemStore) ListCompositionVersions(ctx context.Context, id int64) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	return s.compositionVersions(id), nil
}

// Close marks the store as closed.
func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Path helpers

func (s *FilesystemStore) blockPath(id int64) string {
	return filepath.Join(s.root, fsBlocksDir, strconv.FormatInt(id, 10)+fsYAMLExt)
}

func (s *FilesystemStore) compositionDir(id int64) string {
	return filepath.Join(s.root, fsCompositionsDir, strconv.FormatInt(id, 10))
}

func (s *FilesystemStore) versionPath(id int64, version int) string {
	return filepath.Join(s.compositionDir(id), fmt.Sprintf("%s%d%s", fsVersionPrefix, version, fsYAMLExt))
}

// writeYAML marshals a record and writes it to path.
func (s *FilesystemStore) writeYAML(path string, record any) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return &StoreError{Message: ErrMsgFilesystemWrite, Cause: err}
	}
	if err := os.WriteFile(path, data, fsFilePerm); err != nil {
		return &StoreError{Message: ErrMsgFilesystemWrite, Cause: err}
	}
	return nil
}

// readBlock loads a block record from disk.
func (s *FilesystemStore) readBlock(id int64) (*Block, error) {
	data, err := os.ReadFile(s.blockPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewBlockNotFoundError(id)
		}
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityBlock, ID: id, Cause: err}
	}

	var record fsBlockRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityBlock, ID: id, Cause: err}
	}
	return &Block{
		ID:        record.ID,
		Name:      record.Name,
		Content:   record.Content,
		Version:   record.Version,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// readComposition loads a composition version record from disk.
func (s *FilesystemStore) readComposition(id int64, version int) (*Composition, error) {
	data, err := os.ReadFile(s.versionPath(id, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewCompositionVersionNotFoundError(id, version)
		}
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityComposition, ID: id, Version: version, Cause: err}
	}

	var record fsCompositionRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, &StoreError{Message: ErrMsgFilesystemRead, Entity: EntityComposition, ID: id, Version: version, Cause: err}
	}
	return &Composition{
		ID:        record.ID,
		Name:      record.Name,
		Content:   record.Content,
		Variables: record.Variables,
		Version:   record.Version,
		Tags:      record.Tags,
		CreatedBy: record.CreatedBy,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// compositionVersions returns the version numbers on disk, newest first.
func (s *FilesystemStore) compositionVersions(id int64) []int {
	entries, err := os.ReadDir(s.compositionDir(id))
	if err != nil {
		return nil
	}

	var versions []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, fsVersionPrefix) || !strings.HasSuffix(name, fsYAMLExt) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, fsVersionPrefix), fsYAMLExt))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions
}

// nextID scans a directory for the highest numeric entry and returns the
// next ID.
func (s *FilesystemStore) nextID(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, &StoreError{Message: ErrMsgFilesystemRead, Cause: err}
	}

	var max int64
	for _, entry := range entries {
		name := entry.Name()
		if id, ok := parseIDFileName(name); ok && id > max {
			max = id
			continue
		}
		if id, err := strconv.ParseInt(name, 10, 64); err == nil && id > max {
			max = id
		}
	}
	return max + 1, nil
}

// parseIDFileName extracts the numeric ID from an "<id>.yaml" file name.
func parseIDFileName(name string) (int64, bool) {
	if !strings.HasSuffix(name, fsYAMLExt) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(name, fsYAMLExt), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

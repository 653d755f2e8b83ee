// Package checkpoint persists the best sequence of a running search as a TOML
// document, so a long run can be inspected or rendered while it continues.
//
//	run_id = "7b0c6a4e-..."
//	labels = 3
//	best = 5
//	sequence = ["1(2)", "3", "2(1,1)", "2(2)", "2"]
//	tested = 18231
//	updated_at = 2026-01-02T15:04:05Z
package checkpoint

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// Checkpoint is the persisted state of a search.
type Checkpoint struct {
	RunID     string    `toml:"run_id"`
	Labels    int       `toml:"labels"`
	Best      int       `toml:"best"`
	Sequence  []string  `toml:"sequence"`
	Tested    uint64    `toml:"tested"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// New starts a checkpoint for a fresh run with a random run id.
func New(labels int) *Checkpoint {
	return &Checkpoint{
		RunID:  uuid.NewString(),
		Labels: labels,
	}
}

// Trees parses the stored sequence.
func (c *Checkpoint) Trees() ([]*tree.Tree, error) {
	return tree.ParseList(c.Sequence)
}

// Validate checks that the stored sequence is well formed and matches the
// recorded length and label count.
func (c *Checkpoint) Validate() error {
	if err := errors.ValidateLabels(c.Labels); err != nil {
		return err
	}
	if len(c.Sequence) != c.Best {
		return errors.New(errors.ErrCodeInvalidInput, "checkpoint best is %d but sequence has %d trees", c.Best, len(c.Sequence))
	}
	trees, err := c.Trees()
	if err != nil {
		return err
	}
	for _, t := range trees {
		if err := t.Validate(c.Labels); err != nil {
			return err
		}
	}
	return nil
}

// FileStore reads and writes one checkpoint file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store for path. The parent directory is created on
// the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the checkpoint file path.
func (s *FileStore) Path() string { return s.path }

// Save writes c atomically: the document goes to a temporary file in the same
// directory which is then renamed over the target.
func (s *FileStore) Save(c *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint. A missing file is reported as NOT_FOUND.
func (s *FileStore) Load() (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Checkpoint
	if _, err := toml.DecodeFile(s.path, &c); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no checkpoint at %s", s.path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse checkpoint %s", s.path)
	}
	return &c, nil
}

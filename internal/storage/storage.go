package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no file exists for a kind and run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the envelope written for one extraction run.
type Run struct {
	RunID   string          `json:"run_id"`
	Kind    string          `json:"kind"`
	SavedAt string          `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Decode unmarshals the run payload into v.
func (r *Run) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decoding run %s: %w", r.RunID, err)
	}
	return nil
}

// Storage handles persistence of extraction runs
type Storage struct {
	dataDir string
	now     func() time.Time
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// runPath returns the path to the run file
func (s *Storage) runPath(kind, runID string) (string, error) {
	if kind == "" || strings.ContainsAny(kind, `/\_`) {
		return "", fmt.Errorf("invalid kind %q", kind)
	}
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("%s_%s.json", kind, runID)), nil
}

// Save writes v as the payload of run runID and returns the file path.
func (s *Storage) Save(kind, runID string, v interface{}) (string, error) {
	path, err := s.runPath(kind, runID)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding run: %w", err)
	}

	run := Run{
		RunID:   runID,
		Kind:    kind,
		SavedAt: s.now().UTC().Format(time.RFC3339),
		Data:    payload,
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run: %w", err)
	}

	return path, nil
}

// Load reads a saved run back from disk
func (s *Storage) Load(kind, runID string) (*Run, error) {
	path, err := s.runPath(kind, runID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrRunNotFound, kind, runID)
		}
		return nil, fmt.Errorf("reading run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run: %w", err)
	}

	return &run, nil
}

// Runs lists the saved run IDs for kind, oldest first.
func (s *Storage) Runs(kind string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, kind+"_*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	type entry struct {
		id      string
		modTime time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), kind+"_"), ".json")
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		entries = append(entries, entry{id: id, modTime: info.ModTime()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].modTime.Equal(entries[j].modTime) {
			return entries[i].id < entries[j].id
		}
		return entries[i].modTime.Before(entries[j].modTime)
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

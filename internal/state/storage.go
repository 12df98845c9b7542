// Package state stores fitting runs and their refinement history under
// .hsfit/runs/<run-id>/.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/thruflo/hsfit/internal/config"
)

const (
	runsDirName = "runs"
	runFile     = "run.yaml"
	historyFile = "history.json"
)

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Store handles local run storage operations.
type Store struct {
	basePath string
}

// NewStore creates a new Store with the given base path.
// The base path should be the project root; runs will be stored in .hsfit/runs/.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// RunsDir returns the path to the runs directory.
func (s *Store) RunsDir() string {
	return filepath.Join(s.basePath, config.DirName, runsDirName)
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.RunsDir(), id)
}

// validateID rejects IDs that are not UUIDs, which also keeps them from
// escaping the runs directory.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid run id %q: %w", id, err)
	}
	return nil
}

// CreateRun creates a new run directory and writes run.yaml. A run without an
// ID is assigned one.
func (s *Store) CreateRun(run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if err := validateID(run.ID); err != nil {
		return err
	}
	if s.RunExists(run.ID) {
		return fmt.Errorf("run already exists: %s", run.ID)
	}

	if err := os.MkdirAll(s.runDir(run.ID), 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return s.writeRun(run)
}

// GetRun reads run.yaml from the run directory.
func (s *Store) GetRun(id string) (*Run, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.runDir(id), runFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	return &run, nil
}

// FindRun resolves a full run ID or a unique ID prefix to a stored run.
func (s *Store) FindRun(prefix string) (*Run, error) {
	if prefix == "" {
		return nil, fmt.Errorf("run id is required")
	}
	if _, err := uuid.Parse(prefix); err == nil {
		return s.GetRun(prefix)
	}

	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	var match *Run
	for _, run := range runs {
		if !strings.HasPrefix(run.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id prefix %q is ambiguous", prefix)
		}
		match = run
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

// ListRuns enumerates all run directories, oldest first.
func (s *Store) ListRuns() ([]*Run, error) {
	entries, err := os.ReadDir(s.RunsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Run{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	runs := []*Run{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.RunsDir(), entry.Name(), runFile))
		if err != nil {
			continue // Skip directories without run.yaml
		}

		var run Run
		if err := yaml.Unmarshal(data, &run); err != nil {
			continue // Skip invalid run files
		}
		runs = append(runs, &run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

// UpdateRun applies updateFn to the stored run and writes it back.
func (s *Store) UpdateRun(id string, updateFn func(*Run)) error {
	run, err := s.GetRun(id)
	if err != nil {
		return err
	}

	updateFn(run)
	run.ID = id
	return s.writeRun(run)
}

func (s *Store) writeRun(run *Run) error {
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.runDir(run.ID), runFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// SaveHistory writes history.json to the run directory.
func (s *Store) SaveHistory(id string, history []History) error {
	if err := validateID(id); err != nil {
		return err
	}
	dir := s.runDir(id)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, historyFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// LoadHistory reads history.json from the run directory.
func (s *Store) LoadHistory(id string) ([]History, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.runDir(id), historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No history file yet
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history []History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return history, nil
}

// AppendHistory adds a new history entry to history.json.
func (s *Store) AppendHistory(id string, entry History) error {
	history, err := s.LoadHistory(id)
	if err != nil {
		return err
	}

	history = append(history, entry)
	return s.SaveHistory(id, history)
}

// DeleteRun removes the run directory and all its contents.
func (s *Store) DeleteRun(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.runDir(id)); err != nil {
		return fmt.Errorf("failed to delete run directory: %w", err)
	}
	return nil
}

// RunExists checks if a run directory with run.yaml exists.
func (s *Store) RunExists(id string) bool {
	if validateID(id) != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(s.runDir(id), runFile))
	return err == nil
}

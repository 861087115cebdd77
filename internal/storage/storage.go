package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/filgoal/internal/match"
)

var (
	// ErrNotFound is returned when a snapshot exists but does not hold the match.
	ErrNotFound = errors.New("match not found")
	// ErrNoSnapshot is returned when nothing has been saved for the day.
	ErrNoSnapshot = errors.New("no snapshot")
)

// DailySnapshot is the on-disk form of one day's matches
type DailySnapshot struct {
	Date      string        `json:"date"`
	UpdatedAt string        `json:"updated_at"`
	Matches   []match.Match `json:"matches"`
}

// Storage handles persistence of daily snapshots
type Storage struct {
	dataDir string
	now     func() time.Time
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

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// Dir returns the directory snapshots are written to.
func (s *Storage) Dir() string {
	return s.dataDir
}

func (s *Storage) dailyPath(date string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("matches_%s.json", date))
}

// LoadDaily loads the snapshot for date. found is false when no snapshot has
// been written for that day.
func (s *Storage) LoadDaily(date string) (matches []match.Match, found bool, err error) {
	if err := match.ValidateDate(date); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.dailyPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot DailySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Matches == nil {
		snapshot.Matches = []match.Match{}
	}

	return snapshot.Matches, true, nil
}

// SaveDaily writes the snapshot for date, replacing any earlier one.
func (s *Storage) SaveDaily(date string, matches []match.Match) error {
	if err := match.ValidateDate(date); err != nil {
		return err
	}
	if matches == nil {
		matches = []match.Match{}
	}

	snapshot := DailySnapshot{
		Date:      date,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
		Matches:   matches,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Write through a temp file so readers never see a half-written day.
	tmp := s.dailyPath(date) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.dailyPath(date)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// GetMatchByID retrieves a match by id from the snapshot for date
func (s *Storage) GetMatchByID(date, id string) (*match.Match, error) {
	matches, found, err := s.LoadDaily(date)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w for %s", ErrNoSnapshot, date)
	}

	for i := range matches {
		if matches[i].ID == id {
			return &matches[i], nil
		}
	}

	return nil, fmt.Errorf("match %s on %s: %w", id, date, ErrNotFound)
}

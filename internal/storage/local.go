package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

// BaseDir returns the root data directory (~/.shiftsync).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".shiftsync"), nil
}

// LocalCache stores shifts as human-readable JSON day files under
// <base>/<user>/YYYY/MM/DD.json.
type LocalCache struct {
	base string
}

// NewLocalCache returns a cache rooted at base.
func NewLocalCache(base string) *LocalCache {
	return &LocalCache{base: base}
}

func (c *LocalCache) userDir(userID string) string {
	if userID == "" {
		userID = "local"
	}
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, userID)
	if safe == "." || safe == ".." {
		safe = "_" + safe
	}
	return filepath.Join(c.base, safe)
}

// dayFilePath returns the path for the given date's JSON file.
func (c *LocalCache) dayFilePath(userID, date string) (string, error) {
	t, err := time.Parse(timecalc.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("storage error: invalid date %q: %w", date, err)
	}
	return filepath.Join(c.userDir(userID), t.Format("2006"), t.Format("01"), t.Format("02")+".json"), nil
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func (c *LocalCache) LoadDay(userID, date string) (model.DayFile, error) {
	path, err := c.dayFilePath(userID, date)
	if err != nil {
		return model.DayFile{}, err
	}
	return readDayFile(path, date)
}

func readDayFile(path, date string) (model.DayFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: date, Shifts: []model.Shift{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile. An empty day removes the file.
func (c *LocalCache) SaveDay(userID string, df model.DayFile) error {
	path, err := c.dayFilePath(userID, df.Date)
	if err != nil {
		return err
	}
	if len(df.Shifts) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage error removing %s: %w", path, err)
		}
		return nil
	}
	return writeDayFile(path, df)
}

func writeDayFile(path string, df model.DayFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// List returns all cached shifts for the user ordered by date and start time.
func (c *LocalCache) List(_ context.Context, userID string) ([]model.Shift, error) {
	return listDir(c.userDir(userID))
}

func listDir(root string) ([]model.Shift, error) {
	shifts := []model.Shift{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		df, err := readDayFile(path, "")
		if err != nil {
			return err
		}
		shifts = append(shifts, df.Shifts...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", root, err)
	}
	sortShifts(shifts)
	return shifts, nil
}

// Save upserts shifts by ID. A shift whose date changed is moved to its new
// day file.
func (c *LocalCache) Save(ctx context.Context, userID string, shifts []model.Shift) error {
	current, err := c.List(ctx, userID)
	if err != nil {
		return err
	}
	dateOf := make(map[string]string, len(current))
	for _, s := range current {
		dateOf[s.ID] = s.Date
	}

	for _, s := range shifts {
		if old, ok := dateOf[s.ID]; ok && old != s.Date {
			if err := c.removeFromDay(userID, old, s.ID); err != nil {
				return err
			}
		}
		df, err := c.LoadDay(userID, s.Date)
		if err != nil {
			return err
		}
		df.Date = s.Date
		df.Shifts = upsert(df.Shifts, s)
		if err := c.SaveDay(userID, df); err != nil {
			return err
		}
		dateOf[s.ID] = s.Date
	}
	return nil
}

// Replace swaps the user's cache for exactly the given shifts. The new tree
// is staged next to the old one and renamed into place.
func (c *LocalCache) Replace(_ context.Context, userID string, shifts []model.Shift) error {
	dir := c.userDir(userID)
	staging := dir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("storage error clearing staging dir: %w", err)
	}

	byDate := map[string][]model.Shift{}
	for _, s := range shifts {
		byDate[s.Date] = append(byDate[s.Date], s)
	}
	for date, day := range byDate {
		path, err := c.dayFilePath(userID, date)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		if err := writeDayFile(filepath.Join(staging, rel), model.DayFile{Date: date, Shifts: day}); err != nil {
			return err
		}
	}

	old := dir + ".old"
	_ = os.RemoveAll(old)
	if err := os.Rename(dir, old); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error moving old cache: %w", err)
	}
	if len(byDate) == 0 {
		_ = os.RemoveAll(old)
		return nil
	}
	if err := os.Rename(staging, dir); err != nil {
		_ = os.Rename(old, dir)
		return fmt.Errorf("storage error installing cache: %w", err)
	}
	_ = os.RemoveAll(old)
	return nil
}

// Delete removes the shift with the given ID.
func (c *LocalCache) Delete(ctx context.Context, userID, id string) error {
	current, err := c.List(ctx, userID)
	if err != nil {
		return err
	}
	for _, s := range current {
		if s.ID == id {
			return c.removeFromDay(userID, s.Date, id)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (c *LocalCache) removeFromDay(userID, date, id string) error {
	df, err := c.LoadDay(userID, date)
	if err != nil {
		return err
	}
	kept := df.Shifts[:0]
	for _, s := range df.Shifts {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	df.Shifts = kept
	return c.SaveDay(userID, df)
}

// upsert replaces or appends s by ID.
func upsert(shifts []model.Shift, s model.Shift) []model.Shift {
	for i := range shifts {
		if shifts[i].ID == s.ID {
			shifts[i] = s
			return shifts
		}
	}
	return append(shifts, s)
}

func sortShifts(shifts []model.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date
		}
		return shifts[i].StartTime < shifts[j].StartTime
	})
}

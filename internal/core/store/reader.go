package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"rcip-agent/internal/core/rcip"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// Entry summarizes one persisted record for listings. Higher Version means a
// more recent conversion attempt for the same slug; no other ordering is
// implied.
type Entry struct {
	File      string    `json:"file"`
	Slug      string    `json:"slug"`
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// List reads the output directory and summarizes every record in it. The
// directory listing is the index; unreadable files are skipped with a
// warning.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !recordNameCheck.MatchString(de.Name()) {
			continue
		}

		record, err := s.Load(de.Name())
		if err != nil {
			common.LogWarn("skipping unreadable record",
				zap.String("file", de.Name()),
				zap.Error(err),
			)
			continue
		}

		slug, version := splitName(de.Name())
		entries = append(entries, Entry{
			File:      de.Name(),
			Slug:      slug,
			Version:   version,
			Name:      record.Meta.Name,
			ID:        record.ID,
			CreatedAt: record.Meta.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Slug != entries[j].Slug {
			return entries[i].Slug < entries[j].Slug
		}
		return entries[i].Version < entries[j].Version
	})

	return entries, nil
}

// Load reads one record by file name. The name must be a bare record file
// name inside the output directory; paths are rejected.
func (s *Store) Load(name string) (*rcip.RecipeRecord, error) {
	if !recordNameCheck.MatchString(name) || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid record file name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record rcip.RecipeRecord
	if err := common.ParseJSONBytes(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return &record, nil
}

func splitName(name string) (slug string, version int) {
	trimmed := strings.TrimSuffix(name, rcip.Extension)
	if m := versionedName.FindStringSubmatch(name); m != nil {
		v, _ := strconv.Atoi(m[2])
		return m[1], v
	}
	return trimmed, 0
}

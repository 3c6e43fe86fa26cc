package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"rcip-agent/internal/core/rcip"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	slugSeparators  = regexp.MustCompile(`[^a-z0-9]+`)
	versionedName   = regexp.MustCompile(`^(.+)_v(\d+)\` + rcip.Extension + `$`)
	recordNameCheck = regexp.MustCompile(`^[a-z0-9_]+(_v\d+)?\` + rcip.Extension + `$`)
)

// Store persists RecipeRecords as one file per record under a single output
// directory: slug.rcip for the first record of a name, slug_vN.rcip for
// later ones. Records are never overwritten or edited in place.
type Store struct {
	dir   string
	locks sync.Map // slug -> *sync.Mutex
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, common.NewPersistenceError(common.KindDirectoryUnwritable, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.dir }

// Slugify derives the deterministic filesystem-safe base name of a recipe:
// lowercase with non-alphanumeric runs collapsed to single underscores.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugSeparators.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "recipe"
	}
	return slug
}

// Save writes the record under the next free version for its slug and
// returns the final path. The scan+pick+rename sequence is a critical
// section per slug; concurrent writers of the same name get distinct,
// monotonically increasing versions. The write is atomic: content lands in a
// temporary file which is renamed into place, and the temporary file is
// removed on any failure.
func (s *Store) Save(record *rcip.RecipeRecord) (string, error) {
	slug := Slugify(record.Meta.Name)

	mu := s.lockFor(slug)
	mu.Lock()
	defer mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", common.NewPersistenceError(common.KindDirectoryUnwritable, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "."+slug+"-*.tmp")
	if err != nil {
		return "", common.NewPersistenceError(classifyIOError(err), err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", common.NewPersistenceError(classifyIOError(err), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", common.NewPersistenceError(classifyIOError(err), err)
	}

	for {
		name, err := s.nextName(slug)
		if err != nil {
			os.Remove(tmpPath)
			return "", common.NewPersistenceError(classifyIOError(err), err)
		}
		target := filepath.Join(s.dir, name)

		// Re-check at the moment of final placement: if the resolved
		// name appeared meanwhile, resolve the next version instead of
		// overwriting.
		if _, err := os.Stat(target); err == nil {
			common.LogWarn("resolved record name already exists, re-resolving",
				zap.String("file", name),
			)
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			os.Remove(tmpPath)
			return "", common.NewPersistenceError(classifyIOError(err), err)
		}

		if err := os.Rename(tmpPath, target); err != nil {
			os.Remove(tmpPath)
			return "", common.NewPersistenceError(classifyIOError(err), err)
		}

		common.LogInfo("recipe persisted",
			zap.String("file", name),
			zap.String("id", record.ID),
		)
		return target, nil
	}
}

// nextName picks the next free file name for a slug: the bare slug when no
// version exists yet, otherwise max(N)+1 with the bare file counting as
// version 0.
func (s *Store) nextName(slug string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}

	base := slug + rcip.Extension
	maxVersion := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == base {
			if maxVersion < 0 {
				maxVersion = 0
			}
			continue
		}
		m := versionedName.FindStringSubmatch(name)
		if m == nil || m[1] != slug {
			continue
		}
		if v, err := strconv.Atoi(m[2]); err == nil && v > maxVersion {
			maxVersion = v
		}
	}

	if maxVersion < 0 {
		return base, nil
	}
	return fmt.Sprintf("%s_v%d%s", slug, maxVersion+1, rcip.Extension), nil
}

func (s *Store) lockFor(slug string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(slug, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func classifyIOError(err error) common.FailKind {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return common.KindDiskFull
	}
	return common.KindDirectoryUnwritable
}

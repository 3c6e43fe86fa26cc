package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rcip-agent/internal/core/rcip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(name string) *rcip.RecipeRecord {
	return &rcip.RecipeRecord{
		FormatVersion: rcip.FormatVersion,
		ID:            "rcip-test-" + name,
		Meta: rcip.Meta{
			Name:       name,
			Author:     "Web Source",
			CreatedAt:  time.Now().UTC(),
			DietLabels: []string{},
		},
		Ingredients: []rcip.Ingredient{
			{Name: "flour", Amount: "300g", Allergens: []string{"gluten", "wheat"}, Diet: []string{"vegan", "vegetarian"}},
		},
		Steps: []rcip.Step{
			{Number: 1, Instruction: "Mix."},
		},
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Apple Pie":             "apple_pie",
		"Crème Brûlée!":         "cr_me_br_l_e",
		"  spaced   out  ":      "spaced_out",
		"UPPER-case_name":       "upper_case_name",
		"100% rye bread (dark)": "100_rye_bread_dark",
		"!!!":                   "recipe",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSaveFirstRecordUsesBareSlug(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.Save(testRecord("Apple Pie"))
	require.NoError(t, err)
	assert.Equal(t, "apple_pie.rcip", filepath.Base(path))
}

func TestSaveVersionMonotonicity(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	seed := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}
	base := seed("apple_pie.rcip", `{"id":"v0"}`)
	v1 := seed("apple_pie_v1.rcip", `{"id":"v1"}`)

	path, err := s.Save(testRecord("Apple Pie"))
	require.NoError(t, err)
	assert.Equal(t, "apple_pie_v2.rcip", filepath.Base(path))

	// Prior versions stay byte-unchanged.
	baseData, err := os.ReadFile(base)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"v0"}`, string(baseData))
	v1Data, err := os.ReadFile(v1)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"v1"}`, string(v1Data))
}

func TestSaveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	// The bare slug is already taken by a file the store did not write.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "soup.rcip"), []byte("original"), 0644))

	path, err := s.Save(testRecord("Soup"))
	require.NoError(t, err)
	assert.Equal(t, "soup_v1.rcip", filepath.Base(path))

	data, err := os.ReadFile(filepath.Join(dir, "soup.rcip"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestSaveConcurrentWritersSameSlug(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	const writers = 8
	paths := make([]string, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Save(testRecord("Apple Pie"))
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	// Every writer got a distinct version, no gaps, no leftover temp files.
	seen := map[string]bool{}
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, writers)

	assert.True(t, seen[filepath.Join(dir, "apple_pie.rcip")])
	for v := 1; v < writers; v++ {
		assert.True(t, seen[filepath.Join(dir, fmt.Sprintf("apple_pie_v%d.rcip", v))], "missing version %d", v)
	}
}

func TestListAndLoad(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(testRecord("Apple Pie"))
	require.NoError(t, err)
	_, err = s.Save(testRecord("Apple Pie"))
	require.NoError(t, err)
	_, err = s.Save(testRecord("Borscht"))
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "apple_pie.rcip", entries[0].File)
	assert.Equal(t, 0, entries[0].Version)
	assert.Equal(t, "apple_pie_v1.rcip", entries[1].File)
	assert.Equal(t, 1, entries[1].Version)
	assert.Equal(t, "borscht.rcip", entries[2].File)
	assert.Equal(t, "Borscht", entries[2].Name)

	record, err := s.Load("apple_pie_v1.rcip")
	require.NoError(t, err)
	assert.Equal(t, "Apple Pie", record.Meta.Name)
	assert.Equal(t, rcip.FormatVersion, record.FormatVersion)
}

func TestLoadRejectsInvalidNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "a/b.rcip", "apple_pie.json", "Apple.rcip", ""} {
		_, err := s.Load(name)
		assert.Error(t, err, "Load(%q) must fail", name)
	}
}

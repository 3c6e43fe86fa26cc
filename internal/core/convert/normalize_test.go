package convert

import (
	"strings"
	"testing"
	"time"

	"rcip-agent/internal/core/rcip"
	"rcip-agent/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cakeCandidate() *RawCandidate {
	return &RawCandidate{
		Name: "Simple Cake",
		Ingredients: []CandidateIngredient{
			{Name: "eggs", Amount: "2"},
			{Name: "flour", Amount: "300g"},
		},
		Steps: []CandidateStep{
			// Deliberately bad numbering; normalization must fix it.
			{Number: 4, Instruction: "Mix."},
			{Number: 9, Instruction: "Bake.", Time: "20 minutes"},
		},
	}
}

func TestNormalizeRenumbersSteps(t *testing.T) {
	record, err := Normalize(cakeCandidate(), "")
	require.NoError(t, err)

	require.Len(t, record.Steps, 2)
	for i, step := range record.Steps {
		assert.Equal(t, i+1, step.Number)
	}
	assert.Equal(t, "20 minutes", record.Steps[1].Time)
}

func TestNormalizeGeneratesID(t *testing.T) {
	r1, err := Normalize(cakeCandidate(), "")
	require.NoError(t, err)
	r2, err := Normalize(cakeCandidate(), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(r1.ID, "rcip-"))
	assert.NotEmpty(t, strings.TrimPrefix(r1.ID, "rcip-"))
	assert.NotEqual(t, r1.ID, r2.ID, "each conversion gets a fresh id")
}

func TestNormalizeDerivesTags(t *testing.T) {
	record, err := Normalize(cakeCandidate(), "https://example.com/cake")
	require.NoError(t, err)

	flour := record.Ingredients[1]
	assert.Contains(t, flour.Allergens, "gluten")
	assert.Contains(t, flour.Allergens, "wheat")

	eggs := record.Ingredients[0]
	assert.Contains(t, eggs.Allergens, "eggs")
	assert.NotContains(t, eggs.Diet, "vegan")

	assert.NotContains(t, record.Meta.DietLabels, "vegan")
	assert.Contains(t, record.Meta.DietLabels, "vegetarian")
}

func TestNormalizeDefaults(t *testing.T) {
	candidate := cakeCandidate()
	candidate.Name = ""
	candidate.Author = ""

	record, err := Normalize(candidate, "")
	require.NoError(t, err)

	assert.Equal(t, "Unknown Recipe", record.Meta.Name)
	assert.Equal(t, "Web Source", record.Meta.Author)
	assert.Empty(t, record.Meta.SourceURL)
	assert.Equal(t, rcip.FormatVersion, record.FormatVersion)

	assert.Equal(t, time.UTC, record.Meta.CreatedAt.Location())
	assert.WithinDuration(t, time.Now().UTC(), record.Meta.CreatedAt, time.Minute)
}

func TestNormalizeMissingIngredients(t *testing.T) {
	candidate := cakeCandidate()
	candidate.Ingredients = nil

	_, err := Normalize(candidate, "")
	assert.Equal(t, common.KindMissingIngredients, common.KindOf(err))
}

func TestNormalizeMissingSteps(t *testing.T) {
	candidate := cakeCandidate()
	candidate.Steps = nil

	_, err := Normalize(candidate, "")
	assert.Equal(t, common.KindMissingSteps, common.KindOf(err))
}

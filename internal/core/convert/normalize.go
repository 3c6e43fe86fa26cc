package convert

import (
	"time"

	"rcip-agent/internal/core/rcip"
	"rcip-agent/internal/pkg/common"

	"github.com/google/uuid"
)

const defaultAuthor = "Web Source"

// Normalize validates and coerces a candidate into a canonical RecipeRecord.
// The id is freshly generated here and never recomputed afterwards. Steps are
// renumbered contiguously from 1 regardless of the candidate's numbering, and
// allergen/diet tags are derived from the classifier, overwriting anything
// the extractor produced.
func Normalize(candidate *RawCandidate, sourceURL string) (*rcip.RecipeRecord, error) {
	if len(candidate.Ingredients) == 0 {
		return nil, common.NewNormalizationError(common.KindMissingIngredients)
	}
	if len(candidate.Steps) == 0 {
		return nil, common.NewNormalizationError(common.KindMissingSteps)
	}

	name := candidate.Name
	if name == "" {
		name = "Unknown Recipe"
	}
	author := candidate.Author
	if author == "" {
		author = defaultAuthor
	}

	ingredients := make([]rcip.Ingredient, 0, len(candidate.Ingredients))
	for _, ing := range candidate.Ingredients {
		allergens, diet := rcip.Classify(ing.Name)
		if allergens == nil {
			allergens = []string{}
		}
		ingredients = append(ingredients, rcip.Ingredient{
			Name:      ing.Name,
			Amount:    ing.Amount,
			Allergens: allergens,
			Diet:      diet,
		})
	}

	steps := make([]rcip.Step, 0, len(candidate.Steps))
	for i, st := range candidate.Steps {
		steps = append(steps, rcip.Step{
			Number:      i + 1,
			Instruction: st.Instruction,
			Time:        st.Time,
		})
	}

	dietLabels := rcip.DietLabels(ingredients)
	if dietLabels == nil {
		dietLabels = []string{}
	}

	return &rcip.RecipeRecord{
		FormatVersion: rcip.FormatVersion,
		ID:            "rcip-" + uuid.NewString(),
		Meta: rcip.Meta{
			Name:        name,
			Description: candidate.Description,
			Author:      author,
			CreatedAt:   time.Now().UTC(),
			SourceURL:   sourceURL,
			DietLabels:  dietLabels,
		},
		Ingredients: ingredients,
		Steps:       steps,
	}, nil
}

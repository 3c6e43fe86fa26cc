package rcip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDeterministic(t *testing.T) {
	inputs := []string{"300g flour", "2 eggs", "fresh salmon fillet", "unknown thing", ""}

	for _, in := range inputs {
		a1, d1 := Classify(in)
		for i := 0; i < 5; i++ {
			a2, d2 := Classify(in)
			assert.Equal(t, a1, a2, "allergens must be stable for %q", in)
			assert.Equal(t, d1, d2, "diet must be stable for %q", in)
		}
	}
}

func TestClassifyAllergenUnion(t *testing.T) {
	allergens, _ := Classify("300g wheat flour")
	assert.Contains(t, allergens, "gluten")
	assert.Contains(t, allergens, "wheat")

	allergens, _ = Classify("2 Eggs")
	assert.Equal(t, []string{"eggs"}, allergens)

	allergens, _ = Classify("peanut butter")
	assert.Contains(t, allergens, "peanuts")
}

func TestClassifyUnknownIngredient(t *testing.T) {
	allergens, diet := Classify("dragonfruit")
	assert.Empty(t, allergens)
	// Nothing excludes the compatibility tags.
	assert.Equal(t, []string{"vegan", "vegetarian"}, diet)
}

func TestClassifyDietExclusions(t *testing.T) {
	_, diet := Classify("chicken breast")
	assert.NotContains(t, diet, "vegetarian")
	assert.NotContains(t, diet, "vegan")

	_, diet = Classify("whole milk")
	assert.Contains(t, diet, "vegetarian")
	assert.NotContains(t, diet, "vegan")
}

func TestDietLabelsIntersection(t *testing.T) {
	mk := func(name string) Ingredient {
		allergens, diet := Classify(name)
		return Ingredient{Name: name, Allergens: allergens, Diet: diet}
	}

	// One meat ingredient removes vegetarian/vegan from the whole recipe,
	// even though the other ingredients are individually compatible.
	labels := DietLabels([]Ingredient{mk("rice"), mk("carrot"), mk("bacon")})
	assert.NotContains(t, labels, "vegetarian")
	assert.NotContains(t, labels, "vegan")

	labels = DietLabels([]Ingredient{mk("rice"), mk("carrot")})
	assert.Contains(t, labels, "vegetarian")
	assert.Contains(t, labels, "vegan")
}

func TestDietLabelsAllergenDerived(t *testing.T) {
	mk := func(name string) Ingredient {
		allergens, diet := Classify(name)
		return Ingredient{Name: name, Allergens: allergens, Diet: diet}
	}

	labels := DietLabels([]Ingredient{mk("rice"), mk("carrot")})
	assert.Contains(t, labels, "gluten-free")
	assert.Contains(t, labels, "dairy-free")
	assert.Contains(t, labels, "nut-free")

	labels = DietLabels([]Ingredient{mk("wheat flour"), mk("milk")})
	assert.NotContains(t, labels, "gluten-free")
	assert.NotContains(t, labels, "dairy-free")
	assert.Contains(t, labels, "nut-free")
}

func TestDietLabelsEmpty(t *testing.T) {
	assert.Empty(t, DietLabels(nil))
}

package rcip

import (
	"sort"
	"strings"
)

// Allergen and diet classification is pure keyword matching against the
// static tables below: case-insensitive substring, inclusive union. Unknown
// ingredients classify to empty sets, never to an error.

var allergenKeywords = map[string][]string{
	"milk":      {"milk", "cream", "butter", "cheese", "yogurt", "yoghurt", "kefir", "curd", "ghee"},
	"lactose":   {"milk", "cream", "yogurt", "yoghurt", "kefir", "ice cream"},
	"eggs":      {"egg", "yolk", "mayonnaise", "meringue"},
	"fish":      {"fish", "salmon", "trout", "cod", "tuna", "mackerel", "anchov", "sardine"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "mussel", "oyster", "squid", "clam", "scallop"},
	"tree-nuts": {"almond", "hazelnut", "cashew", "pistachio", "pecan", "walnut", "macadamia"},
	"peanuts":   {"peanut"},
	"wheat":     {"flour", "wheat", "bread", "pasta", "spaghetti", "noodle", "bun", "cracker", "tortilla"},
	"gluten":    {"flour", "wheat", "rye", "barley", "oat", "bread", "pasta", "noodle", "couscous", "semolina"},
	"soybeans":  {"soy", "tofu", "edamame", "tempeh", "miso"},
	"sesame":    {"sesame", "tahini"},
	"celery":    {"celery"},
	"mustard":   {"mustard"},
	"sulphites": {"wine", "vinegar"},
}

var meatKeywords = []string{
	"chicken", "beef", "pork", "bacon", "ham", "lamb", "sausage", "meat",
	"turkey", "duck", "veal", "salami", "pepperoni", "prosciutto",
	"gelatin", "lard", "steak",
}

var fishKeywords = append(allergenKeywords["fish"], allergenKeywords["shellfish"]...)

var animalProductKeywords = func() []string {
	kws := append([]string{"honey"}, allergenKeywords["milk"]...)
	kws = append(kws, allergenKeywords["eggs"]...)
	return kws
}()

// dietExclusions maps a diet compatibility tag to the keywords that strip it
// from an ingredient.
var dietExclusions = map[string][]string{
	"vegetarian": append(append([]string{}, meatKeywords...), fishKeywords...),
	"vegan":      append(append(append([]string{}, meatKeywords...), fishKeywords...), animalProductKeywords...),
}

// Classify maps an ingredient name to its allergen tags and its diet
// compatibility tags. It is deterministic and performs no I/O.
func Classify(name string) (allergens []string, diet []string) {
	lower := strings.ToLower(name)

	for tag, keywords := range allergenKeywords {
		if matchesAny(lower, keywords) {
			allergens = append(allergens, tag)
		}
	}

	for tag, keywords := range dietExclusions {
		if !matchesAny(lower, keywords) {
			diet = append(diet, tag)
		}
	}

	sort.Strings(allergens)
	sort.Strings(diet)
	return allergens, diet
}

// DietLabels computes the recipe-level diet classification from classified
// ingredients. Compatibility tags (vegetarian, vegan) are intersected: one
// exclusionary ingredient removes the tag from the whole recipe. Allergen
// derived labels (gluten-free, dairy-free, nut-free) are added when no
// ingredient carries the corresponding allergen.
func DietLabels(ingredients []Ingredient) []string {
	if len(ingredients) == 0 {
		return nil
	}

	compatible := map[string]bool{}
	for tag := range dietExclusions {
		compatible[tag] = true
	}
	seenAllergens := map[string]bool{}

	for _, ing := range ingredients {
		has := map[string]bool{}
		for _, d := range ing.Diet {
			has[d] = true
		}
		for tag := range compatible {
			if !has[tag] {
				compatible[tag] = false
			}
		}
		for _, a := range ing.Allergens {
			seenAllergens[a] = true
		}
	}

	var labels []string
	for tag, ok := range compatible {
		if ok {
			labels = append(labels, tag)
		}
	}
	if !seenAllergens["gluten"] && !seenAllergens["wheat"] {
		labels = append(labels, "gluten-free")
	}
	if !seenAllergens["milk"] && !seenAllergens["lactose"] {
		labels = append(labels, "dairy-free")
	}
	if !seenAllergens["tree-nuts"] && !seenAllergens["peanuts"] {
		labels = append(labels, "nut-free")
	}

	sort.Strings(labels)
	return labels
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

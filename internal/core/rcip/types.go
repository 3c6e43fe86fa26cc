package rcip

import "time"

// FormatVersion is the RCIP interchange format version written into every
// record.
const FormatVersion = "0.1"

// Extension is the file extension of persisted records.
const Extension = ".rcip"

// RecipeRecord is one RCIP document, the canonical structured recipe shape.
type RecipeRecord struct {
	FormatVersion string       `json:"rcip_version"`
	ID            string       `json:"id"`
	Meta          Meta         `json:"meta"`
	Ingredients   []Ingredient `json:"ingredients"`
	Steps         []Step       `json:"steps"`
}

// Meta carries recipe metadata.
type Meta struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	SourceURL   string    `json:"source_url,omitempty"`
	// DietLabels is the recipe-level diet classification: the
	// intersection of every ingredient's compatibility tags plus the
	// allergen-derived "-free" labels.
	DietLabels []string `json:"diet_labels"`
}

// Ingredient is one ingredient line. Order matches the source presentation.
type Ingredient struct {
	Name      string   `json:"name"`
	Amount    string   `json:"amount"`
	Allergens []string `json:"allergens"`
	Diet      []string `json:"diet"`
}

// Step is one cooking instruction. Numbers are contiguous and 1-based.
type Step struct {
	Number      int    `json:"number"`
	Instruction string `json:"instruction"`
	Time        string `json:"time,omitempty"`
}

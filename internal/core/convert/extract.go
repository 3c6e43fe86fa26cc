package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rcip-agent/internal/core/ai/provider"
	"rcip-agent/internal/core/ai/service"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// maxPromptText caps how much scraped text is fed to the model, to keep
// token usage bounded.
const maxPromptText = 2500

const systemMessage = "You extract ingredients and cooking steps from recipe text."

// RawCandidate is the unvalidated structured record parsed out of the
// text-generation service's reply.
type RawCandidate struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Author      string                `json:"author"`
	Ingredients []CandidateIngredient `json:"ingredients"`
	Steps       []CandidateStep       `json:"steps"`
}

// CandidateIngredient is one unvalidated ingredient line.
type CandidateIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// CandidateStep is one unvalidated instruction.
type CandidateStep struct {
	Number      int    `json:"number"`
	Instruction string `json:"instruction"`
	Time        string `json:"time"`
}

// Extractor turns raw recipe text into a RawCandidate via one upstream
// text-generation call per attempt. Failures are all-or-nothing; it never
// returns a partial candidate.
type Extractor struct {
	ai            *service.Service
	minTextLength int
}

// NewExtractor creates an extractor backed by the AI service.
func NewExtractor(ai *service.Service, minTextLength int) *Extractor {
	return &Extractor{
		ai:            ai,
		minTextLength: minTextLength,
	}
}

// Extract requests a structured rendering of rawText and parses it. Input
// below the minimum length is rejected before any network call.
func (e *Extractor) Extract(ctx context.Context, rawText, recipeName string) (*RawCandidate, error) {
	rawText = strings.TrimSpace(rawText)
	if len(rawText) < e.minTextLength {
		return nil, common.NewExtractionError(common.KindEmptyInput,
			fmt.Errorf("raw text is %d bytes, need at least %d", len(rawText), e.minTextLength))
	}

	resp, err := e.ai.ProcessPrompt(ctx, systemMessage, buildPrompt(recipeName, rawText))
	if err != nil {
		if errors.Is(err, provider.ErrEmptyCompletion) {
			return nil, common.NewExtractionError(common.KindUnparsableResponse, err)
		}
		return nil, common.NewExtractionError(common.KindServiceUnavailable, err)
	}

	candidate, err := parseCandidate(resp.Content)
	if err != nil {
		common.LogWarn("could not parse AI response",
			zap.String("recipe", recipeName),
			zap.Int("response_length", len(resp.Content)),
			zap.Error(err),
		)
		return nil, common.NewExtractionError(common.KindUnparsableResponse, err)
	}

	if candidate.Name == "" {
		candidate.Name = recipeName
	}

	return candidate, nil
}

func buildPrompt(recipeName, rawText string) string {
	if len(rawText) > maxPromptText {
		rawText = rawText[:maxPromptText]
	}

	return fmt.Sprintf(`Extract from the recipe text ONLY the list of ingredients and cooking steps.

NAME: %s

TEXT:
%s

Requirements:
1. Return exactly one JSON object, nothing else
2. All keys and string values must use double quotes
3. Do not invent ingredients or steps that are not in the text
4. "amount" is the free-text quantity as written, e.g. "300g" or "to taste"
5. "time" is the free-text duration of a step if stated, otherwise ""
6. Every field must be present; use "" when unknown

Return this JSON shape:
{"name":"%s","description":"","author":"","ingredients":[{"name":"flour","amount":"300g"}],"steps":[{"number":1,"instruction":"Mix flour with eggs","time":""}]}`,
		recipeName, rawText, recipeName)
}

// parseCandidate isolates the structured block in free-form model output and
// decodes it leniently. The model is allowed to wrap the block in prose or
// markdown fences; everything outside the first '{' and the last '}' is
// discarded.
func parseCandidate(content string) (*RawCandidate, error) {
	content = strings.TrimSpace(content)

	start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no structured block in response")
	}
	block := common.QuoteJSONKeys(content[start : end+1])

	var loose struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Author      string `json:"author"`
		Ingredients []struct {
			Name   string `json:"name"`
			Amount string `json:"amount"`
		} `json:"ingredients"`
		Steps []struct {
			Number      json.Number `json:"number"`
			Instruction string      `json:"instruction"`
			Time        string      `json:"time"`
		} `json:"steps"`
	}
	if err := common.ParseJSON(block, &loose); err != nil {
		return nil, fmt.Errorf("failed to parse structured block: %w", err)
	}

	candidate := &RawCandidate{
		Name:        strings.TrimSpace(loose.Name),
		Description: strings.TrimSpace(loose.Description),
		Author:      strings.TrimSpace(loose.Author),
	}
	for _, ing := range loose.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		candidate.Ingredients = append(candidate.Ingredients, CandidateIngredient{
			Name:   name,
			Amount: strings.TrimSpace(ing.Amount),
		})
	}
	for _, st := range loose.Steps {
		instruction := strings.TrimSpace(st.Instruction)
		if instruction == "" {
			continue
		}
		number, _ := st.Number.Int64()
		candidate.Steps = append(candidate.Steps, CandidateStep{
			Number:      int(number),
			Instruction: instruction,
			Time:        strings.TrimSpace(st.Time),
		})
	}

	if len(candidate.Ingredients) == 0 {
		return nil, fmt.Errorf("structured block has no ingredients")
	}
	if len(candidate.Steps) == 0 {
		return nil, fmt.Errorf("structured block has no steps")
	}

	return candidate, nil
}

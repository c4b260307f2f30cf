package score

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/llm"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/prompt"
)

// Generator is the subset of llm.Client that the retry manager needs,
// narrowed to ease testing with a fake.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// RetryManager drives the schema-repair retry loop: it asks the model for a
// scoring response, validates it against the JSON schema, and on failure
// re-prompts with the validation errors appended, up to SchemaRetries
// additional attempts.
type RetryManager struct {
	Client        Generator
	Model         string
	Temperature   float64
	SchemaRetries int
}

// Diagnostics records how many attempts a scoring run took and whether the
// prompt needed to be augmented with validation errors.
type Diagnostics struct {
	Attempts        int
	SchemaErrors    [][]string
	PromptAugmented bool
}

// Run scores c, returning the normalized Score and retry diagnostics. A
// transport-level failure (llm.ErrModelUnreachable) is returned immediately
// without consuming a schema-retry attempt, since it signals the whole
// model host is down rather than a bad individual response.
func (m *RetryManager) Run(ctx context.Context, c candidate.Candidate) (candidate.Score, Diagnostics, error) {
	maxAttempts := 1 + m.SchemaRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	builder := prompt.NewBuilder()
	basePrompt := builder.Build(c)
	currentPrompt := basePrompt

	var diag Diagnostics
	for attempt := 0; attempt < maxAttempts; attempt++ {
		diag.Attempts = attempt + 1

		text, err := m.Client.Generate(ctx, llm.Request{
			Model:       m.Model,
			Prompt:      currentPrompt,
			Temperature: m.Temperature,
			TopP:        1.0,
		})
		if err != nil {
			if errors.Is(err, llm.ErrModelUnreachable) {
				return candidate.Score{}, diag, err
			}
			return candidate.Score{}, diag, fmt.Errorf("generate: %w", err)
		}

		response, err := DecodeResponse(text)
		if err != nil {
			diag.SchemaErrors = append(diag.SchemaErrors, []string{"response was not valid JSON: " + err.Error()})
			currentPrompt = prompt.Augment(basePrompt, diag.SchemaErrors[len(diag.SchemaErrors)-1])
			diag.PromptAugmented = true
			continue
		}

		if errs := Validate(response); len(errs) > 0 {
			diag.SchemaErrors = append(diag.SchemaErrors, errs)
			currentPrompt = prompt.Augment(basePrompt, errs)
			diag.PromptAugmented = true
			continue
		}

		result := Normalize(response, c, m.Model, attempt)
		result.ModelParams = map[string]any{
			"attempts":         diag.Attempts,
			"schema_errors":    diag.SchemaErrors,
			"prompt_augmented": diag.PromptAugmented,
		}
		return result, diag, nil
	}

	return candidate.Score{}, diag, fmt.Errorf("score: exhausted %d attempts, last errors: %s", maxAttempts, joinErrors(diag.SchemaErrors))
}

func joinErrors(all [][]string) string {
	if len(all) == 0 {
		return "none"
	}
	return strings.Join(all[len(all)-1], "; ")
}

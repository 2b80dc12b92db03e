// Package llm holds the optional reformulation step: a language model
// rewrites already-corrected content into more fluent prose. It runs
// strictly after verification and never feeds back into verdicts or
// scores.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pverdier/veracite/internal/model"
)

// Provider is a reformulation backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Reword rewrites corrected content into fluent prose under the
	// strict-figures constraint
	Reword(ctx context.Context, req RewordRequest) (*RewordResponse, error)

	// IsAvailable reports whether the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// RewordRequest carries the content to reformulate
type RewordRequest struct {
	// Original is the text as the author wrote it
	Original string

	// Corrected is the template-corrected text to smooth out
	Corrected string

	// Facts are the corroborated segments; the model may keep them verbatim
	Facts []model.VerifiedFact

	// Model overrides the configured model for this request
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// RewordResponse is the reformulated output
type RewordResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds reformulator configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns the built-in defaults: disabled
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts the application config section
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// BuildPrompt constructs the reformulation prompt. The strict-figures rule
// mirrors the verification contract: the model smooths language, it never
// adds facts.
func BuildPrompt(req RewordRequest) string {
	var b strings.Builder
	b.WriteString(`Rewrite the corrected text below so it reads naturally.

RULES:
1. Do NOT introduce any number, percentage, year or named source that is absent from the inputs.
2. Keep every hedge ("approximately", "it would seem that", "vers", "cette période") or an equivalent one.
3. Verified facts may be restated verbatim.
4. Answer in the language of the corrected text. Output only the rewritten text.

Original text:
`)
	b.WriteString(req.Original)
	b.WriteString("\n\nCorrected text:\n")
	b.WriteString(req.Corrected)

	if len(req.Facts) > 0 {
		b.WriteString("\n\nVerified facts:\n")
		for _, f := range req.Facts {
			fmt.Fprintf(&b, "- %s\n", f.Text)
		}
	}
	return b.String()
}

var figureRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Figures returns the set of numeric figures appearing in text. Used to
// enforce the strict-figures rule on model output.
func Figures(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range texts {
		for _, m := range figureRe.FindAllString(t, -1) {
			set[m] = struct{}{}
		}
	}
	return set
}

// CheckFigures returns the first figure in output that appears in none of
// the allowed inputs, or "" when the output is clean.
func CheckFigures(output string, allowed map[string]struct{}) string {
	for _, m := range figureRe.FindAllString(output, -1) {
		if _, ok := allowed[m]; !ok {
			return m
		}
	}
	return ""
}

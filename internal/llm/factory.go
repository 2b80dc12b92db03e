package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a reformulation provider from configuration. An
// empty provider name means the feature is disabled: (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

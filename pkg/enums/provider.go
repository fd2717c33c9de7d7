package enums

import "fmt"

// AIProvider enumerates the supported AI vendors. Dispatch on this type is an
// exhaustive switch so adding a provider is a compile-time concern.
type AIProvider string

const (
	AIProviderGoogle AIProvider = "google"
	AIProviderOpenAI AIProvider = "openai"
)

var validAIProviders = []AIProvider{
	AIProviderGoogle,
	AIProviderOpenAI,
}

// IsValid reports whether the value matches the canonical provider enum.
func (p AIProvider) IsValid() bool {
	for _, candidate := range validAIProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseAIProvider converts the raw string to AIProvider.
func ParseAIProvider(value string) (AIProvider, error) {
	for _, candidate := range validAIProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ai provider %q", value)
}

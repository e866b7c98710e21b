package domain

import "errors"

var (
	ErrGeminiAPIFailed = errors.New("gemini API processing failed")
)

type (
	// SurpriseDish is what the text service proposes for a set of leftovers.
	SurpriseDish struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Calories    int      `json:"calories"`
		Allergens   []string `json:"allergens"`
		Ingredients []string `json:"ingredients"`
	}
)

// FallbackSurpriseDish is served whenever the text service cannot propose one.
func FallbackSurpriseDish(leftoverNames []string) SurpriseDish {
	return SurpriseDish{
		Name:        "Chef's Daily Surprise Fusion",
		Description: "A masterfully balanced bowl combining today's premium surplus ingredients into a final, limited-edition zero-waste feast.",
		Calories:    550,
		Allergens:   []string{"See Staff"},
		Ingredients: leftoverNames,
	}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":           "electronics",
		"Home & Garden":         "home-garden",
		"  Spaced  Out  ":       "spaced-out",
		"Already-Slugged":       "already-slugged",
		"Café con Leche":        "caf-con-leche",
		"Model X 2.0":           "model-x-2-0",
		"UPPER":                 "upper",
		"":                      "",
		"!!!":                   "",
		"123 Numbers First":     "123-numbers-first",
		"trailing punctuation!": "trailing-punctuation",
	}

	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "winter-sale-2025", Slugify("Winter Sale 2025"))
	}
}

package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Intro to SQL":          "intro-to-sql",
		"  Power BI -- Basics ": "power-bi-basics",
		"Week #1: Joins!":       "week-1-joins",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("", "anything"))
	assert.True(t, ContainsFold("SQL", "intro", "learn-sql"))
	assert.True(t, ContainsFold(" power ", "Power BI"))
	assert.False(t, ContainsFold("python", "sql", "power-bi"))
}

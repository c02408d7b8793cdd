package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Community Guidelines", NormalizeTitle("  community guidelines "))
	assert.Equal(t, "Faq", NormalizeTitle("FAQ"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Community Guidelines":    "community-guidelines",
		"  Visitor Parking!  ":    "visitor-parking",
		"Pool & Gym Hours (2026)": "pool-gym-hours-2026",
		"---":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

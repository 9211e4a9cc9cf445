package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePatterns(t *testing.T) {
	patterns := GeneratePatterns("jane", "doe", "acme.com")

	require.Len(t, patterns, 8)
	assert.Equal(t, "jane.doe@acme.com", patterns[0])
	assert.Contains(t, patterns, "janedoe@acme.com")
	assert.Contains(t, patterns, "jdoe@acme.com")
	assert.Contains(t, patterns, "jane@acme.com")
	assert.Contains(t, patterns, "jane_doe@acme.com")
	assert.Contains(t, patterns, "j.doe@acme.com")
	assert.Contains(t, patterns, "doe.jane@acme.com")
	assert.Contains(t, patterns, "janed@acme.com")
}

func TestGeneratePatterns_Degenerate(t *testing.T) {
	assert.Equal(t, []string{"prince@acme.com"}, GeneratePatterns("prince", "", "acme.com"))
	assert.Nil(t, GeneratePatterns("", "doe", "acme.com"))
	assert.Nil(t, GeneratePatterns("jane", "doe", ""))
}

func TestInferConvention(t *testing.T) {
	tests := []struct {
		name   string
		emails []string
		want   Convention
	}{
		{"dot majority", []string{
			"a.smith@x.com", "b.jones@x.com", "c.wu@x.com", "d.lee@x.com", "e.kim@x.com",
		}, ConventionFirstDotLast},
		{"underscore majority", []string{
			"a_smith@x.com", "b_jones@x.com", "c_wu@x.com",
		}, ConventionFirstULast},
		{"short locals", []string{
			"jsm@x.com", "bwu@x.com", "clee@x.com", "dkim@x.com", "efox@x.com",
		}, ConventionFLast},
		{"long plain locals", []string{
			"janesmith@x.com", "bobjones@x.com", "carolwu@x.com",
		}, ConventionFirstLast},
		{"empty sample", nil, ConventionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferConvention(tt.emails))
		})
	}
}

func TestReorderPatterns(t *testing.T) {
	patterns := GeneratePatterns("jane", "doe", "acme.com")

	reordered := ReorderPatterns(patterns, ConventionFirstULast)
	assert.Equal(t, "jane_doe@acme.com", reordered[0])
	assert.Len(t, reordered, len(patterns))

	// Unknown conventions leave the order untouched.
	assert.Equal(t, patterns, ReorderPatterns(patterns, ConventionUnknown))
}

func TestReorderPatterns_StableWithinPartitions(t *testing.T) {
	patterns := GeneratePatterns("jane", "doe", "acme.com")
	reordered := ReorderPatterns(patterns, ConventionFirstDotLast)

	// jane.doe comes before j.doe and doe.jane, matching generation order.
	idx := func(p string) int {
		for i, v := range reordered {
			if v == p {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("jane.doe@acme.com"), idx("j.doe@acme.com"))
	assert.Less(t, idx("j.doe@acme.com"), idx("doe.jane@acme.com"))
}

func TestExtractEmails(t *testing.T) {
	text := `Contact Jane.Doe@acme.com or bob@acme.com. Ignore spam@other.com.
	Repeated: jane.doe@acme.com`

	out := ExtractEmails(text, "acme.com")
	assert.Equal(t, []string{"jane.doe@acme.com", "bob@acme.com"}, out)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("jane.doe@acme.com"))
	assert.True(t, ValidAddress("j_doe+tag@sub.acme.io"))
	assert.False(t, ValidAddress("not-an-email"))
	assert.False(t, ValidAddress("@acme.com"))
	assert.False(t, ValidAddress("jane@"))
}

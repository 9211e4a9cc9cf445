package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		resp *MessageResponse
		want string
	}{
		{"nil response", nil, ""},
		{"empty content", &MessageResponse{}, ""},
		{
			"single block",
			&MessageResponse{Content: []ContentBlock{{Type: "text", Text: "hello"}}},
			"hello",
		},
		{
			"multiple blocks joined",
			&MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "first"},
				{Type: "text", Text: "second"},
			}},
			"first\nsecond",
		},
		{
			"empty blocks skipped",
			&MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: ""},
				{Type: "text", Text: "only"},
			}},
			"only",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.resp))
		})
	}
}

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	// 1M input at $0.80 plus 0.5M output at $4.00.
	assert.InDelta(t, 2.80, usage.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, usage.EstimateCost("some-unknown-model"))
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})

	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResumeToken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want TokenKind
	}{
		{"empty", "", TokenFresh},
		{"whitespace", "   \n", TokenFresh},
		{"state blob", `{"id":"thread_1","messages":[]}`, TokenRawState},
		{"truncated blob", `{"id":"thread_1","messages":`, TokenFresh},
		{"thread id", "thread_4f2a1b", TokenThreadRef},
		{"id with spaces", "thread 4f2a1b", TokenFresh},
		{"oversized id", strings.Repeat("x", 65), TokenFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ParseResumeToken(tt.raw)
			assert.Equal(t, tt.want, token.Kind)
		})
	}
}

func TestParseResumeToken_Variants(t *testing.T) {
	blob := `{"id":"thread_1","messages":[]}`
	token := ParseResumeToken(blob)
	assert.Equal(t, TokenRawState, token.Kind)
	assert.JSONEq(t, blob, string(token.State))

	token = ParseResumeToken("  thread_4f2a1b  ")
	assert.Equal(t, TokenThreadRef, token.Kind)
	assert.Equal(t, "thread_4f2a1b", token.ThreadID)
}

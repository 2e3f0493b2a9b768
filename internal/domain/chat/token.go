package chat

import (
	"encoding/json"
	"strings"
)

// TokenKind discriminates the resume-token variants.
type TokenKind int

const (
	// TokenFresh: no usable prior state; start a brand-new thread.
	TokenFresh TokenKind = iota
	// TokenRawState: the client sent back a full serialized state blob.
	TokenRawState
	// TokenThreadRef: the client sent a bare thread id to resume by.
	TokenThreadRef
)

// ResumeToken is the parsed form of the opaque token a client presents to
// continue a conversation. The variant is decided once at parse time.
type ResumeToken struct {
	Kind     TokenKind
	State    json.RawMessage
	ThreadID string
}

// ParseResumeToken classifies a raw token. A malformed or absent token
// yields TokenFresh, never an error: the conversation continues on a new
// thread.
func ParseResumeToken(raw string) ResumeToken {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ResumeToken{Kind: TokenFresh}
	}

	if strings.HasPrefix(raw, "{") {
		if !json.Valid([]byte(raw)) {
			return ResumeToken{Kind: TokenFresh}
		}
		return ResumeToken{Kind: TokenRawState, State: json.RawMessage(raw)}
	}

	// A bare thread id is a short opaque identifier; anything with
	// whitespace is not one.
	if strings.ContainsAny(raw, " \t\n\r") || len(raw) > 64 {
		return ResumeToken{Kind: TokenFresh}
	}
	return ResumeToken{Kind: TokenThreadRef, ThreadID: raw}
}

package agent

import (
	"strings"
	"sync"
)

// FallbackStatus is shown for functions without a registered description.
const FallbackStatus = "Processing..."

// StatusRegistry maps function names to the human progress message shown
// while the function runs. It is populated once at startup from the
// declared per-function descriptions; derivation is deterministic per name,
// so derived messages are memoized. Reads are safe for concurrent use.
type StatusRegistry struct {
	mu           sync.RWMutex
	descriptions map[string]string
	memo         map[string]string
}

// NewStatusRegistry builds an empty registry.
func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		descriptions: make(map[string]string),
		memo:         make(map[string]string),
	}
}

// Register declares a function's description, e.g. "Create a new task".
func (r *StatusRegistry) Register(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptions[name] = description
	delete(r.memo, name)
}

// StatusFor returns the progress message for a function name. Unknown
// functions fall back to a generic message.
func (r *StatusRegistry) StatusFor(name string) string {
	r.mu.RLock()
	if status, ok := r.memo[name]; ok {
		r.mu.RUnlock()
		return status
	}
	description, registered := r.descriptions[name]
	r.mu.RUnlock()

	if !registered {
		return FallbackStatus
	}

	status := deriveStatus(description)

	r.mu.Lock()
	r.memo[name] = status
	r.mu.Unlock()
	return status
}

// irregular gerunds that the drop-e/append-ing rules get wrong.
var irregularGerunds = map[string]string{
	"get": "getting",
	"set": "setting",
	"put": "putting",
	"run": "running",
}

// deriveStatus turns an imperative description ("Create a new task") into a
// progress message ("Creating new task..."): the leading verb becomes a
// gerund and articles are dropped from the rest.
func deriveStatus(description string) string {
	words := strings.Fields(description)
	if len(words) == 0 {
		return FallbackStatus
	}

	verb := gerund(strings.ToLower(words[0]))
	parts := []string{strings.ToUpper(verb[:1]) + verb[1:]}

	for _, word := range words[1:] {
		switch strings.ToLower(word) {
		case "a", "an", "the":
			continue
		}
		parts = append(parts, strings.ToLower(strings.Trim(word, ".")))
	}

	return strings.Join(parts, " ") + "..."
}

func gerund(verb string) string {
	if g, ok := irregularGerunds[verb]; ok {
		return g
	}
	if strings.HasSuffix(verb, "e") && !strings.HasSuffix(verb, "ee") {
		return verb[:len(verb)-1] + "ing"
	}
	return verb + "ing"
}

package domain

import "strings"

// DefaultMaxDepth bounds recursive traversal of nested payloads.
const DefaultMaxDepth = 10

// RedactionPolicy is the immutable configuration of the redaction engine:
// extra sensitive-field tokens, the replacement marker, the recursion depth
// bound, and dot-paths excluded from field-based redaction. Built once at
// startup and freely shared between goroutines without locking.
type RedactionPolicy struct {
	extraTokens   []string
	marker        string
	maxDepth      int
	excludedPaths map[string]struct{}
}

// NewRedactionPolicy builds a policy. Zero maxDepth means DefaultMaxDepth;
// an empty marker means RedactionMarker. Extra tokens extend the classifier's
// built-in dictionary without altering it.
func NewRedactionPolicy(extraTokens []string, maxDepth int, excludedPaths []string) *RedactionPolicy {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	tokens := make([]string, 0, len(extraTokens))
	for _, token := range extraTokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	excluded := make(map[string]struct{}, len(excludedPaths))
	for _, path := range excludedPaths {
		path = strings.TrimSpace(path)
		if path != "" {
			excluded[path] = struct{}{}
		}
	}

	return &RedactionPolicy{
		extraTokens:   tokens,
		marker:        RedactionMarker,
		maxDepth:      maxDepth,
		excludedPaths: excluded,
	}
}

// DefaultRedactionPolicy returns the policy with no extra tokens or exclusions.
func DefaultRedactionPolicy() *RedactionPolicy {
	return NewRedactionPolicy(nil, DefaultMaxDepth, nil)
}

// ExtraTokens returns the configured additional sensitive-field tokens.
func (p *RedactionPolicy) ExtraTokens() []string { return p.extraTokens }

// Marker returns the replacement marker for redacted content.
func (p *RedactionPolicy) Marker() string { return p.marker }

// MaxDepth returns the recursion depth bound.
func (p *RedactionPolicy) MaxDepth() int { return p.maxDepth }

// IsExcluded reports whether the exact dot-path is exempt from field-based
// redaction (e.g., "request.headers.user-agent").
func (p *RedactionPolicy) IsExcluded(path string) bool {
	_, ok := p.excludedPaths[path]
	return ok
}

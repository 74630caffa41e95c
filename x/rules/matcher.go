package rules

import "strings"

// Matcher matches strings against a set of wildcard patterns. A "*"
// matches any run of characters, including none. A pattern prefixed with
// "~" is a negation: a candidate matching any negated pattern never
// matches, no matter what the positive patterns say.
type Matcher struct {
	positive []string
	negative []string
}

func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if strings.HasPrefix(p, "~") {
			m.negative = append(m.negative, strings.TrimPrefix(p, "~"))
		} else {
			m.positive = append(m.positive, p)
		}
	}
	return m
}

func (m *Matcher) Match(candidate string) bool {
	for _, p := range m.negative {
		if wildcardMatch(p, candidate) {
			return false
		}
	}
	for _, p := range m.positive {
		if wildcardMatch(p, candidate) {
			return true
		}
	}
	return false
}

// MatchAll reports whether every candidate matches.
func (m *Matcher) MatchAll(candidates []string) bool {
	if len(candidates) == 0 {
		return false
	}
	for _, c := range candidates {
		if !m.Match(c) {
			return false
		}
	}
	return true
}

// Filter returns the candidates that match, preserving order.
func (m *Matcher) Filter(candidates []string) []string {
	out := []string{}
	for _, c := range candidates {
		if m.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func wildcardMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}

	return strings.HasSuffix(s, parts[len(parts)-1])
}

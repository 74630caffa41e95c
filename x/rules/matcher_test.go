package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherExact(t *testing.T) {
	m := NewMatcher([]string{"logstash"})

	assert.True(t, m.Match("logstash"))
	assert.False(t, m.Match("logstash-2026"))
}

func TestMatcherWildcard(t *testing.T) {
	m := NewMatcher([]string{"logstash-*"})

	assert.True(t, m.Match("logstash-2026"))
	assert.True(t, m.Match("logstash-"))
	assert.False(t, m.Match("metrics-2026"))
}

func TestMatcherInnerWildcard(t *testing.T) {
	m := NewMatcher([]string{"log*-prod"})

	assert.True(t, m.Match("logstash-prod"))
	assert.True(t, m.Match("log-prod"))
	assert.False(t, m.Match("logstash-dev"))
}

func TestMatcherNegationVetoes(t *testing.T) {
	m := NewMatcher([]string{"logstash-*", "~logstash-secret*"})

	assert.True(t, m.Match("logstash-2026"))
	assert.False(t, m.Match("logstash-secret-2026"))
}

func TestMatcherMatchAll(t *testing.T) {
	m := NewMatcher([]string{"a*", "b"})

	assert.True(t, m.MatchAll([]string{"a1", "b"}))
	assert.False(t, m.MatchAll([]string{"a1", "c"}))
	assert.False(t, m.MatchAll(nil))
}

func TestMatcherFilter(t *testing.T) {
	m := NewMatcher([]string{"a*"})

	assert.Equal(t, []string{"a1", "a2"}, m.Filter([]string{"a1", "b", "a2"}))
	assert.Empty(t, m.Filter([]string{"b", "c"}))
}

package acl

import (
	"fmt"

	"github.com/mizuame/searchgate/core"
)

// Constructor builds a rule from its raw settings value. The value is the
// yaml fragment under the rule's key in the block, still untyped.
type Constructor func(value interface{}) (Rule, error)

// Registry maps rule keys to constructors. It replaces per-type dispatch:
// the block builder resolves each configured key exactly once at load
// time, and unknown keys are configuration errors for that block.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func (r *Registry) Register(key string, c Constructor) {
	if _, dup := r.constructors[key]; dup {
		panic(fmt.Sprintf("acl: rule %q registered twice", key))
	}
	r.constructors[key] = c
}

func (r *Registry) Create(key string, value interface{}) (Rule, error) {
	c, ok := r.constructors[key]
	if !ok {
		return nil, core.NewErrorConfig("unknown rule type: " + key)
	}
	rule, err := c(value)
	if err != nil {
		return nil, err
	}
	if rule.Key() != key {
		return nil, core.NewErrorConfig(fmt.Sprintf("rule constructor for %q produced key %q", key, rule.Key()))
	}
	return rule, nil
}

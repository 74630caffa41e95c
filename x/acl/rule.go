package acl

import (
	"context"

	"github.com/mizuame/searchgate/x/reqctx"
)

// Rule is one policy predicate or transform. Implementations hold no
// request-scoped state: the same rule value is evaluated against many
// concurrent requests, and all caching lives in the client decorators
// underneath. A rule surfaces dependency failures as errors; the engine
// owns the fail-closed conversion.
type Rule interface {
	Key() string
	Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error)
}

// AuthenticationRule marks rules that establish the requester's identity.
type AuthenticationRule interface {
	Rule
	Authenticates()
}

// AuthorizationRule marks rules that check what an established identity
// may do. A block containing one of these without an AuthenticationRule
// is rejected at load time.
type AuthorizationRule interface {
	Rule
	Authorizes()
}

// MutationRule marks rules that rewrite the request (for example the
// target indices). They always sort after every match-determining rule so
// inspection rules see the original intent.
type MutationRule interface {
	Rule
	Mutates()
}

package reqctx

import (
	"fmt"
	"strings"
	"time"

	"github.com/mizuame/searchgate/core"
)

// Descriptor is everything the host adapter extracted from the inbound
// operation. The engine never sees the host's native request type.
type Descriptor struct {
	ID              string
	Action          string
	Method          string
	Path            string
	RemoteAddr      string
	Headers         map[string]string
	Indices         []string
	InvolvesIndices bool
	Repositories    []string
	Snapshots       []string
	ContentLength   int64
	IsReadRequest   bool
}

// Hooks receive committed state. They run at most once per request, only
// when an allow block wins.
type Hooks struct {
	WriteIndices         func([]string)
	WriteRepositories    func([]string)
	WriteSnapshots       func([]string)
	WriteResponseHeaders func(map[string]string)
	WriteContextHeaders  func(map[string]string)
}

// RequestContext is the transactional per-request state rules read and
// mutate. It is exclusively owned by one in-flight request and is not safe
// for concurrent use.
type RequestContext struct {
	desc      Descriptor
	timestamp time.Time

	indices         *Transactional[[]string]
	repositories    *Transactional[[]string]
	snapshots       *Transactional[[]string]
	loggedUser      *Transactional[*core.LoggedUser]
	responseHeaders *Transactional[map[string]string]
	contextHeaders  *Transactional[map[string]string]

	history   []core.BlockHistory
	cells     []cell
	committed bool
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func NewRequestContext(desc Descriptor, hooks Hooks) *RequestContext {
	headers := make(map[string]string, len(desc.Headers))
	for k, v := range desc.Headers {
		headers[strings.ToLower(k)] = v
	}
	desc.Headers = headers

	rc := &RequestContext{
		desc:      desc,
		timestamp: time.Now(),
	}

	initialIndices := []string{}
	if desc.InvolvesIndices {
		initialIndices = copyStrings(desc.Indices)
	}

	rc.indices = NewTransactional("rc-indices", initialIndices, copyStrings, hooks.WriteIndices)
	rc.repositories = NewTransactional("rc-repositories", copyStrings(desc.Repositories), copyStrings, hooks.WriteRepositories)
	rc.snapshots = NewTransactional("rc-snapshots", copyStrings(desc.Snapshots), copyStrings, hooks.WriteSnapshots)

	rc.responseHeaders = NewTransactional("rc-resp-headers", map[string]string{}, copyStringMap, hooks.WriteResponseHeaders)
	rc.contextHeaders = NewTransactional("rc-ctx-headers", map[string]string{}, copyStringMap, hooks.WriteContextHeaders)

	rc.loggedUser = NewTransactional[*core.LoggedUser]("rc-loggedin-user", nil,
		func(u *core.LoggedUser) *core.LoggedUser { return u.Clone() },
		func(u *core.LoggedUser) {
			if u == nil {
				return
			}
			rc.SetResponseHeader(core.HeaderUser, u.ID)
			if len(u.AvailableGroups) > 0 {
				rc.SetResponseHeader(core.HeaderAvailableGroups, strings.Join(u.AvailableGroups, ","))
			}
			if u.CurrentGroup != "" {
				rc.SetResponseHeader(core.HeaderCurrentGroup, u.CurrentGroup)
			}
		})

	// Commit order matters: the logged user hook mutates response headers,
	// so the header cells publish last.
	rc.cells = []cell{
		rc.indices,
		rc.repositories,
		rc.snapshots,
		rc.loggedUser,
		rc.responseHeaders,
		rc.contextHeaders,
	}

	return rc
}

func (rc *RequestContext) ID() string            { return rc.desc.ID }
func (rc *RequestContext) Action() string        { return rc.desc.Action }
func (rc *RequestContext) Method() string        { return rc.desc.Method }
func (rc *RequestContext) Path() string          { return rc.desc.Path }
func (rc *RequestContext) RemoteAddr() string    { return rc.desc.RemoteAddr }
func (rc *RequestContext) ContentLength() int64  { return rc.desc.ContentLength }
func (rc *RequestContext) IsReadRequest() bool   { return rc.desc.IsReadRequest }
func (rc *RequestContext) InvolvesIndices() bool { return rc.desc.InvolvesIndices }
func (rc *RequestContext) Timestamp() time.Time  { return rc.timestamp }

// Header reads a request header by case-insensitive name.
func (rc *RequestContext) Header(name string) string {
	return rc.desc.Headers[strings.ToLower(name)]
}

func (rc *RequestContext) HeaderNames() []string {
	names := make([]string, 0, len(rc.desc.Headers))
	for k := range rc.desc.Headers {
		names = append(names, k)
	}
	return names
}

// Indices returns the indices the request originally targeted.
func (rc *RequestContext) Indices() []string {
	return rc.indices.GetInitial()
}

// CurrentIndices returns the indices after any mutation by the block
// currently under evaluation.
func (rc *RequestContext) CurrentIndices() []string {
	return rc.indices.Get()
}

func (rc *RequestContext) SetIndices(indices []string) {
	rc.indices.Mutate(copyStrings(indices))
}

func (rc *RequestContext) Repositories() []string        { return rc.repositories.GetInitial() }
func (rc *RequestContext) CurrentRepositories() []string { return rc.repositories.Get() }
func (rc *RequestContext) SetRepositories(v []string) {
	rc.repositories.Mutate(copyStrings(v))
}

func (rc *RequestContext) Snapshots() []string        { return rc.snapshots.GetInitial() }
func (rc *RequestContext) CurrentSnapshots() []string { return rc.snapshots.Get() }
func (rc *RequestContext) SetSnapshots(v []string) {
	rc.snapshots.Mutate(copyStrings(v))
}

func (rc *RequestContext) LoggedUser() *core.LoggedUser {
	return rc.loggedUser.Get()
}

func (rc *RequestContext) SetLoggedUser(u *core.LoggedUser) {
	rc.loggedUser.Mutate(u)
}

func (rc *RequestContext) SetResponseHeader(key, value string) {
	rc.responseHeaders.MutateInPlace(func(m map[string]string) map[string]string {
		m[key] = value
		return m
	})
}

func (rc *RequestContext) ResponseHeaders() map[string]string {
	return copyStringMap(rc.responseHeaders.Get())
}

func (rc *RequestContext) SetContextHeader(key, value string) {
	rc.contextHeaders.MutateInPlace(func(m map[string]string) map[string]string {
		m[key] = value
		return m
	})
}

// AddHistory appends the audit trail of one block check.
func (rc *RequestContext) AddHistory(block string, entries []core.RuleExit) {
	rc.history = append(rc.history, core.BlockHistory{Block: block, Entries: entries})
}

func (rc *RequestContext) History() []core.BlockHistory {
	return rc.history
}

// Reset discards every mutation accumulated since construction or the last
// reset. The engine calls it before each block so a non-matching block's
// partial writes never leak into the next one. History is kept: it records
// what ran, not what won.
func (rc *RequestContext) Reset() {
	for _, c := range rc.cells {
		c.Reset()
	}
}

// Commit publishes the mutations of the winning allow block. Callable at
// most once per request.
func (rc *RequestContext) Commit() {
	if rc.committed {
		panic(core.NewErrorDoubleCommit("request-context"))
	}
	rc.committed = true
	for _, c := range rc.cells {
		c.Commit()
	}
}

// ResolveVariable expands templated rule values against the current
// context state: @{user} is the logged user id, @{header:Name} a request
// header. A value that cannot be resolved reports false and the rule
// treats itself as non-matching. Resolution is single-pass: a replacement
// is emitted verbatim and never rescanned, so a header value that
// references itself cannot loop the resolver.
func (rc *RequestContext) ResolveVariable(value string) (string, bool) {
	if !strings.Contains(value, "@{") {
		return value, true
	}

	var resolved strings.Builder
	rest := value
	for {
		start := strings.Index(rest, "@{")
		if start < 0 {
			resolved.WriteString(rest)
			return resolved.String(), true
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			return "", false
		}
		name := rest[start+2 : start+end]

		var replacement string
		switch {
		case name == "user":
			u := rc.LoggedUser()
			if u == nil {
				return "", false
			}
			replacement = u.ID
		case strings.HasPrefix(name, "header:"):
			replacement = rc.Header(strings.TrimPrefix(name, "header:"))
			if replacement == "" {
				return "", false
			}
		default:
			return "", false
		}

		resolved.WriteString(rest[:start])
		resolved.WriteString(replacement)
		rest = rest[start+end+1:]
	}
}

func (rc *RequestContext) String() string {
	user := "[no user]"
	if u := rc.LoggedUser(); u != nil {
		user = u.ID
	}
	return fmt.Sprintf("{id: %s, action: %s, method: %s, path: %s, indices: %v, user: %s}",
		rc.desc.ID, rc.desc.Action, rc.desc.Method, rc.desc.Path, rc.indices.Get(), user)
}

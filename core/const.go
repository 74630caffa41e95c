package core

// Headers read and written by the engine. Request header names are
// compared case-insensitively; these are the canonical lowercase forms.
const (
	HeaderCurrentGroup    = "x-sg-current-group"
	HeaderAvailableGroups = "x-sg-available-groups"
	HeaderUser            = "x-sg-user"
	HeaderAuthorization   = "authorization"
	HeaderForwardedFor    = "x-forwarded-for"
	HeaderForwardedUser   = "x-forwarded-user"
	HeaderApiKey          = "x-api-key"
)

// Policy is the decision a block carries when it matches.
type Policy int

const (
	PolicyAllow Policy = iota
	PolicyForbid
)

func (p Policy) String() string {
	switch p {
	case PolicyAllow:
		return "allow"
	case PolicyForbid:
		return "forbid"
	default:
		return "unknown"
	}
}

// ParsePolicy maps the settings-file value to a Policy. The empty string
// defaults to allow, matching the settings format.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "allow":
		return PolicyAllow, nil
	case "forbid":
		return PolicyForbid, nil
	default:
		return PolicyForbid, NewErrorConfig("unknown block policy: " + s)
	}
}

// Verbosity controls whether an allowed match is logged.
type Verbosity int

const (
	VerbosityInfo Verbosity = iota
	VerbosityError
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityInfo:
		return "info"
	case VerbosityError:
		return "error"
	default:
		return "unknown"
	}
}

func ParseVerbosity(s string) (Verbosity, error) {
	switch s {
	case "", "info":
		return VerbosityInfo, nil
	case "error":
		return VerbosityError, nil
	default:
		return VerbosityInfo, NewErrorConfig("unknown block verbosity: " + s)
	}
}

// Outcome is the terminal state of one decision.
type Outcome string

const (
	OutcomeAllowed   Outcome = "ALLOWED"
	OutcomeForbidden Outcome = "FORBIDDEN"
	OutcomeErrored   Outcome = "ERRORED"
	OutcomeNotFound  Outcome = "NOT_FOUND"
)

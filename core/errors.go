package core

// ErrorConfig marks a settings problem that is fatal to the offending
// block only.
type ErrorConfig struct {
	Reason string
}

func (e ErrorConfig) Error() string {
	return "configuration error: " + e.Reason
}

func NewErrorConfig(reason string) ErrorConfig {
	return ErrorConfig{Reason: reason}
}

// ErrorDoubleCommit signals broken engine control flow: a request context
// was committed twice.
type ErrorDoubleCommit struct {
	Cell string
}

func (e ErrorDoubleCommit) Error() string {
	return "transactional cell committed twice: " + e.Cell
}

func NewErrorDoubleCommit(cell string) ErrorDoubleCommit {
	return ErrorDoubleCommit{Cell: cell}
}

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

package audit

import (
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/rs/xid"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/reqctx"
)

// Record is one audited decision. Only public-safe request fields are
// captured: header names, never header values.
type Record struct {
	ID          string         `json:"id" gorm:"primaryKey;type:char(20)"`
	Timestamp   time.Time      `json:"timestamp" gorm:"index;type:timestamp with time zone"`
	Outcome     string         `json:"outcome" gorm:"index;type:text"`
	Reason      string         `json:"reason" gorm:"type:text"`
	Block       string         `json:"block" gorm:"type:text"`
	Policy      string         `json:"policy" gorm:"type:text"`
	DurationMs  int64          `json:"durationMs"`
	RequestID   string         `json:"requestId" gorm:"index;type:char(20)"`
	Action      string         `json:"action" gorm:"type:text"`
	Indices     pq.StringArray `json:"indices" gorm:"type:text[]"`
	User        string         `json:"user" gorm:"type:text"`
	Method      string         `json:"method" gorm:"type:text"`
	Path        string         `json:"path" gorm:"type:text"`
	RemoteAddr  string         `json:"remoteAddr" gorm:"type:text"`
	HeaderNames pq.StringArray `json:"headerNames" gorm:"type:text[]"`
	Error       string         `json:"error,omitempty" gorm:"type:text"`
}

func NewRecord(decision core.Decision, rc *reqctx.RequestContext) Record {
	rec := Record{
		ID:         xid.New().String(),
		Timestamp:  rc.Timestamp(),
		Outcome:    string(decision.Outcome),
		Reason:     decision.Reason,
		Block:      decision.Block,
		Policy:     decision.Policy.String(),
		DurationMs: decision.Duration.Milliseconds(),
		RequestID:  rc.ID(),
		Action:     rc.Action(),
		Indices:    pq.StringArray(rc.Indices()),
		Method:     rc.Method(),
		Path:       rc.Path(),
		RemoteAddr: rc.RemoteAddr(),
	}

	if u := rc.LoggedUser(); u != nil {
		rec.User = u.ID
	}
	if decision.Err != nil {
		rec.Error = decision.Err.Error()
	}

	names := rc.HeaderNames()
	sort.Strings(names)
	rec.HeaderNames = pq.StringArray(names)

	return rec
}

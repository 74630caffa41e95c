package acl

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/audit"
	"github.com/mizuame/searchgate/x/reqctx"
	"github.com/mizuame/searchgate/x/settings"
)

var tracer = otel.Tracer("acl")

// Service is the decision engine: an ordered block list evaluated
// sequentially per request, forbid by default, with exactly one audit
// record emitted per check. Reload swaps the whole block list atomically
// so a decision never sees a mix of old and new blocks.
type Service interface {
	Check(ctx context.Context, rc *reqctx.RequestContext) core.Decision
	// Conclude finishes an allowed decision once the upstream response
	// status is known; the single audit record for the request carries the
	// final outcome (NOT_FOUND when the cluster answered 404).
	Conclude(ctx context.Context, decision core.Decision, rc *reqctx.RequestContext, statusCode int)
	Reload(root settings.Root) error
	BlockCount() int
	Enabled() bool
	PromptForBasicAuth() bool
}

// engineState is everything one decision reads. Swapped as a unit.
type engineState struct {
	blocks             []*Block
	enable             bool
	auditCollector     bool
	promptForBasicAuth bool
}

type service struct {
	registry *Registry
	audit    audit.Service
	state    atomic.Pointer[engineState]
}

func NewService(registry *Registry, auditService audit.Service, root settings.Root) (Service, error) {
	s := &service{
		registry: registry,
		audit:    auditService,
	}
	if err := s.Reload(root); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload builds blocks from the settings. A malformed block is logged and
// skipped; the others still load. Zero loaded blocks means every request
// is forbidden by default.
func (s *service) Reload(root settings.Root) error {
	blocks := make([]*Block, 0, len(root.Blocks))
	for _, bs := range root.Blocks {
		block, err := NewBlock(bs, s.registry)
		if err != nil {
			slog.Error("impossible to add block to ACL",
				slog.String("block", bs.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		slog.Info("adding block", slog.String("block", block.String()))
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		slog.Warn("no access control blocks loaded: everything will be forbidden")
	}
	if !root.Enable {
		slog.Warn("access control is disabled in the settings: every request will be proxied")
	}

	s.state.Store(&engineState{
		blocks:             blocks,
		enable:             root.Enable,
		auditCollector:     root.AuditCollector,
		promptForBasicAuth: root.PromptForBasicAuth,
	})
	blocksLoaded.Set(float64(len(blocks)))

	return nil
}

func (s *service) BlockCount() int {
	return len(s.state.Load().blocks)
}

func (s *service) Enabled() bool {
	return s.state.Load().enable
}

func (s *service) PromptForBasicAuth() bool {
	return s.state.Load().promptForBasicAuth
}

// Check walks the blocks in declaration order and returns the terminal
// decision. The caller only ever gets ALLOWED or a rejection; internal
// errors are contained here and fail closed.
func (s *service) Check(ctx context.Context, rc *reqctx.RequestContext) core.Decision {
	ctx, span := tracer.Start(ctx, "Acl.Service.Check")
	defer span.End()

	start := time.Now()
	state := s.state.Load()

	decision := s.doCheck(ctx, state, rc)
	decision.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("outcome", string(decision.Outcome)),
		attribute.String("block", decision.Block),
	)

	s.report(ctx, state, decision, rc)
	return decision
}

// Conclude emits the deferred audit record of an allowed request. Check
// audits rejections immediately; allowed requests are audited here so the
// record can reflect what the cluster answered. At most one audit record
// per request either way.
func (s *service) Conclude(ctx context.Context, decision core.Decision, rc *reqctx.RequestContext, statusCode int) {
	if decision.Outcome != core.OutcomeAllowed {
		return
	}
	if statusCode == 404 {
		decision.Outcome = core.OutcomeNotFound
	}

	state := s.state.Load()
	if state.auditCollector {
		s.audit.Submit(ctx, audit.NewRecord(decision, rc))
	}
}

func (s *service) doCheck(ctx context.Context, state *engineState, rc *reqctx.RequestContext) (decision core.Decision) {
	// Any uncaught failure inside block or rule evaluation becomes an
	// ERRORED rejection, never an allow.
	defer func() {
		if r := recover(); r != nil {
			decision = core.Decision{
				Outcome: core.OutcomeErrored,
				Policy:  core.PolicyForbid,
				Reason:  "error",
				Err:     fmt.Errorf("acl check panicked: %v", r),
			}
		}
	}()

	for _, block := range state.blocks {
		// a previous non-matching block must not leak partial mutations
		rc.Reset()

		if !block.Check(ctx, rc) {
			continue
		}

		if block.Policy() == core.PolicyAllow {
			rc.Commit()
			return core.Decision{
				Outcome: core.OutcomeAllowed,
				Block:   block.Name(),
				Policy:  core.PolicyAllow,
				Reason:  block.String(),
			}
		}

		return core.Decision{
			Outcome: core.OutcomeForbidden,
			Block:   block.Name(),
			Policy:  core.PolicyForbid,
			Reason:  block.String(),
		}
	}

	return core.Decision{
		Outcome: core.OutcomeForbidden,
		Policy:  core.PolicyForbid,
		Reason:  "default",
	}
}

func (s *service) report(ctx context.Context, state *engineState, decision core.Decision, rc *reqctx.RequestContext) {
	blockLabel := decision.Block
	if blockLabel == "" {
		blockLabel = "none"
	}
	decisionsTotal.WithLabelValues(string(decision.Outcome), blockLabel).Inc()

	// an allowed match from an error-verbosity block is not logged
	skipLog := decision.Outcome == core.OutcomeAllowed &&
		s.verbosityOf(state, decision.Block) != core.VerbosityInfo

	if !skipLog {
		logFn := slog.InfoContext
		if decision.Outcome == core.OutcomeErrored {
			logFn = slog.ErrorContext
		}
		logFn(ctx, string(decision.Outcome),
			slog.String("reason", decision.Reason),
			slog.String("request", rc.String()),
			slog.Int64("durationMs", decision.Duration.Milliseconds()),
		)
	}

	// allowed requests are audited by Conclude, with the final outcome
	if state.auditCollector && decision.Outcome != core.OutcomeAllowed {
		s.audit.Submit(ctx, audit.NewRecord(decision, rc))
	}
}

func (s *service) verbosityOf(state *engineState, blockName string) core.Verbosity {
	for _, b := range state.blocks {
		if b.Name() == blockName {
			return b.Verbosity()
		}
	}
	return core.VerbosityInfo
}

package op

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zitadel/logging"
	"go.opentelemetry.io/otel"

	"github.com/ganhammar/openiddict-core/pkg/oidc"
)

var tracer = otel.Tracer("github.com/ganhammar/openiddict-core/pkg/op")

// stageDefaults holds the built-in logic the endpoint binding supplies
// for each stage. A nil entry means the stage is a pure extension
// point.
type stageDefaults struct {
	extract       HandlerFunc[*ExtractContext]
	validate      HandlerFunc[*ValidateContext]
	handle        HandlerFunc[*HandleContext]
	applyResponse HandlerFunc[*ApplyResponseContext]
}

// pipeline drives one transaction through the stages, invoking each
// stage's resolved handler chain, interpreting the disposition and
// deciding whether to proceed, short-circuit into response emission or
// abort. Handlers within a chain never run concurrently.
type pipeline struct {
	registry *HandlerRegistry
	defaults stageDefaults
	logger   *slog.Logger
}

type stageOutcome int

const (
	stageProceed stageOutcome = iota
	// stageShortCircuit skips all remaining default logic and jumps to
	// response emission.
	stageShortCircuit
	// stageAborted discards the transaction without a response.
	stageAborted
)

type stageCarrier interface {
	core() *stageContext
}

func invoke[C stageCarrier](ctx context.Context, fn HandlerFunc[C], sc C) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn(ctx, sc)
}

func (p *pipeline) run(ctx context.Context, txn *Transaction) {
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.Group("transaction", "id", txn.ID()))
	ctx = logging.ToContext(ctx, logger)

	short := false

	out := runStage(ctx, p, &ExtractContext{newStageContext(txn, StageExtract)}, p.registry.Extract(), p.defaults.extract)
	switch out {
	case stageAborted:
		return
	case stageShortCircuit:
		short = true
	}

	if !short {
		out = runStage(ctx, p, &ValidateContext{newStageContext(txn, StageValidate)}, p.registry.Validate(), p.defaults.validate)
		switch out {
		case stageAborted:
			return
		case stageShortCircuit:
			short = true
		}
	}

	if !short {
		out = runStage(ctx, p, &HandleContext{newStageContext(txn, StageHandle)}, p.registry.Handle(), p.defaults.handle)
		if out == stageAborted {
			return
		}
	}

	p.applyResponse(ctx, txn)
}

// runStage executes the chain for one of the three leading stages and
// evaluates the resulting disposition against the transition table.
func runStage[C stageCarrier](ctx context.Context, p *pipeline, sc C, chain *Chain[C], deflt HandlerFunc[C]) stageOutcome {
	core := sc.core()
	ctx, span := tracer.Start(ctx, "op.end_session."+core.stage.String())
	defer span.End()

	for _, desc := range chain.Resolve() {
		if ctx.Err() != nil {
			return stageAborted
		}
		if err := invoke(ctx, desc.Handler, sc); err != nil {
			return p.fault(ctx, core, desc.Name, err)
		}
		if core.conflict != nil {
			return p.fault(ctx, core, desc.Name, core.conflict)
		}
		if core.disposition == DispositionRejected || core.disposition == DispositionHandled {
			break
		}
	}
	if ctx.Err() != nil {
		return stageAborted
	}

	switch core.disposition {
	case DispositionRejected:
		core.txn.disposition = DispositionRejected
		core.txn.rejection = core.rejection
		return stageShortCircuit
	case DispositionHandled:
		core.txn.disposition = DispositionHandled
		return stageShortCircuit
	case DispositionSkipped:
		core.txn.completeStage(core.stage)
		return stageProceed
	}

	if deflt != nil {
		if err := invoke(ctx, deflt, sc); err != nil {
			return p.fault(ctx, core, "default", err)
		}
		if core.disposition == DispositionRejected {
			core.txn.disposition = DispositionRejected
			core.txn.rejection = core.rejection
			return stageShortCircuit
		}
	}
	core.txn.completeStage(core.stage)
	return stageProceed
}

// applyResponse always runs, also after a rejection or a handled
// request, so that the transaction's response set is transmitted. Its
// own chain may still reshape or take over the emission; SkipRequest
// and HandleRequest here suppress the default transmission.
func (p *pipeline) applyResponse(ctx context.Context, txn *Transaction) {
	ac := &ApplyResponseContext{newStageContext(txn, StageApplyResponse)}
	core := ac.core()
	ctx, span := tracer.Start(ctx, "op.end_session."+StageApplyResponse.String())
	defer span.End()

	if txn.rejection != nil {
		mergeRejection(txn)
	}

	for _, desc := range p.registry.ApplyResponse().Resolve() {
		if ctx.Err() != nil {
			return
		}
		if err := invoke(ctx, desc.Handler, ac); err != nil {
			p.emitFault(ctx, txn, core.stage, desc.Name, err)
			return
		}
		if core.conflict != nil {
			p.emitFault(ctx, txn, core.stage, desc.Name, core.conflict)
			return
		}
		if core.disposition == DispositionRejected || core.disposition == DispositionHandled {
			break
		}
	}
	if ctx.Err() != nil {
		return
	}

	switch core.disposition {
	case DispositionRejected:
		txn.disposition = DispositionRejected
		txn.rejection = core.rejection
		mergeRejection(txn)
	case DispositionHandled, DispositionSkipped:
		txn.completeStage(StageApplyResponse)
		return
	}

	if p.defaults.applyResponse != nil {
		if err := invoke(ctx, p.defaults.applyResponse, ac); err != nil {
			p.emitFault(ctx, txn, core.stage, "default", err)
			return
		}
	}
	txn.completeStage(StageApplyResponse)
}

// mergeRejection copies the rejection triple into the response
// parameter set, from where the default transmission serializes it
// inline or onto the redirect target.
func mergeRejection(txn *Transaction) {
	e := txn.rejection
	if e == nil {
		e = oidc.ErrInvalidRequest()
	}
	txn.response.Set("error", string(e.ErrorType))
	if e.Description != "" {
		txn.response.Set("error_description", e.Description)
	}
	if e.ErrorURI != "" {
		txn.response.Set("error_uri", e.ErrorURI)
	}
}

// fault records a handler failure on a leading stage: the transaction
// is rejected with a generic server error and short-circuits into
// response emission. Handler faults are never retried.
func (p *pipeline) fault(ctx context.Context, core *stageContext, handler string, err error) stageOutcome {
	p.logFault(ctx, core.stage, handler, err)
	core.txn.disposition = DispositionRejected
	core.txn.rejection = oidc.ErrServerError()
	return stageShortCircuit
}

// emitFault handles failures inside the apply response stage itself,
// where re-entering the pipeline is not an option.
func (p *pipeline) emitFault(ctx context.Context, txn *Transaction, stage Stage, handler string, err error) {
	p.logFault(ctx, stage, handler, err)
	if txn.writer != nil {
		http.Error(txn.writer, string(oidc.ServerError), http.StatusInternalServerError)
	}
}

func (p *pipeline) logFault(ctx context.Context, stage Stage, handler string, err error) {
	logger, ok := logging.FromContext(ctx)
	if !ok {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "end_session handler fault",
		"stage", stage.String(),
		"handler", handler,
		"error", err,
	)
}

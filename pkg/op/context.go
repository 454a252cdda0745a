package op

import (
	"fmt"

	"github.com/ganhammar/openiddict-core/pkg/oidc"
)

// Stage is one of the four ordered processing points of the
// end-session lifecycle.
type Stage int

const (
	StageExtract Stage = iota
	StageValidate
	StageHandle
	StageApplyResponse
)

func (s Stage) String() string {
	switch s {
	case StageExtract:
		return "extract"
	case StageValidate:
		return "validate"
	case StageHandle:
		return "handle"
	case StageApplyResponse:
		return "apply_response"
	default:
		return "unknown"
	}
}

// InvalidOperationError reports access to stage state before the stage
// producing it has run, which signals a handler ordering bug.
type InvalidOperationError struct {
	Field string
	Stage Stage
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s is not available before the %s stage completed", e.Field, e.Stage)
}

// stageContext is the control core shared by all four stage context
// types. Exactly one of Reject, HandleRequest and SkipRequest may be
// called per context; repeating the same call is a no-op, mixing them
// is a programming error the executor surfaces as a handler fault.
type stageContext struct {
	txn         *Transaction
	stage       Stage
	disposition Disposition
	decided     bool
	conflict    error
	rejection   *oidc.Error
}

func newStageContext(txn *Transaction, stage Stage) *stageContext {
	return &stageContext{
		txn:   txn,
		stage: stage,
	}
}

func (c *stageContext) core() *stageContext {
	return c
}

func (c *stageContext) Transaction() *Transaction {
	return c.txn
}

func (c *stageContext) Stage() Stage {
	return c.stage
}

func (c *stageContext) Disposition() Disposition {
	return c.disposition
}

// Reject marks the request as invalid. An empty code defaults to
// invalid_request; description and uri are carried into the response
// verbatim. No default logic runs for this or any later stage; the
// pipeline proceeds directly to response emission.
func (c *stageContext) Reject(code, description, uri string) {
	if !c.decide(DispositionRejected) {
		return
	}
	c.rejection = oidc.NewError(code, description, uri)
}

// HandleRequest marks the request as fully handled by extension code.
// Default logic of this and all later stages is bypassed; the apply
// response stage still runs and serializes whatever the transaction's
// response set currently holds.
func (c *stageContext) HandleRequest() {
	c.decide(DispositionHandled)
}

// SkipRequest suppresses the built-in default logic of the current
// stage only. The pipeline proceeds to the next stage with default
// handling re-enabled there.
func (c *stageContext) SkipRequest() {
	c.decide(DispositionSkipped)
}

func (c *stageContext) decide(d Disposition) bool {
	if c.decided {
		if c.disposition != d && c.conflict == nil {
			c.conflict = fmt.Errorf("%s stage: conflicting control calls: %s after %s", c.stage, d, c.disposition)
		}
		return false
	}
	c.decided = true
	c.disposition = d
	return true
}

func (c *stageContext) boundRequest(field string) (*oidc.EndSessionRequest, error) {
	if c.txn.request == nil {
		return nil, &InvalidOperationError{Field: field, Stage: StageExtract}
	}
	return c.txn.request, nil
}

// ExtractContext is passed to extract stage handlers. The request
// object is absent until bound, either by the default binding logic or
// by a handler replacing it.
type ExtractContext struct {
	*stageContext
}

func (c *ExtractContext) Request() (*oidc.EndSessionRequest, error) {
	return c.boundRequest("request")
}

// SetRequest binds the parsed request to the transaction.
func (c *ExtractContext) SetRequest(req *oidc.EndSessionRequest) {
	c.txn.request = req
}

// ValidateContext is passed to validate stage handlers. It exposes the
// bound request and lets validation logic record the accepted redirect
// target and the application it matched.
type ValidateContext struct {
	*stageContext
}

func (c *ValidateContext) Request() (*oidc.EndSessionRequest, error) {
	return c.boundRequest("request")
}

func (c *ValidateContext) SetRedirectURI(uri string) {
	c.txn.redirectURI = uri
}

func (c *ValidateContext) SetApplicationID(id string) {
	c.txn.applicationID = id
}

// HandleContext is passed to handle stage handlers, the extension
// point for application side effects such as terminating a session
// before the response is shaped.
type HandleContext struct {
	*stageContext
}

func (c *HandleContext) Request() (*oidc.EndSessionRequest, error) {
	return c.boundRequest("request")
}

func (c *HandleContext) RedirectURI() (string, error) {
	if !c.txn.stageCompleted(StageValidate) {
		return "", &InvalidOperationError{Field: "redirect_uri", Stage: StageValidate}
	}
	return c.txn.redirectURI, nil
}

func (c *HandleContext) ApplicationID() (string, error) {
	if !c.txn.stageCompleted(StageValidate) {
		return "", &InvalidOperationError{Field: "application_id", Stage: StageValidate}
	}
	return c.txn.applicationID, nil
}

func (c *HandleContext) Response() oidc.Parameters {
	return c.txn.response
}

// ApplyResponseContext is passed to apply response stage handlers
// immediately before transmission.
type ApplyResponseContext struct {
	*stageContext
}

func (c *ApplyResponseContext) Response() oidc.Parameters {
	return c.txn.response
}

func (c *ApplyResponseContext) RedirectURI() (string, error) {
	if !c.txn.stageCompleted(StageValidate) {
		return "", &InvalidOperationError{Field: "redirect_uri", Stage: StageValidate}
	}
	return c.txn.redirectURI, nil
}

package op

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/ganhammar/openiddict-core/pkg/oidc"
)

// Disposition is the outcome flag of a processing stage. It controls
// whether the stage's built-in logic runs, is skipped, is bypassed for
// the rest of the transaction, or the request is rejected.
type Disposition int

const (
	DispositionContinue Disposition = iota
	DispositionSkipped
	DispositionHandled
	DispositionRejected
)

func (d Disposition) String() string {
	switch d {
	case DispositionContinue:
		return "continue"
	case DispositionSkipped:
		return "skipped"
	case DispositionHandled:
		return "handled"
	case DispositionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Transaction carries one end-session request through the processing
// stages. It is exclusively owned by a single pipeline run and is
// discarded once the response has been written; it must never be
// shared across requests.
type Transaction struct {
	id          string
	writer      http.ResponseWriter
	httpRequest *http.Request

	request       *oidc.EndSessionRequest
	requestParams url.Values
	response      oidc.Parameters
	properties    map[string]any

	disposition Disposition
	rejection   *oidc.Error

	redirectURI   string
	applicationID string

	completed map[Stage]bool
}

func NewTransaction(w http.ResponseWriter, r *http.Request) *Transaction {
	return &Transaction{
		id:          uuid.NewString(),
		writer:      w,
		httpRequest: r,
		response:    oidc.NewParameters(),
		properties:  make(map[string]any),
		completed:   make(map[Stage]bool),
	}
}

func (t *Transaction) ID() string {
	return t.id
}

func (t *Transaction) HTTPRequest() *http.Request {
	return t.httpRequest
}

// HTTPWriter exposes the response writer, e.g. for handlers that set
// cookies or headers. Writing a body from a handler only makes sense
// together with HandleRequest.
func (t *Transaction) HTTPWriter() http.ResponseWriter {
	return t.writer
}

// Request returns the bound end-session request, or nil before the
// extract stage bound it. Stage contexts offer checked access.
func (t *Transaction) Request() *oidc.EndSessionRequest {
	return t.request
}

// RequestParameters returns the raw parameter set the request was
// bound from (query string or form body).
func (t *Transaction) RequestParameters() url.Values {
	return t.requestParams
}

// Response is the mutable response parameter set. Parameters placed
// here are serialized verbatim by the apply response stage.
func (t *Transaction) Response() oidc.Parameters {
	return t.response
}

func (t *Transaction) Disposition() Disposition {
	return t.disposition
}

// Rejection returns the error the transaction was rejected with,
// or nil.
func (t *Transaction) Rejection() *oidc.Error {
	return t.rejection
}

// RedirectURI returns the validated post logout redirect target, or an
// empty string when the response is rendered inline.
func (t *Transaction) RedirectURI() string {
	return t.redirectURI
}

// ApplicationID returns the identifier of the application matched
// during validation, or an empty string.
func (t *Transaction) ApplicationID() string {
	return t.applicationID
}

// SetProperty stores an arbitrary value for cross-handler and
// cross-stage communication. The bag lives and dies with the
// transaction.
func (t *Transaction) SetProperty(key string, value any) {
	t.properties[key] = value
}

func (t *Transaction) Property(key string) (any, bool) {
	value, ok := t.properties[key]
	return value, ok
}

func (t *Transaction) DeleteProperty(key string) {
	delete(t.properties, key)
}

func (t *Transaction) completeStage(stage Stage) {
	t.completed[stage] = true
}

func (t *Transaction) stageCompleted(stage Stage) bool {
	return t.completed[stage]
}

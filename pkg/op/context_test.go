package op

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganhammar/openiddict-core/pkg/oidc"
)

func newTestTransaction(method, target string) *Transaction {
	return NewTransaction(httptest.NewRecorder(), httptest.NewRequest(method, target, nil))
}

func TestStageContext_Reject(t *testing.T) {
	tests := []struct {
		name            string
		code            string
		description     string
		uri             string
		wantCode        string
		wantDescription string
		wantURI         string
	}{
		{
			"all empty defaults to invalid_request",
			"", "", "",
			"invalid_request", "", "",
		},
		{
			"explicit code",
			"access_denied", "nope", "https://errors.example.com/denied",
			"access_denied", "nope", "https://errors.example.com/denied",
		},
		{
			"description only",
			"", "bad things", "",
			"invalid_request", "bad things", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStageContext(newTestTransaction("GET", "/connect/logout"), StageValidate)
			c.Reject(tt.code, tt.description, tt.uri)

			assert.Equal(t, DispositionRejected, c.Disposition())
			require.NotNil(t, c.rejection)
			assert.Equal(t, tt.wantCode, string(c.rejection.ErrorType))
			assert.Equal(t, tt.wantDescription, c.rejection.Description)
			assert.Equal(t, tt.wantURI, c.rejection.ErrorURI)
		})
	}
}

func TestStageContext_RepeatedCallIsIdempotent(t *testing.T) {
	c := newStageContext(newTestTransaction("GET", "/connect/logout"), StageHandle)
	c.Reject("access_denied", "first", "")
	c.Reject("server_error", "second", "")

	assert.NoError(t, c.conflict)
	assert.Equal(t, DispositionRejected, c.Disposition())
	// once set, the rejection cannot be silently overwritten
	assert.Equal(t, "access_denied", string(c.rejection.ErrorType))
	assert.Equal(t, "first", c.rejection.Description)
}

func TestStageContext_ConflictingCalls(t *testing.T) {
	tests := []struct {
		name   string
		first  func(*stageContext)
		second func(*stageContext)
	}{
		{"handle then skip", (*stageContext).HandleRequest, (*stageContext).SkipRequest},
		{"skip then handle", (*stageContext).SkipRequest, (*stageContext).HandleRequest},
		{"reject then handle", func(c *stageContext) { c.Reject("", "", "") }, (*stageContext).HandleRequest},
		{"handle then reject", (*stageContext).HandleRequest, func(c *stageContext) { c.Reject("", "", "") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStageContext(newTestTransaction("GET", "/connect/logout"), StageExtract)
			tt.first(c)
			first := c.Disposition()
			tt.second(c)

			assert.Error(t, c.conflict)
			assert.Equal(t, first, c.Disposition())
		})
	}
}

func TestExtractContext_RequestNotBound(t *testing.T) {
	c := &ExtractContext{newStageContext(newTestTransaction("GET", "/connect/logout"), StageExtract)}

	_, err := c.Request()
	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.Equal(t, StageExtract, invalidOp.Stage)

	c.SetRequest(&oidc.EndSessionRequest{State: "abc"})
	req, err := c.Request()
	require.NoError(t, err)
	assert.Equal(t, "abc", req.State)
}

func TestHandleContext_ValidateStateNotAvailable(t *testing.T) {
	txn := newTestTransaction("GET", "/connect/logout")
	c := &HandleContext{newStageContext(txn, StageHandle)}

	_, err := c.RedirectURI()
	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.Equal(t, StageValidate, invalidOp.Stage)

	_, err = c.ApplicationID()
	require.ErrorAs(t, err, &invalidOp)

	txn.redirectURI = "https://client.example.com/signed-out"
	txn.applicationID = "app-1"
	txn.completeStage(StageValidate)

	uri, err := c.RedirectURI()
	require.NoError(t, err)
	assert.Equal(t, "https://client.example.com/signed-out", uri)

	id, err := c.ApplicationID()
	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
}

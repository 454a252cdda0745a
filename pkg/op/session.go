package op

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	httphelper "github.com/ganhammar/openiddict-core/pkg/http"
	"github.com/ganhammar/openiddict-core/pkg/oidc"
)

// SessionEnder is the surface the end-session endpoint needs from the
// provider.
type SessionEnder interface {
	Decoder() httphelper.Decoder
	Storage() ApplicationStore
	Handlers() *HandlerRegistry
	IgnoreEndpointPermissions() bool
	Logger() *slog.Logger
}

func endSessionHandler(ender SessionEnder) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		EndSession(w, r, ender)
	}
}

// EndSession drives one logout request through the staged pipeline.
// The transaction is created here, owned by this call and discarded
// once the response has been written.
func EndSession(w http.ResponseWriter, r *http.Request, ender SessionEnder) {
	txn := NewTransaction(w, r)
	p := &pipeline{
		registry: ender.Handlers(),
		defaults: logoutDefaults(ender),
		logger:   ender.Logger(),
	}
	p.run(r.Context(), txn)
}

// logoutDefaults binds the four generic stages to the logout specific
// built-in behavior.
func logoutDefaults(ender SessionEnder) stageDefaults {
	return stageDefaults{
		extract:       extractEndSessionRequest(ender),
		validate:      validateEndSessionRequest(ender),
		handle:        nil, // pure extension point
		applyResponse: applyEndSessionResponse(ender),
	}
}

// extractEndSessionRequest binds the request parameters from the query
// string (GET) or the form body (POST) into the canonical request.
func extractEndSessionRequest(ender SessionEnder) HandlerFunc[*ExtractContext] {
	return func(ctx context.Context, c *ExtractContext) error {
		r := c.Transaction().HTTPRequest()
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			c.Reject("", "The specified HTTP method is not valid.", "")
			return nil
		}
		if err := r.ParseForm(); err != nil {
			c.Reject("", "The request parameters cannot be parsed.", "")
			return nil
		}
		req := new(oidc.EndSessionRequest)
		if err := ender.Decoder().Decode(req, r.Form); err != nil {
			c.Reject("", "The request parameters cannot be decoded.", "")
			return nil
		}
		c.Transaction().requestParams = r.Form
		c.SetRequest(req)
		return nil
	}
}

// validateEndSessionRequest checks post_logout_redirect_uri against
// the application store. Candidates are evaluated in store order; the
// first one holding the end-session permission (or, with enforcement
// disabled, the first match) is accepted and later candidates are not
// checked.
func validateEndSessionRequest(ender SessionEnder) HandlerFunc[*ValidateContext] {
	return func(ctx context.Context, c *ValidateContext) error {
		req, err := c.Request()
		if err != nil {
			// Nothing was bound, e.g. because an extract handler
			// skipped the default binding. Nothing to validate then.
			return nil
		}
		if req.PostLogoutRedirectURI == "" {
			return nil
		}
		target, err := url.Parse(req.PostLogoutRedirectURI)
		if err != nil || !target.IsAbs() {
			c.Reject("", "The 'post_logout_redirect_uri' parameter must be a valid absolute URL.", "")
			return nil
		}
		if target.Fragment != "" {
			c.Reject("", "The 'post_logout_redirect_uri' parameter must not include a fragment.", "")
			return nil
		}
		apps, err := ender.Storage().FindByPostLogoutRedirectURI(ctx, req.PostLogoutRedirectURI)
		if err != nil {
			return err
		}
		for _, app := range apps {
			if !ender.IgnoreEndpointPermissions() {
				permitted, err := ender.Storage().HasPermission(ctx, app, PermissionEndpointEndSession)
				if err != nil {
					return err
				}
				if !permitted {
					continue
				}
			}
			c.SetRedirectURI(req.PostLogoutRedirectURI)
			c.SetApplicationID(app.GetID())
			return nil
		}
		c.Reject("", "The specified 'post_logout_redirect_uri' parameter is not valid.", "")
		return nil
	}
}

// applyEndSessionResponse transmits the response set: as a redirect
// when a validated redirect target exists, inline as JSON otherwise.
// The inbound state parameter is copied onto a redirect unless a
// handler already set an explicit state value.
func applyEndSessionResponse(ender SessionEnder) HandlerFunc[*ApplyResponseContext] {
	return func(ctx context.Context, c *ApplyResponseContext) error {
		txn := c.Transaction()
		w := txn.writer
		r := txn.HTTPRequest()

		if uri := txn.RedirectURI(); uri != "" {
			if req := txn.Request(); req != nil && req.State != "" && !txn.Response().Has("state") {
				txn.Response().Set("state", req.State)
			}
			target, err := url.Parse(uri)
			if err != nil {
				return err
			}
			http.Redirect(w, r, httphelper.MergeQueryParams(target, txn.Response().Query()), http.StatusFound)
			return nil
		}

		status := http.StatusOK
		if e := txn.Rejection(); e != nil {
			status = http.StatusBadRequest
			if e.Is(oidc.ErrServerError()) {
				status = http.StatusInternalServerError
			}
		}
		httphelper.MarshalJSONWithStatus(w, txn.Response(), status)
		return nil
	}
}

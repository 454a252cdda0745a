package op_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganhammar/openiddict-core/pkg/op"
	"github.com/ganhammar/openiddict-core/pkg/op/mock"
)

func newTestProvider(t *testing.T, config *op.Config, storage op.ApplicationStore, opts ...op.Option) *op.Provider {
	t.Helper()
	if config == nil {
		config = new(op.Config)
	}
	opts = append([]op.Option{
		op.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	provider, err := op.NewProvider(config, storage, opts...)
	require.NoError(t, err)
	return provider
}

func doLogout(provider *op.Provider, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	provider.ServeHTTP(rec, req)
	return rec
}

// withAppID matches an op.Application argument by its identifier.
type withAppID string

func (m withAppID) Matches(x any) bool {
	app, ok := x.(op.Application)
	return ok && app.GetID() == string(m)
}

func (m withAppID) String() string {
	return "application with id " + string(m)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := make(map[string]any)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestEndSession_DefaultConfirmation(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))

	rec := doLogout(provider, http.MethodGet, "/connect/logout", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("content-type"))
	assert.Empty(t, decodeBody(t, rec))
}

func TestEndSession_InvalidMethods(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			rec := doLogout(provider, method, "/connect/logout", nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "invalid_request", body["error"])
			assert.Equal(t, "The specified HTTP method is not valid.", body["error_description"])
		})
	}
}

func TestEndSession_RedirectURIShape(t *testing.T) {
	tests := []struct {
		name            string
		uri             string
		wantDescription string
	}{
		{
			"fragment",
			"https://client.example.com/signed-out#top",
			"The 'post_logout_redirect_uri' parameter must not include a fragment.",
		},
		{
			"relative path",
			"/signed-out",
			"The 'post_logout_redirect_uri' parameter must be a valid absolute URL.",
		},
		{
			"bare path",
			"client.example.com/signed-out",
			"The 'post_logout_redirect_uri' parameter must be a valid absolute URL.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, nil, mock.NewApplicationStore(t))

			rec := doLogout(provider, http.MethodGet,
				"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(tt.uri), nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "invalid_request", body["error"])
			assert.Equal(t, tt.wantDescription, body["error_description"])
		})
	}
}

func TestEndSession_NoCandidatePermitted(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	ctrl := gomock.NewController(t)
	storage := mock.NewMockApplicationStore(ctrl)

	ids := []string{"app-1", "app-2", "app-3"}
	apps := make([]op.Application, 0, len(ids))
	for _, id := range ids {
		apps = append(apps, mock.NewApplication(t, id))
	}
	storage.EXPECT().FindByPostLogoutRedirectURI(gomock.Any(), redirectURI).Times(1).Return(apps, nil)
	// every candidate is checked exactly once
	for _, id := range ids {
		storage.EXPECT().HasPermission(gomock.Any(), withAppID(id), op.PermissionEndpointEndSession).Times(1).Return(false, nil)
	}

	provider := newTestProvider(t, nil, storage)
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "The specified 'post_logout_redirect_uri' parameter is not valid.", body["error_description"])
}

func TestEndSession_SecondCandidatePermitted(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	ctrl := gomock.NewController(t)
	storage := mock.NewMockApplicationStore(ctrl)

	first := mock.NewApplication(t, "app-1")
	second := mock.NewApplication(t, "app-2")
	// the third candidate must never be checked
	third := mock.NewApplication(t, "app-3")

	storage.EXPECT().FindByPostLogoutRedirectURI(gomock.Any(), redirectURI).
		Times(1).Return([]op.Application{first, second, third}, nil)
	storage.EXPECT().HasPermission(gomock.Any(), withAppID("app-1"), op.PermissionEndpointEndSession).Times(1).Return(false, nil)
	storage.EXPECT().HasPermission(gomock.Any(), withAppID("app-2"), op.PermissionEndpointEndSession).Times(1).Return(true, nil)

	provider := newTestProvider(t, nil, storage)
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI), nil)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "https://client.example.com/signed-out", location.Scheme+"://"+location.Host+location.Path)
}

func TestEndSession_PermissionEnforcementDisabled(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	ctrl := gomock.NewController(t)
	storage := mock.NewMockApplicationStore(ctrl)

	// the first match wins without any permission check
	storage.EXPECT().FindByPostLogoutRedirectURI(gomock.Any(), redirectURI).
		Times(1).Return([]op.Application{mock.NewApplication(t, "app-1")}, nil)

	provider := newTestProvider(t, &op.Config{IgnoreEndpointPermissions: true}, storage)
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI), nil)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestEndSession_NoMatchingApplication(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	ctrl := gomock.NewController(t)
	storage := mock.NewMockApplicationStore(ctrl)
	storage.EXPECT().FindByPostLogoutRedirectURI(gomock.Any(), redirectURI).Times(1).Return(nil, nil)

	provider := newTestProvider(t, nil, storage)
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "The specified 'post_logout_redirect_uri' parameter is not valid.", body["error_description"])
}

func permittedStorage(t *testing.T, redirectURI string) *mock.MockApplicationStore {
	t.Helper()
	ctrl := gomock.NewController(t)
	storage := mock.NewMockApplicationStore(ctrl)
	app := mock.NewApplication(t, "app-1", op.PermissionEndpointEndSession)
	storage.EXPECT().FindByPostLogoutRedirectURI(gomock.Any(), redirectURI).
		AnyTimes().Return([]op.Application{app}, nil)
	storage.EXPECT().HasPermission(gomock.Any(), withAppID("app-1"), op.PermissionEndpointEndSession).
		AnyTimes().Return(true, nil)
	return storage
}

func TestEndSession_StatePropagation(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	provider := newTestProvider(t, nil, permittedStorage(t, redirectURI))

	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI)+"&state=af0ifjsldkj", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "af0ifjsldkj", location.Query().Get("state"))
}

func TestEndSession_HandlerStateWins(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	provider := newTestProvider(t, nil, permittedStorage(t, redirectURI))
	require.NoError(t, provider.Handlers().ApplyResponse().Register(op.HandlerDescriptor[*op.ApplyResponseContext]{
		Name: "explicit-state",
		Handler: func(ctx context.Context, c *op.ApplyResponseContext) error {
			c.Response().Set("state", "handler-state")
			return nil
		},
	}))

	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI)+"&state=client-state", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, []string{"handler-state"}, location.Query()["state"])
}

func TestEndSession_NoStateWithoutRedirect(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))

	rec := doLogout(provider, http.MethodGet, "/connect/logout?state=af0ifjsldkj", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "state")
}

func TestEndSession_PostForm(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"
	provider := newTestProvider(t, nil, permittedStorage(t, redirectURI))

	rec := doLogout(provider, http.MethodPost, "/connect/logout", url.Values{
		"post_logout_redirect_uri": {redirectURI},
		"state":                    {"post-state"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "post-state", location.Query().Get("state"))
}

func TestEndSession_HandlerParams(t *testing.T) {
	const redirectURI = "https://client.example.com/signed-out"

	register := func(t *testing.T, provider *op.Provider) {
		require.NoError(t, provider.Handlers().Handle().Register(op.HandlerDescriptor[*op.HandleContext]{
			Name: "annotate",
			Handler: func(ctx context.Context, c *op.HandleContext) error {
				c.Response().Set("reason", "user")
				c.Response().SetList("scopes_cleared", "openid", "profile")
				return nil
			},
		}))
	}

	t.Run("redirect mode", func(t *testing.T) {
		provider := newTestProvider(t, nil, permittedStorage(t, redirectURI))
		register(t, provider)

		rec := doLogout(provider, http.MethodGet,
			"/connect/logout?post_logout_redirect_uri="+url.QueryEscape(redirectURI), nil)

		require.Equal(t, http.StatusFound, rec.Code)
		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "user", location.Query().Get("reason"))
		assert.Equal(t, []string{"openid", "profile"}, location.Query()["scopes_cleared"])
	})

	t.Run("inline mode", func(t *testing.T) {
		provider := newTestProvider(t, nil, mock.NewApplicationStore(t))
		register(t, provider)

		rec := doLogout(provider, http.MethodGet, "/connect/logout", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "user", body["reason"])
		assert.Equal(t, []any{"openid", "profile"}, body["scopes_cleared"])
	})
}

func TestEndSession_HandleRequestBypassesStore(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))
	require.NoError(t, provider.Handlers().Extract().Register(op.HandlerDescriptor[*op.ExtractContext]{
		Name: "short-circuit",
		Handler: func(ctx context.Context, c *op.ExtractContext) error {
			c.Transaction().Response().Set("handled_by", "extension")
			c.HandleRequest()
			return nil
		},
	}))

	// no store expectations: validation must never run
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape("https://client.example.com/signed-out"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, map[string]any{"handled_by": "extension"}, body)
}

func TestEndSession_SkipValidation(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))
	require.NoError(t, provider.Handlers().Validate().Register(op.HandlerDescriptor[*op.ValidateContext]{
		Name: "skip",
		Handler: func(ctx context.Context, c *op.ValidateContext) error {
			c.SkipRequest()
			return nil
		},
	}))

	// validation skipped: no store lookup, no redirect, default confirmation
	rec := doLogout(provider, http.MethodGet,
		"/connect/logout?post_logout_redirect_uri="+url.QueryEscape("https://client.example.com/signed-out"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec))
}

func TestEndSession_RejectionTriplePassthrough(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		description string
		uri         string
		wantCode    string
	}{
		{"all empty", "", "", "", "invalid_request"},
		{"explicit", "access_denied", "because", "https://errors.example.com/denied", "access_denied"},
		{"uri only", "", "", "https://errors.example.com/generic", "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, nil, mock.NewApplicationStore(t))
			require.NoError(t, provider.Handlers().Handle().Register(op.HandlerDescriptor[*op.HandleContext]{
				Name: "deny",
				Handler: func(ctx context.Context, c *op.HandleContext) error {
					c.Reject(tt.code, tt.description, tt.uri)
					return nil
				},
			}))

			rec := doLogout(provider, http.MethodGet, "/connect/logout", nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantCode, body["error"])
			if tt.description != "" {
				assert.Equal(t, tt.description, body["error_description"])
			} else {
				assert.NotContains(t, body, "error_description")
			}
			if tt.uri != "" {
				assert.Equal(t, tt.uri, body["error_uri"])
			} else {
				assert.NotContains(t, body, "error_uri")
			}
		})
	}
}

func TestEndSession_HandlerFaultYieldsServerError(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t))
	require.NoError(t, provider.Handlers().Handle().Register(op.HandlerDescriptor[*op.HandleContext]{
		Name: "broken",
		Handler: func(ctx context.Context, c *op.HandleContext) error {
			panic("boom")
		},
	}))

	rec := doLogout(provider, http.MethodGet, "/connect/logout", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "server_error", body["error"])
	// the fault detail never leaks to the caller
	assert.NotContains(t, body, "error_description")
}

func TestEndSession_CustomEndpoints(t *testing.T) {
	provider := newTestProvider(t, nil, mock.NewApplicationStore(t),
		op.WithEndSessionEndpoint(op.NewEndpoint("connect/endsession"), op.NewEndpoint("signout")))

	for _, target := range []string{"/connect/endsession", "/signout"} {
		rec := doLogout(provider, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec := doLogout(provider, http.MethodGet, "/connect/logout", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

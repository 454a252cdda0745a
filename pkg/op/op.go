package op

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/zitadel/schema"

	httphelper "github.com/ganhammar/openiddict-core/pkg/http"
)

const (
	healthEndpoint            = "/healthz"
	defaultEndSessionEndpoint = "connect/logout"
)

var defaultCORSOptions = cors.Options{
	AllowCredentials: true,
	AllowedHeaders: []string{
		"Origin",
		"Accept",
		"Accept-Language",
		"Authorization",
		"Content-Type",
		"X-Requested-With",
	},
	AllowedMethods: []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
	},
	ExposedHeaders: []string{
		"Location",
		"Content-Length",
	},
	AllowOriginFunc: func(_ string) bool {
		return true
	},
}

type Status struct {
	Status string `json:"status"`
}

type HTTPInterceptor func(http.Handler) http.Handler

// Provider serves the end-session endpoint on each accepted path and
// owns the handler registry extension surface. Reconfigure the
// registry at startup only; steady-state request handling reads it
// concurrently.
type Provider struct {
	config              *Config
	storage             ApplicationStore
	registry            *HandlerRegistry
	endSessionEndpoints []Endpoint
	decoder             *schema.Decoder
	encoder             *schema.Encoder
	httpHandler         http.Handler
	logger              *slog.Logger
	interceptors        []HTTPInterceptor
}

type Option func(o *Provider) error

// WithEndSessionEndpoint replaces the accepted end-session paths.
func WithEndSessionEndpoint(endpoints ...Endpoint) Option {
	return func(o *Provider) error {
		for _, endpoint := range endpoints {
			if err := endpoint.Validate(); err != nil {
				return err
			}
		}
		o.endSessionEndpoints = endpoints
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Provider) error {
		o.logger = logger
		return nil
	}
}

func WithHTTPMiddleware(m ...HTTPInterceptor) Option {
	return func(o *Provider) error {
		o.interceptors = m
		return nil
	}
}

func NewProvider(config *Config, storage ApplicationStore, opts ...Option) (*Provider, error) {
	o := &Provider{
		config:              config,
		storage:             storage,
		registry:            NewHandlerRegistry(),
		endSessionEndpoints: []Endpoint{NewEndpoint(defaultEndSessionEndpoint)},
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.logger = newLogger(o.logger)

	o.decoder = schema.NewDecoder()
	o.decoder.IgnoreUnknownKeys(true)

	o.encoder = schema.NewEncoder()

	o.createRouter()

	return o, nil
}

func (o *Provider) createRouter() {
	router := chi.NewRouter()
	router.Use(cors.New(defaultCORSOptions).Handler)
	router.Use(o.LogMiddleware())
	for _, interceptor := range o.interceptors {
		router.Use((func(http.Handler) http.Handler)(interceptor))
	}
	router.HandleFunc(healthEndpoint, healthHandler)
	for _, endpoint := range o.endSessionEndpoints {
		router.HandleFunc(endpoint.Relative(), endSessionHandler(o))
	}
	o.httpHandler = router
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	httphelper.MarshalJSON(w, Status{Status: "ok"})
}

func (o *Provider) Decoder() httphelper.Decoder {
	return o.decoder
}

func (o *Provider) Encoder() httphelper.Encoder {
	return o.encoder
}

func (o *Provider) Storage() ApplicationStore {
	return o.storage
}

// Handlers is the extension surface: register, replace or remove named
// handlers per stage.
func (o *Provider) Handlers() *HandlerRegistry {
	return o.registry
}

func (o *Provider) IgnoreEndpointPermissions() bool {
	return o.config.IgnoreEndpointPermissions
}

func (o *Provider) Logger() *slog.Logger {
	return o.logger
}

func (o *Provider) EndSessionEndpoints() []Endpoint {
	return o.endSessionEndpoints
}

func (o *Provider) HttpHandler() http.Handler {
	return o.httpHandler
}

func (o *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.httpHandler.ServeHTTP(w, r)
}

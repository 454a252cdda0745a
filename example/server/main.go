package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/ganhammar/openiddict-core/example/server/config"
	"github.com/ganhammar/openiddict-core/example/server/storage"
	httphelper "github.com/ganhammar/openiddict-core/pkg/http"
	"github.com/ganhammar/openiddict-core/pkg/op"
)

const sessionCookieName = "example_session"

func main() {
	configPath := flag.String("config", "config.yaml", "path to a yaml config file")
	flag.Parse()

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true, Level: slog.LevelDebug}),
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	store := storage.NewApplicationStore(
		&storage.Application{
			ID:                     "web-app",
			PostLogoutRedirectURIs: []string{"http://localhost:5555/signed-out"},
			Permissions:            []string{op.PermissionEndpointEndSession},
		},
		&storage.Application{
			ID:                     "native-app",
			PostLogoutRedirectURIs: []string{"com.example.app:/signed-out"},
		},
	)

	endpoints := make([]op.Endpoint, 0, len(cfg.EndSessionPaths))
	for _, path := range cfg.EndSessionPaths {
		endpoints = append(endpoints, op.NewEndpoint(path))
	}

	provider, err := op.NewProvider(
		&op.Config{IgnoreEndpointPermissions: cfg.IgnoreEndpointPermissions},
		store,
		op.WithLogger(logger),
		op.WithEndSessionEndpoint(endpoints...),
	)
	if err != nil {
		logger.Error("cannot create provider", "error", err)
		os.Exit(1)
	}

	cookies, err := cookieHandler(cfg)
	if err != nil {
		logger.Error("cannot create cookie handler", "error", err)
		os.Exit(1)
	}
	err = provider.Handlers().Handle().Register(op.HandlerDescriptor[*op.HandleContext]{
		Name:    "terminate-session",
		Handler: terminateSession(cookies, logger),
	})
	if err != nil {
		logger.Error("cannot register handler", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	http.Handle("/", provider)
	logger.Info("server listening", "addr", "http://localhost:"+cfg.Port)
	httphelper.StartServer(ctx, ":"+cfg.Port)
	<-ctx.Done()
	time.Sleep(time.Second)
}

func cookieHandler(cfg *config.Config) (*httphelper.CookieHandler, error) {
	key := securecookie.GenerateRandomKey(32)
	if cfg.CookieHashKey != "" {
		var err error
		key, err = hex.DecodeString(cfg.CookieHashKey)
		if err != nil {
			return nil, err
		}
	}
	return httphelper.NewCookieHandler(key, nil, httphelper.WithUnsecure()), nil
}

// terminateSession clears the browser session cookie when a logout
// request comes in. It never decides the request, so validation and the
// response stage still run as usual.
func terminateSession(cookies *httphelper.CookieHandler, logger *slog.Logger) op.HandlerFunc[*op.HandleContext] {
	return func(ctx context.Context, c *op.HandleContext) error {
		txn := c.Transaction()

		var subject string
		if err := cookies.CheckCookie(txn.HTTPRequest(), sessionCookieName, &subject); err != nil {
			return nil
		}
		txn.SetProperty("session.subject", subject)
		logger.InfoContext(ctx, "session terminated", "subject", subject)

		cookies.DeleteCookie(txn.HTTPWriter(), sessionCookieName)
		return nil
	}
}

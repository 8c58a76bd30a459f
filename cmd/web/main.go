// cmd/web/main.go
//
// regform - HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Build a Vault client when VAULT_ADDR is set, then load config
//     (YAML → env overrides → vault: secrets → validation).
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Wire the users API client, the country provider, form sessions, and
//     the CSRF signer.
//
//  5. Mount the register component, /metrics, and /healthz on chi behind
//     the middleware stack (request id, recovery, client info, logging,
//     HTTPS redirect, security headers).
//
//  6. Serve until SIGINT or SIGTERM, then shut down gracefully.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/regform/components/register"
	"github.com/yanizio/regform/internal/component"
	"github.com/yanizio/regform/internal/config"
	"github.com/yanizio/regform/internal/countries"
	"github.com/yanizio/regform/internal/form"
	"github.com/yanizio/regform/internal/logger"
	"github.com/yanizio/regform/internal/middleware"
	"github.com/yanizio/regform/internal/requestinfo"
	"github.com/yanizio/regform/internal/server"
	"github.com/yanizio/regform/internal/session"
	"github.com/yanizio/regform/internal/usersapi"
	"github.com/yanizio/regform/internal/vault"
)

const serverEnvPath = "/usr/local/etc/regform/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

func main() {
	loadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config (with optional Vault) ────────────────────────────────
	//
	var secrets config.SecretGetter
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			log.Fatalf("vault: %v", err)
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(logger.Options{
		Dir:   cfg.Logging.Dir,
		Level: cfg.Logging.Level,
		Tee:   logger.RunningInTTY(),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  Collaborators ───────────────────────────────────────────────
	//
	api, err := usersapi.New(cfg.API.BaseURL, usersapi.Options{
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		logOut.Fatalw("users api client", "err", err)
	}
	csrf, err := form.NewCSRF(cfg.Security.CSRFKey)
	if err != nil {
		logOut.Fatalw("csrf signer", "err", err)
	}
	var geo *requestinfo.GeoDB
	if cfg.GeoIP.DBPath != "" {
		if geo, err = requestinfo.OpenGeo(cfg.GeoIP.DBPath); err != nil {
			logOut.Fatalw("geoip", "err", err)
		}
		defer geo.Close()
	}
	reg, err := register.New(register.Deps{
		Sessions:  session.NewStore(api, cfg.Sessions.MaxEntries, cfg.Sessions.CookieName),
		Countries: countries.New(cfg.Countries.URL, nil),
		CSRF:      csrf,
	})
	if err != nil {
		logOut.Fatalw("register component", "err", err)
	}

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Middleware(geo))
	r.Use(middleware.RequestLog)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(middleware.Security)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := component.Mount(ctx, r, reg); err != nil {
		logOut.Fatalw("mount components", "err", err)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	logOut.Infow("users api", "endpoint", api.Endpoint())
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r)); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Infow("bye")
}

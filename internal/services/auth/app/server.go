// Package server wires the auth service runtime: the HTTP API, the gRPC
// health listener, storage lifecycle, and bootstrap seeding.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bbc/radiotag-authserver/internal/platform/config"
	"github.com/bbc/radiotag-authserver/internal/services/auth/account"
	"github.com/bbc/radiotag-authserver/internal/services/auth/api/rest"
	"github.com/bbc/radiotag-authserver/internal/services/auth/pairing"
	authsqlite "github.com/bbc/radiotag-authserver/internal/services/auth/storage/sqlite"
	"github.com/bbc/radiotag-authserver/internal/services/auth/token"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath     string `env:"RADIOTAG_DB_PATH"`
	PINDigits  int    `env:"RADIOTAG_PIN_DIGITS" envDefault:"4"`
	SeedTokens bool   `env:"RADIOTAG_SEED_TOKENS" envDefault:"true"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "auth.db")
	}
	return cfg
}

// Server hosts the auth HTTP API and a gRPC health listener.
type Server struct {
	httpListener   net.Listener
	httpServer     *http.Server
	healthListener net.Listener
	grpcServer     *grpc.Server
	health         *health.Server
	store          *authsqlite.Store
}

// New creates a configured auth server listening on the provided HTTP
// address. When healthPort is positive a gRPC health listener is started
// beside the HTTP one.
func New(httpAddr string, healthPort int) (*Server, error) {
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on http addr %s: %w", httpAddr, err)
	}

	env := loadServerEnv()
	store, err := openAuthStore(env.DBPath)
	if err != nil {
		_ = httpListener.Close()
		return nil, err
	}

	tokens := token.NewService(store)
	if env.SeedTokens {
		if err := seedTokens(context.Background(), tokens); err != nil {
			_ = httpListener.Close()
			_ = store.Close()
			return nil, err
		}
	}

	apiServer := rest.NewServer(
		tokens,
		pairing.NewService(store, store, env.PINDigits),
		account.NewService(store),
	)
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{
		Handler:           otelhttp.NewHandler(mux, "auth"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var healthListener net.Listener
	var grpcServer *grpc.Server
	var healthServer *health.Server
	if healthPort > 0 {
		healthListener, err = net.Listen("tcp", fmt.Sprintf(":%d", healthPort))
		if err != nil {
			_ = httpListener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on health port %d: %w", healthPort, err)
		}
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus("radiotag.auth", grpc_health_v1.HealthCheckResponse_SERVING)
	}

	return &Server{
		httpListener:   httpListener,
		httpServer:     httpServer,
		healthListener: healthListener,
		grpcServer:     grpcServer,
		health:         healthServer,
		store:          store,
	}, nil
}

// Addr returns the HTTP listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves an auth server until the context ends.
func Run(ctx context.Context, httpAddr string, healthPort int) error {
	server, err := New(httpAddr, healthPort)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the auth server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("auth server listening at %v", s.httpListener.Addr())
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()

	healthErr := make(chan error, 1)
	if s.grpcServer != nil && s.healthListener != nil {
		log.Printf("auth health server listening at %v", s.healthListener.Addr())
		go func() {
			healthErr <- s.grpcServer.Serve(s.healthListener)
		}()
	}

	handleHTTPErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	shutdownHTTP := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}
	shutdownHealth := func() {
		if s.health != nil {
			s.health.Shutdown()
		}
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
	}

	select {
	case <-ctx.Done():
		shutdownHealth()
		shutdownHTTP()
		err := <-httpErr
		return handleHTTPErr(err)
	case err := <-httpErr:
		shutdownHealth()
		return handleHTTPErr(err)
	case err := <-healthErr:
		shutdownHTTP()
		if handled := handleHTTPErr(<-httpErr); handled != nil {
			return handled
		}
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve health gRPC: %w", err)
	}
}

// Close releases server resources without waiting for in-flight requests.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.healthListener != nil {
		_ = s.healthListener.Close()
	}
	s.closeStore()
}

func openAuthStore(path string) (*authsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := authsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close auth store: %v", err)
		}
		s.store = nil
	}
}

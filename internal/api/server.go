package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/achomutovskij/deviceservice/internal/device"
	"github.com/achomutovskij/deviceservice/internal/gsm"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/config"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker reports whether a backing store is usable.
// *database.DB implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   *config.Config
	Logger   *logging.Logger
	Registry *device.Registry
	Resolver *gsm.Resolver
	DB       HealthChecker // optional; the health endpoint skips the store check without it
	Version  string
}

// Server serves the management, info and booking endpoints.
//
// It runs two listeners over the same router: the primary one on the
// configured port (HTTPS when TLS is enabled) and a plain HTTP one on
// port+1.
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *device.Registry
	resolver *gsm.Resolver
	db       HealthChecker
	version  string

	mu      sync.Mutex
	servers []*http.Server
	addrs   []net.Addr
	wg      sync.WaitGroup
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("enrichment resolver is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		registry: deps.Registry,
		resolver: deps.Resolver,
		db:       deps.DB,
		version:  deps.Version,
	}, nil
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds both listeners and serves them in the background.
// A missing or unreadable TLS certificate, or a bind failure (port in use),
// is returned and nothing is left running.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.servers) > 0 {
		return fmt.Errorf("api server already started")
	}

	router := s.buildRouter()
	primary := s.newHTTPServer(s.cfg.Port, router)
	auxPort := s.cfg.AuxiliaryPort()
	if s.cfg.Port == 0 {
		// Port 0 asks for ephemeral ports on both listeners.
		auxPort = 0
	}
	auxiliary := s.newHTTPServer(auxPort, router)

	withTLS := s.cfg.TLS.Enabled
	if withTLS {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		primary.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	var lc net.ListenConfig
	primaryLn, err := lc.Listen(ctx, "tcp", primary.Addr)
	if err != nil {
		return fmt.Errorf("binding primary listener %s: %w", primary.Addr, err)
	}
	auxLn, err := lc.Listen(ctx, "tcp", auxiliary.Addr)
	if err != nil {
		primaryLn.Close()
		return fmt.Errorf("binding auxiliary listener %s: %w", auxiliary.Addr, err)
	}

	s.servers = []*http.Server{primary, auxiliary}
	s.addrs = []net.Addr{primaryLn.Addr(), auxLn.Addr()}

	s.serve("primary", primaryLn.Addr(), func() error {
		if withTLS {
			// The certificate is already in TLSConfig.
			return primary.ServeTLS(primaryLn, "", "")
		}
		return primary.Serve(primaryLn)
	}, withTLS)
	s.serve("auxiliary", auxLn.Addr(), func() error {
		return auxiliary.Serve(auxLn)
	}, false)

	return nil
}

func (s *Server) newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, strconv.Itoa(port)),
		Handler:           handler,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}
}

func (s *Server) serve(name string, addr net.Addr, run func() error, withTLS bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("API listener starting", "listener", name, "address", addr.String(), "tls", withTLS)
		if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API listener error", "listener", name, "error", err)
		}
	}()
}

// Addrs returns the bound primary and auxiliary addresses, in that order.
// It is empty before Start.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]net.Addr(nil), s.addrs...)
}

// Close gracefully shuts down both listeners.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	servers := s.servers
	s.servers = nil
	s.addrs = nil
	s.mu.Unlock()

	if len(servers) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down %s: %w", srv.Addr, err))
		}
	}
	s.wg.Wait()
	return errors.Join(errs...)
}

package preview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starfederation/datastar-go/datastar"

	"mailcraft/config"
)

var (
	ErrStart    = errors.New("preview server failed to start")
	ErrShutdown = errors.New("preview server failed to shut down")
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the preview routes for hub.
func NewRouter(hub *Hub) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, shellPage)
	})

	r.Get("/raw", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, hub.Current())
	})

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		streamEvents(w, r, hub)
	})

	return r
}

// streamEvents patches the html signal with the current template and then
// with every published update until the client goes away.
func streamEvents(w http.ResponseWriter, r *http.Request, hub *Hub) {
	updates, cancel := hub.Subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)

	send := func(html string) error {
		data, err := json.Marshal(map[string]any{"html": html})
		if err != nil {
			return err
		}
		return sse.PatchSignals(data)
	}

	if err := send(hub.Current()); err != nil {
		config.DebugLog.Debugw("preview client dropped", "err", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case html, ok := <-updates:
			if !ok {
				return
			}
			if err := send(html); err != nil {
				config.DebugLog.Debugw("preview client dropped", "err", err)
				return
			}
		}
	}
}

// Server runs the preview router on a TCP address.
type Server struct {
	addr    string
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

func NewServer(addr string, hub *Hub) *Server {
	if addr == "" {
		addr = config.DefaultPreviewAddr
	}
	return &Server{
		addr:    addr,
		handler: NewRouter(hub),
		ready:   make(chan struct{}),
	}
}

// URL returns the address the browser should open. It blocks until the
// listener is bound or ctx is done.
func (s *Server) URL(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return "", ErrStart
	}
	return "http://" + s.listener.Addr().String(), nil
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		close(s.ready)
		return errors.Join(ErrStart, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	config.DebugLog.Infow("preview server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(ErrShutdown, err)
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	config.DebugLog.Infow("preview server stopped")

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

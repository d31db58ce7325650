// Package web is the monitor's HTTP console: a status page, a toggle
// endpoint, JSON status and a WebSocket that pushes live status.
package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sweeney/rad-monitor/internal/status"
)

// DefaultPushInterval is how often /ws clients receive a status update.
const DefaultPushInterval = 500 * time.Millisecond

// Toggler requests a mode toggle. core.ToggleSignal satisfies it.
type Toggler interface {
	Set() bool
}

// Server serves the console over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	toggles    Toggler
	upgrader   websocket.Upgrader

	// done is closed on shutdown. Hijacked /ws connections are not tracked
	// by http.Server, so push loops watch it instead.
	done     chan struct{}
	doneOnce sync.Once

	// PushInterval is read when a WebSocket client connects.
	PushInterval time.Duration
}

// New creates a Server that reads state from tracker and sends toggle
// requests to toggles.
func New(addr string, tracker *status.Tracker, toggles Toggler) *Server {
	s := &Server{
		tracker:      tracker,
		toggles:      toggles,
		PushInterval: DefaultPushInterval,
		done:         make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/index.html", s.handleIndex)
	r.GET("/toggle", s.handleToggle)
	r.POST("/api/toggle", s.handleAPIToggle)
	r.GET("/index.json", s.handleJSON)
	r.GET("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(s.closeStreams)
	return s
}

func (s *Server) closeStreams() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Handler returns the router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down. A listen failure is
// returned; a clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("[COMMS] web server started on %s", ln.Addr())

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.closeStreams()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderPage(c)
}

// handleToggle requests a toggle and renders the page. The page still shows
// the old mode: the coordinator applies the toggle on its next cycle.
func (s *Server) handleToggle(c *gin.Context) {
	s.toggles.Set()
	s.renderPage(c)
}

func (s *Server) handleAPIToggle(c *gin.Context) {
	posted := s.toggles.Set()
	c.JSON(http.StatusAccepted, gin.H{"pending": true, "coalesced": !posted})
}

func (s *Server) handleJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) renderPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := renderHTML(c.Writer, s.tracker.Snapshot()); err != nil {
		log.Printf("render page: %v", err)
	}
}

// handleWebSocket pushes the compact status JSON every PushInterval until
// the client goes away or the server shuts down. A "toggle" text message
// from the client requests a toggle.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(msg) == "toggle" {
				s.toggles.Set()
			}
		}
	}()

	interval := s.PushInterval
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		payload := status.FormatStatusEvent(s.tracker.Snapshot(), "", "")
		conn.SetWriteDeadline(time.Now().Add(interval * 4))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
		select {
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

package server

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/stegus64/plucklogviz/internal/hub"
	"github.com/stegus64/plucklogviz/internal/model"
)

// Server serves the latest generated document, its raw payload, and rebuild
// notifications for live reload. The rebuild loop installs new state with
// Update; requests never trigger a scan themselves.
type Server struct {
	engine *gin.Engine
	hub    *hub.Hub
	source string
	addr   string

	mu       sync.RWMutex
	doc      []byte
	payload  *model.Timeline
	rebuilds int64
	lastErr  string
}

// New creates a server for the given log source. addr is the listen address,
// e.g. ":7423".
func New(h *hub.Hub, source, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine: engine,
		hub:    h,
		source: source,
		addr:   addr,
	}

	s.setupRoutes()
	return s
}

// Update installs a freshly rendered document and its payload, then notifies
// websocket clients.
func (s *Server) Update(doc []byte, tl *model.Timeline) {
	s.mu.Lock()
	s.doc = doc
	s.payload = tl
	s.rebuilds++
	s.lastErr = ""
	s.mu.Unlock()

	s.hub.Publish(tl)
}

// Fail records a rebuild failure. The previous document keeps serving.
func (s *Server) Fail(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func (s *Server) setupRoutes() {
	// The generated document.
	s.engine.GET("/", func(c *gin.Context) {
		s.mu.RLock()
		doc, lastErr := s.doc, s.lastErr
		s.mu.RUnlock()
		if doc == nil {
			c.String(http.StatusServiceUnavailable, "no timeline yet: %s", lastErr)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
	})

	// The raw payload, as embedded in the document.
	s.engine.GET("/api/timeline.json", func(c *gin.Context) {
		s.mu.RLock()
		payload := s.payload
		s.mu.RUnlock()
		if payload == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no timeline yet"})
			return
		}
		c.JSON(http.StatusOK, payload)
	})

	// Health check.
	s.engine.GET("/healthz", func(c *gin.Context) {
		s.mu.RLock()
		rebuilds, lastErr := s.rebuilds, s.lastErr
		s.mu.RUnlock()
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"source":     s.source,
			"rebuilds":   rebuilds,
			"dropped_ws": s.hub.Dropped(),
			"last_error": lastErr,
		})
	})

	// WebSocket.
	s.engine.GET("/ws", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/allocs", gin.WrapH(pprof.Handler("allocs")))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server. Blocks until the process is stopped.
func (s *Server) Start() error {
	return s.engine.Run(s.addr)
}

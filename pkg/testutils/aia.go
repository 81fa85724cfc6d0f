package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
)

// AIAServer serves certificates for AIA CA issuers urls
type AIAServer struct {
	*httptest.Server

	mu    sync.Mutex
	certs map[string][]byte
	hits  atomic.Int32
}

// NewAIAServer start test server. certificates are registered with Put()
func NewAIAServer(ctx context.Context) *AIAServer {
	s := &AIAServer{certs: map[string][]byte{}}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.hits.Add(1)

		s.mu.Lock()
		body, ok := s.certs[req.URL.Path]
		s.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set(echo.HeaderContentType, "application/pkix-cert")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))

	go func() {
		<-ctx.Done()
		s.Server.Close()
	}()

	return s
}

// Put register certificate body for path
func (s *AIAServer) Put(path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs[path] = body
}

// Hits returns number of requests served
func (s *AIAServer) Hits() int { return int(s.hits.Load()) }

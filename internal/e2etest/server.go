package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver for Server.DB.

	"github.com/styrkr/styrkr/internal/logging"
)

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// LogDsnKey is the key used to log the data source name of the database.
const LogDsnKey = "sqlDsn"

// RunFunc has the signature of the main run function of a server under test.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is a running server under test.
type Server struct {
	url    string
	client *Client
	db     *sql.DB
	stop   context.CancelCauseFunc
	done   chan struct{}
}

// startupLog collects the first logged value of each watched key and closes ready once all are known.
type startupLog struct {
	mu     sync.Mutex
	values map[string]string
	want   int
	ready  chan struct{}
}

func newStartupLog(keys ...string) *startupLog {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		values[k] = ""
	}
	return &startupLog{
		mu:     sync.Mutex{},
		values: values,
		want:   len(keys),
		ready:  make(chan struct{}),
	}
}

func (l *startupLog) observe(_ []string, a slog.Attr) slog.Attr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, watched := l.values[a.Key]; watched && current == "" {
		l.values[a.Key] = a.Value.String()
		if l.want--; l.want == 0 {
			close(l.ready)
		}
	}
	return a
}

func (l *startupLog) get(key string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values[key]
}

// StartServer starts the server with run and returns once /api/healthy answers. The server is shut down when the
// test ends.
//
// Server logs go to logSink, usually testhelpers.NewWriter. run must log the listening address under
// [LogAddrKey] and the database DSN under [LogDsnKey].
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server,
	error) {
	ctx, stop := context.WithCancelCause(t.Context())
	done := make(chan struct{})
	startup := newStartupLog(LogAddrKey, LogDsnKey)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: startup.observe,
	})))

	go func() {
		defer close(done)
		if err := run(ctx, logger, lookupEnv); err != nil {
			stop(err)
		}
	}()
	server := &Server{url: "", client: nil, db: nil, stop: stop, done: done}
	t.Cleanup(server.Shutdown)

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("server stopped before it was ready: %w", context.Cause(ctx))
	case <-startup.ready:
	}

	server.url = "http://" + startup.get(LogAddrKey)
	client, err := NewClient(server.url)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	server.client = client

	if server.db, err = sql.Open("sqlite3", startup.get(LogDsnKey)); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return server, nil
}

// Client returns the client created at startup. Credentials set on it persist across calls.
func (s *Server) Client() *Client {
	return s.client
}

// URL is the base URL of the server, for example http://127.0.0.1:41235.
func (s *Server) URL() string {
	return s.url
}

// DB is a connection to the server's database for arranging and inspecting rows.
func (s *Server) DB() *sql.DB {
	return s.db
}

// Shutdown stops the server and waits for run to return. It is safe to call more than once.
func (s *Server) Shutdown() {
	s.stop(nil)
	<-s.done
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

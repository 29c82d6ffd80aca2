package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corey/codetrail/internal/domain/events"
	"github.com/corey/codetrail/pkg/logger"
)

// Queries provides read access to watcher state for server handlers.
// Implementations are called from connection goroutines and must be safe
// for concurrent use.
type Queries interface {
	Status() StatusResult
	IndexedPaths() ([]string, error)
	// Lookup returns nil, nil when path is not indexed.
	Lookup(path string) (*events.FileEvents, error)
}

// Server listens on a Unix socket and answers control requests.
type Server struct {
	queries  Queries
	root     string
	listener net.Listener
	sockPath string
	started  time.Time
	log      logger.Logger

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a control server. root is used to relativize paths for
// glob filtering.
func NewServer(sockPath, root string, queries Queries, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		queries:    queries,
		root:       root,
		sockPath:   sockPath,
		log:        log,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("watcher already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener, waits for connections and removes the socket
// file. Idempotent.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh is closed when a client requests shutdown.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodHealth:
		return Response{ID: req.ID, Result: HealthResult{
			Status: "ok",
			Uptime: time.Since(s.started).Round(time.Second).String(),
		}}
	case MethodStatus:
		st := s.queries.Status()
		st.Uptime = time.Since(s.started).Round(time.Second).String()
		return Response{ID: req.ID, Result: st}
	case MethodFiles:
		return s.handleFiles(req)
	case MethodShow:
		return s.handleShow(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleFiles(req Request) Response {
	var params FilesParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid files params"}
	}
	if params.Glob != "" && !doublestar.ValidatePattern(params.Glob) {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid glob %q", params.Glob)}
	}

	paths, err := s.queries.IndexedPaths()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if params.Glob != "" {
			rel, err := filepath.Rel(s.root, p)
			if err != nil {
				rel = p
			}
			if ok, _ := doublestar.Match(params.Glob, filepath.ToSlash(rel)); !ok {
				continue
			}
		}
		files = append(files, p)
	}
	return Response{ID: req.ID, Result: FilesResult{Files: files, Count: len(files)}}
}

func (s *Server) handleShow(req Request) Response {
	var params ShowParams
	if err := decodeParams(req.Params, &params); err != nil || params.Path == "" {
		return Response{ID: req.ID, Error: "invalid show params"}
	}
	fe, err := s.queries.Lookup(params.Path)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: ShowResult{Found: fe != nil, Events: fe}}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.log.Debug("write response: %v", err)
	}
}

// decodeParams re-marshals generic params into dst.
func decodeParams(params interface{}, dst interface{}) error {
	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

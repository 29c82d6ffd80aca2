// Package socket implements a JSON-over-Unix-socket control protocol for a
// running watcher. The protocol uses newline-delimited JSON: each message is
// one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/codetrail/internal/domain/events"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: $TMPDIR/codetrail-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("codetrail-%x.sock", h[:6]))
}

// Method names for the protocol.
const (
	MethodHealth   = "health"
	MethodStatus   = "status"
	MethodFiles    = "files"
	MethodShow     = "show"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// StatusResult describes the running watcher.
type StatusResult struct {
	Root        string   `json:"root"`
	Indexed     int      `json:"indexed"`
	WatchedDirs int      `json:"watched_dirs"`
	Languages   []string `json:"languages,omitempty"`
	Debounce    string   `json:"debounce"`
	Uptime      string   `json:"uptime"`
}

// FilesParams filters the files listing. Glob uses doublestar syntax and is
// matched against the path relative to the project root.
type FilesParams struct {
	Glob string `json:"glob,omitempty"`
}

// FilesResult lists indexed paths.
type FilesResult struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// ShowParams names the file to show.
type ShowParams struct {
	Path string `json:"path"`
}

// ShowResult carries the stored events for one file. Found is false when the
// path is not indexed.
type ShowResult struct {
	Found  bool               `json:"found"`
	Events *events.FileEvents `json:"events,omitempty"`
}

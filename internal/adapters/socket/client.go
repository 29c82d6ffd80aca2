package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client connects to a running watcher over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status asks the watcher for its state.
func (c *Client) Status() (*StatusResult, error) {
	var result StatusResult
	if err := c.do(MethodStatus, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Files lists indexed paths, optionally filtered by a doublestar glob.
func (c *Client) Files(glob string) (*FilesResult, error) {
	var result FilesResult
	if err := c.do(MethodFiles, FilesParams{Glob: glob}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Show fetches the stored events for path.
func (c *Client) Show(path string) (*ShowResult, error) {
	var result ShowResult
	if err := c.do(MethodShow, ShowParams{Path: path}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown asks the watcher to stop.
func (c *Client) Shutdown() error {
	return c.do(MethodShutdown, nil, nil)
}

// Ping checks if the watcher is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// do sends one request and decodes its result into out (when non-nil).
func (c *Client) do(method string, params interface{}, out interface{}) error {
	resp, err := c.call(Request{ID: "1", Method: method, Params: params})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}

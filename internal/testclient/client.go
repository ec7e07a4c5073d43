// Package testclient drives a running dungeon server over its websocket and HTTP API.
package testclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/server"
)

const defaultTimeout = 10 * time.Second

// TestClient is one websocket session plus an HTTP client for the level API.
type TestClient struct {
	Name    string
	baseURL string
	conn    *websocket.Conn
	http    *http.Client
	mu      sync.Mutex // One request in flight at a time
}

// NewTestClient connects to the server at address ("host:port" or an http(s) URL).
func NewTestClient(name, address string) (*TestClient, error) {
	baseURL := address
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: defaultTimeout}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return &TestClient{
		Name:    name,
		baseURL: baseURL,
		conn:    conn,
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Do sends one request and waits for its response.
func (c *TestClient) Do(req server.Request) (server.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var resp server.Response
	c.conn.SetWriteDeadline(time.Now().Add(defaultTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return resp, fmt.Errorf("failed to send %s: %w", req.Op, err)
	}
	c.conn.SetReadDeadline(time.Now().Add(defaultTimeout))
	if err := c.conn.ReadJSON(&resp); err != nil {
		return resp, fmt.Errorf("failed to read %s response: %w", req.Op, err)
	}
	return resp, nil
}

// Enter enters a level, remembering (x, y) as the return point.
func (c *TestClient) Enter(level int, x, y float64) (server.Response, error) {
	return c.Do(server.Request{Op: server.OpEnter, Level: level, X: x, Y: y})
}

// Exit leaves the active level.
func (c *TestClient) Exit() (server.Response, error) {
	return c.Do(server.Request{Op: server.OpExit})
}

// Chunk requests one chunk of the active level.
func (c *TestClient) Chunk(x, y int) (server.Response, error) {
	return c.Do(server.Request{Op: server.OpChunk, X: float64(x), Y: float64(y)})
}

// Manifest fetches a level manifest from the HTTP API.
func (c *TestClient) Manifest(level int) (*server.LevelManifest, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/api/levels/%d", c.baseURL, level))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET level %d: status %d", level, resp.StatusCode)
	}
	var m server.LevelManifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// Close closes the websocket session.
func (c *TestClient) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

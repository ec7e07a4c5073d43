package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

const writeWait = 10 * time.Second

var (
	errBadRequest      = errors.New("malformed request")
	errUnknownOp       = errors.New("unknown op")
	errChunkOutOfRange = errors.New("chunk out of bounds")
	errLevelNotLoaded  = errors.New("level not generated")
)

// Session is one websocket client exploring its own dungeon.
type Session struct {
	conn     *websocket.Conn
	clientIP string
	dungeon  *directory.Directory

	journal Journal
	id      int64 // Journal session id, 0 without a journal

	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, clientIP string, d *directory.Directory) *Session {
	return &Session{conn: conn, clientIP: clientIP, dungeon: d}
}

func (s *Session) attachJournal(j Journal, id int64) {
	s.journal = j
	s.id = id
	s.dungeon.SetJournal(j, id)
}

// run reads requests until the connection fails or closes.
func (s *Session) run() {
	defer s.conn.Close()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read failed", "client_ip", s.clientIP, "error", err)
			}
			return
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(message, &req); err != nil {
			resp = Response{Error: errBadRequest.Error()}
		} else {
			resp = s.handle(req)
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(resp); err != nil {
			logger.Debug("WebSocket write failed", "client_ip", s.clientIP, "error", err)
			return
		}
	}
}

// Close sends a close frame and drops the connection. Safe to call from any goroutine.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		s.conn.Close()
	})
}

// handle executes one request against the session's directory.
func (s *Session) handle(req Request) Response {
	resp := Response{Op: req.Op}
	var err error

	switch req.Op {
	case OpEnter:
		err = s.enter(req, &resp)
	case OpExit:
		err = s.exit(&resp)
	case OpChunk:
		err = s.chunk(req, &resp)
	case OpSpawn:
		err = s.spawn(req, &resp)
	case OpPreload:
		err = s.preload(req, &resp)
	case OpReseed:
		err = s.reseed(req, &resp)
	default:
		err = errUnknownOp
	}

	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	return resp
}

func (s *Session) enter(req Request, resp *Response) error {
	lvl, err := s.dungeon.Enter(req.Level, req.X, req.Y)
	if err != nil {
		return err
	}
	resp.Level = manifestFor(lvl)
	resp.Spawn = spawnPayload(resp.Level.Spawn.X, resp.Level.Spawn.Y)
	return nil
}

func (s *Session) exit(resp *Response) error {
	x, y, err := s.dungeon.Exit()
	if err != nil {
		return err
	}
	resp.Return = &PixelPosition{X: x, Y: y}
	return nil
}

func (s *Session) chunk(req Request, resp *Response) error {
	lvl, ok := s.dungeon.Current()
	if !ok {
		return directory.ErrNotInDungeon
	}
	c, ok := lvl.Chunks.ChunkAt(int(math.Floor(req.X)), int(math.Floor(req.Y)))
	if !ok {
		return errChunkOutOfRange
	}
	resp.Chunk = chunkPayload(c)
	return nil
}

// spawn reports the spawn point of req.Level, or of the active level when none is given.
func (s *Session) spawn(req Request, resp *Response) error {
	level := req.Level
	if level == 0 {
		if !s.dungeon.InDungeon() {
			return directory.ErrNotInDungeon
		}
		level = s.dungeon.CurrentLevel()
	}
	x, y, ok := s.dungeon.SpawnPosition(level)
	if !ok {
		return errLevelNotLoaded
	}
	resp.Spawn = spawnPayload(x, y)
	return nil
}

func (s *Session) preload(req Request, resp *Response) error {
	lvl, ok := s.dungeon.Current()
	if !ok {
		return directory.ErrNotInDungeon
	}
	n := lvl.Chunks.Preload(req.Radius)
	resp.Loaded = &n
	return nil
}

// reseed switches the session to a new base seed. The client is sent back to town.
func (s *Session) reseed(req Request, resp *Response) error {
	if s.dungeon.InDungeon() {
		if _, _, err := s.dungeon.Exit(); err != nil {
			return err
		}
	}
	s.dungeon.Reseed(req.Seed)

	if s.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		if err := s.journal.UpdateSessionSeed(ctx, s.id, req.Seed); err != nil {
			logger.Warning("Failed to journal reseed", "session_id", s.id, "error", err)
		}
	}

	seed := s.dungeon.BaseSeed()
	resp.Seed = &seed
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const liveWriteTimeout = 5 * time.Second

// liveConn serialises writes; gorilla connections allow one concurrent writer.
type liveConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *liveConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type liveHub struct {
	mu     sync.Mutex
	groups map[uint]map[*liveConn]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{
		groups: make(map[uint]map[*liveConn]struct{}),
	}
}

func (h *liveHub) Add(questionID uint, conn *liveConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[questionID]
	if group == nil {
		group = make(map[*liveConn]struct{})
		h.groups[questionID] = group
	}
	group[conn] = struct{}{}
}

func (h *liveHub) Remove(questionID uint, conn *liveConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[questionID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.conn.Close()
	if len(group) == 0 {
		delete(h.groups, questionID)
	}
}

func (h *liveHub) Count(questionID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[questionID])
}

func (h *liveHub) Send(conn *liveConn, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.write(data)
}

func (h *liveHub) Broadcast(questionID uint, payload any) {
	h.mu.Lock()
	group := h.groups[questionID]
	conns := make([]*liveConn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.write(data); err != nil {
			h.Remove(questionID, conn)
		}
	}
}

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleLiveResults(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}
	question, err := s.store.GetQuestion(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			s.handleNotFound(c)
			return
		}
		s.serverError(c, "load question for live results", err)
		return
	}
	ws, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := &liveConn{conn: ws}
	slog.Info("ws connected", "question_id", id, "remote", c.Request.RemoteAddr)
	s.live.Add(id, conn)
	if err := s.live.Send(conn, resultsPayloadFor(question)); err != nil {
		s.live.Remove(id, conn)
		return
	}
	go s.readLive(id, conn)
}

func (s *Server) readLive(questionID uint, conn *liveConn) {
	defer s.live.Remove(questionID, conn)
	for {
		if _, _, err := conn.conn.ReadMessage(); err != nil {
			slog.Debug("ws disconnected", "question_id", questionID, "error", err)
			return
		}
	}
}

func (s *Server) broadcastResults(c *gin.Context, questionID uint) {
	if s.live == nil || s.live.Count(questionID) == 0 {
		return
	}
	question, err := s.store.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		slog.Error("load question for broadcast failed", "question_id", questionID, "error", err)
		return
	}
	s.live.Broadcast(questionID, resultsPayloadFor(question))
}

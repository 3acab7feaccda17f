package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// session owns the write side of one connection. Writes are queued so a slow
// client never blocks the tick loop; frames beyond the buffer are dropped.
type session struct {
	conn   *websocket.Conn
	logger *log.Logger
	queue  chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSession(conn *websocket.Conn, logger *log.Logger) *session {
	return &session{
		conn:   conn,
		logger: logger,
		queue:  make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (s *session) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal message", "err", err)
		return
	}

	select {
	case <-s.done:
	case s.queue <- data:
	default:
		s.logger.Debug("client too slow, dropping frame")
	}
}

func (s *session) sendError(message string) {
	s.send(errorMessage{Type: msgError, Message: message})
}

func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed", "err", err)
				s.close()
				return
			}
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		s.conn.Close()
	})
}

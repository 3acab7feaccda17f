// Package server exposes a running simulation to browser clients over a
// websocket: snapshots flow out on every tick, control commands flow in.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/engine"
	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/patterns"
	"github.com/sheikhrachel/go-gol-engine/scheduler"
)

const (
	sendBufferSize        = 16
	writeWait             = 5 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// Controller is the slice of the scheduler the handler drives
type Controller interface {
	Start()
	Stop()
	Toggle() scheduler.State
	Reset() (engine.Snapshot, error)
	LoadPattern(pattern model.Pattern) (engine.Snapshot, error)
	Snapshot() scheduler.Update
	Subscribe(fn scheduler.Observer) (unsubscribe func())
}

type HandlerConfig struct {
	Logger *log.Logger
	// Catalog backs listPatterns and publish. Nil disables both.
	Catalog        patterns.Catalog
	RequestTimeout time.Duration
}

type Handler struct {
	ctrl     Controller
	catalog  patterns.Catalog
	logger   *log.Logger
	timeout  time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(ctrl Controller, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Handler{
		ctrl:    ctrl,
		catalog: cfg.Catalog,
		logger:  logger,
		timeout: timeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Routes returns a mux serving the websocket at /ws and a liveness probe at /healthz
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.Handle)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Handle upgrades the request and serves one client until it disconnects
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	sess := newSession(conn, h.logger)
	defer func() {
		cancel()
		sess.close()
	}()
	go sess.writeLoop()

	// Subscribe before the initial snapshot so no tick in between is missed.
	unsubscribe := h.ctrl.Subscribe(func(u scheduler.Update) {
		sess.send(newSnapshotMessage(u))
	})
	defer unsubscribe()
	sess.send(newSnapshotMessage(h.ctrl.Snapshot()))

	h.logger.Info("client connected", "remote", r.RemoteAddr)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("client read failed", "remote", r.RemoteAddr, "err", err)
			}
			h.logger.Info("client disconnected", "remote", r.RemoteAddr)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Warn("discarding malformed message", "remote", r.RemoteAddr, "err", err)
			sess.sendError("malformed message")
			continue
		}
		h.dispatch(ctx, sess, msg)
	}
}

func (h *Handler) dispatch(ctx context.Context, sess *session, msg clientMessage) {
	switch msg.Type {
	case msgStart:
		h.ctrl.Start()
	case msgStop:
		h.ctrl.Stop()
	case msgToggle:
		h.ctrl.Toggle()
	case msgReset:
		if _, err := h.ctrl.Reset(); err != nil {
			h.logger.Error("reset failed", "err", err)
			sess.sendError("reset failed")
		}
	case msgLoadPattern:
		if msg.Pattern == nil {
			sess.sendError("loadPattern requires a pattern")
			return
		}
		if _, err := h.ctrl.LoadPattern(*msg.Pattern); err != nil {
			h.logger.Error("load pattern failed", "name", msg.Pattern.Name, "err", err)
			sess.sendError("failed to load pattern")
		}
	case msgListPatterns:
		if h.catalog == nil {
			sess.sendError("pattern catalog unavailable")
			return
		}
		go h.listPatterns(ctx, sess)
	case msgPublish:
		if h.catalog == nil {
			sess.sendError("pattern catalog unavailable")
			return
		}
		// Capture the board now, not when the catalog call happens.
		grid := h.ctrl.Snapshot().Grid
		go h.publish(ctx, sess, msg.Name, grid)
	default:
		sess.sendError("unknown message type: " + msg.Type)
	}
}

func (h *Handler) listPatterns(ctx context.Context, sess *session) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	list, err := h.catalog.List(ctx)
	if err != nil {
		h.logger.Error("failed to load patterns", "err", err)
		sess.sendError("Failed to load patterns")
		return
	}
	if list == nil {
		list = []model.Pattern{}
	}
	sess.send(patternsMessage{Type: msgPatterns, Patterns: list})
}

func (h *Handler) publish(ctx context.Context, sess *session, name string, grid *model.Grid) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	p, err := patterns.Publish(ctx, h.catalog, name, grid)
	switch {
	case errors.Is(err, model.ErrEmptyPatternName):
		sess.sendError("Please enter a pattern name")
	case err != nil:
		h.logger.Error("failed to publish pattern", "name", name, "err", err)
		sess.sendError("Something went wrong; please try again later.")
	default:
		h.logger.Info("pattern published", "id", p.ID, "name", p.Name)
		sess.send(publishedMessage{Type: msgPublished, Pattern: p})
	}
}

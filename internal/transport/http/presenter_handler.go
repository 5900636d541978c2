package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/presenter"
)

// PresenterHandler streams carousel frames to a presenter screen.
type PresenterHandler struct {
	store    app.Store
	upgrader websocket.Upgrader
}

func NewPresenterHandler(store app.Store) *PresenterHandler {
	return &PresenterHandler{store: store, upgrader: newUpgrader()}
}

// ServeWS streams frames until the client goes away. The carousel timer stops
// with the socket.
func (h *PresenterHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The presenter never sends anything; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = presenter.Stream(ctx, h.store, func(f presenter.Frame) error {
		return conn.WriteJSON(outboundMessage{Type: "frame", Payload: f})
	})
	if err != nil {
		slog.Debug("presenter stream ended", "error", err)
	}
}

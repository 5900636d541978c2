package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"feedbacker-service/internal/app"
)

var errUnsupportedCommand = errors.New("unsupported message type")

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// PlayerHandler drives one player session per websocket.
type PlayerHandler struct {
	players  *app.PlayerService
	store    app.Store
	upgrader websocket.Upgrader
}

func NewPlayerHandler(players *app.PlayerService, store app.Store) *PlayerHandler {
	return &PlayerHandler{players: players, store: store, upgrader: newUpgrader()}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type commandPayload struct {
	ObjectID string `json:"objectId"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Value    int    `json:"value"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and wires the socket into the player use cases.
// Every state change of the session or the event produces a fresh view.
func (h *PlayerHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	name := r.URL.Query().Get("name")
	if deviceID == "" {
		http.Error(w, "missing deviceId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := h.players.Connect(ctx, deviceID, name)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	defer h.players.Disconnect(context.Background(), deviceID)

	sessionUpdates, unsubscribeSession := session.Subscribe()
	defer unsubscribeSession()
	eventUpdates, unsubscribeEvent, err := h.store.Subscribe(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	defer unsubscribeEvent()

	send := make(chan outboundMessage, 16)
	refresh := make(chan struct{}, 1)
	writerDone := make(chan struct{})
	viewsDone := make(chan struct{})

	enqueue := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("ws write error", "deviceId", deviceID, "error", err)
				cancel()
				conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(viewsDone)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sessionUpdates:
				if !ok {
					return
				}
			case _, ok := <-eventUpdates:
				if !ok {
					return
				}
			case <-refresh:
			}
			view, err := h.players.View(ctx, deviceID)
			if err != nil {
				enqueue(outboundMessage{Type: "error", Payload: newErrorPayload(err)})
				continue
			}
			enqueue(outboundMessage{Type: "view", Payload: view})
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, deviceID, inbound); err != nil {
			enqueue(outboundMessage{Type: "error", Payload: newErrorPayload(err)})
		}
		// Draft edits do not touch the machine, so always re-render.
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	cancel()
	<-viewsDone
	close(send)
	<-writerDone
}

func (h *PlayerHandler) dispatch(ctx context.Context, deviceID string, msg inboundMessage) error {
	var p commandPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.New("invalid " + msg.Type + " payload")
		}
	}
	players := h.players
	switch msg.Type {
	case "setName":
		return players.SetName(ctx, deviceID, p.Name)
	case "selectObject":
		return players.SelectObject(ctx, deviceID, p.ObjectID)
	case "selectOption":
		return players.SelectOption(ctx, deviceID, p.Index)
	case "toggleOption":
		return players.ToggleOption(ctx, deviceID, p.Index)
	case "setText":
		return players.SetText(ctx, deviceID, p.Text)
	case "setRating":
		return players.SetRating(ctx, deviceID, p.Value)
	case "skip":
		return players.Skip(ctx, deviceID)
	case "next":
		return players.Next(ctx, deviceID)
	case "previous":
		return players.Previous(ctx, deviceID)
	case "goTo":
		return players.GoTo(ctx, deviceID, p.Index)
	case "finish":
		return players.Finish(ctx, deviceID)
	case "cancel":
		return players.Cancel(ctx, deviceID)
	case "submitPrizeEmail":
		return players.SubmitPrizeEmail(ctx, deviceID, p.Name, p.Email)
	case "skipPrizeEmail":
		return players.SkipPrizeEmail(ctx, deviceID)
	case "openPrizeClaim":
		return players.OpenPrizeClaim(ctx, deviceID)
	case "closePrizeClaim":
		return players.ClosePrizeClaim(ctx, deviceID)
	}
	return errUnsupportedCommand
}

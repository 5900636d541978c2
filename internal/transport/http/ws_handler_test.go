package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/player"
	"feedbacker-service/internal/presenter"
)

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func seed(t *testing.T, s *testServer) domain.FeedbackObject {
	t.Helper()
	ctx := context.Background()
	_ = s.host.UpdateIntroMessage(ctx, "Welcome")
	obj, err := s.host.AddObject(ctx, app.ObjectInput{Name: "Espresso"})
	if err != nil {
		t.Fatalf("add object: %v", err)
	}
	inputs := []app.QuestionInput{
		{Type: domain.QuestionSingle, Text: "Taste?", ImageURL: "img", Options: []string{"Good", "Bad"}},
		{Type: domain.QuestionMultiple, Text: "Notes?", ImageURL: "img", Options: []string{"Nutty", "Fruity"}},
		{Type: domain.QuestionRating, Text: "Score?", ImageURL: "img", RatingScale: 5},
		{Type: domain.QuestionOpenEnded, Text: "More?", ImageURL: "img"},
	}
	for _, in := range inputs {
		if _, err := s.host.AddQuestion(ctx, obj.ID, in); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	if err := s.host.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return obj
}

func dial(t *testing.T, s *testServer, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendCommand(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads messages of type typ until match accepts one.
func readUntil[T any](t *testing.T, conn *websocket.Conn, typ string, match func(T) bool) T {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type != typ {
			continue
		}
		var v T
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			t.Fatalf("decode %s: %v", typ, err)
		}
		if match(v) {
			return v
		}
	}
	t.Fatalf("no matching %s message", typ)
	var zero T
	return zero
}

func TestPlayerSocketAnswersAnObject(t *testing.T) {
	s := newTestServer(t)
	obj := seed(t, s)
	conn := dial(t, s, "/ws/player?deviceId=device-1&name=Ada")

	intro := readUntil(t, conn, "view", func(v app.PlayerView) bool { return v.View == player.ViewIntro })
	if len(intro.Objects) != 1 || intro.Name != "Ada" {
		t.Fatalf("unexpected intro: %+v", intro)
	}

	sendCommand(t, conn, "selectObject", map[string]string{"objectId": obj.ID})
	readUntil(t, conn, "view", func(v app.PlayerView) bool { return v.Questions != nil && v.Questions.Index == 0 })

	sendCommand(t, conn, "next", nil)
	e := readUntil(t, conn, "error", func(errorPayload) bool { return true })
	if e.Code != "answer_required" {
		t.Fatalf("expected answer required, got %+v", e)
	}

	sendCommand(t, conn, "selectOption", map[string]int{"index": 1})
	sendCommand(t, conn, "next", nil)
	readUntil(t, conn, "view", func(v app.PlayerView) bool { return v.Questions != nil && v.Questions.Index == 1 })

	for i := 0; i < 3; i++ {
		sendCommand(t, conn, "skip", nil)
	}
	sendCommand(t, conn, "finish", nil)
	done := readUntil(t, conn, "view", func(v app.PlayerView) bool { return v.View == player.ViewIntro })
	if len(done.Objects) != 1 || !done.Objects[0].Completed {
		t.Fatalf("expected object completed, got %+v", done.Objects)
	}

	state, _ := s.store.Snapshot(context.Background())
	if len(state.Responses) != 4 || len(state.CompletedObjects) != 1 {
		t.Fatalf("expected 4 responses and 1 completion, got %d and %d", len(state.Responses), len(state.CompletedObjects))
	}
}

func TestPlayerSocketRejectsUnknownCommands(t *testing.T) {
	s := newTestServer(t)
	conn := dial(t, s, "/ws/player?deviceId=device-2")
	readUntil(t, conn, "view", func(app.PlayerView) bool { return true })

	sendCommand(t, conn, "dance", nil)
	e := readUntil(t, conn, "error", func(errorPayload) bool { return true })
	if e.Message != errUnsupportedCommand.Error() {
		t.Fatalf("unexpected error: %+v", e)
	}

	sendCommand(t, conn, "selectObject", map[string]string{"objectId": "nope"})
	e = readUntil(t, conn, "error", func(errorPayload) bool { return true })
	if e.Code != "event_not_published" {
		t.Fatalf("expected unpublished event to block selection, got %+v", e)
	}
}

func TestPresenterSocketStreamsFrames(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)
	conn := dial(t, s, "/ws/presenter")

	frame := readUntil(t, conn, "frame", func(presenter.Frame) bool { return true })
	if frame.Total != 4 || frame.Slide == nil || frame.Index != 0 {
		t.Fatalf("unexpected first frame: %+v", frame)
	}

	_ = s.host.DeleteObject(context.Background(), frame.Slide.ObjectID)
	readUntil(t, conn, "frame", func(f presenter.Frame) bool { return f.Total == 0 && f.Slide == nil })
}

package stream

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tumor-ca/internal/core"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func TestNewFrame(t *testing.T) {
	f := NewFrame("tumor", 3, core.Size{W: 8, H: 6},
		[]core.Stat{{Label: "Day", Value: "2"}},
		[]core.Pixel{{X: 1, Y: 2, C: color.RGBA{R: 10, G: 20, B: 30, A: 255}}})
	if f.Stats["Day"] != "2" || f.Width != 8 || f.Height != 6 {
		t.Fatalf("frame %+v", f)
	}
	if len(f.Cells) != 1 || f.Cells[0] != [5]int{1, 2, 10, 20, 30} {
		t.Fatalf("cells %v", f.Cells)
	}
}

func TestHubBroadcastsFrames(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	want := NewFrame("tumor", 7, core.Size{W: 4, H: 4}, nil, []core.Pixel{{X: 3, Y: 1}})
	if err := hub.Publish(want); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var got Frame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Step != 7 || got.Name != "tumor" || len(got.Cells) != 1 || got.Cells[0][0] != 3 {
		t.Fatalf("received %+v", got)
	}
}

func TestHubForwardsControls(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	if err := conn.WriteJSON(Control{Type: "tps", Value: 30}); err != nil {
		t.Fatal(err)
	}
	select {
	case ctl := <-hub.Controls:
		if ctl.Type != "tps" || ctl.Value != 30 {
			t.Fatalf("control %+v", ctl)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("control never arrived")
	}
}

func TestHubDropsClosedViewers(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed viewer still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

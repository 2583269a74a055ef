package wsclient

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"navbot/internal/protocol"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeServer upgrades one connection, checks the HELLO and replies with the
// given messages before handing the conn to extra (optional).
func fakeServer(t *testing.T, replies []any, extra func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read HELLO: %v", err)
			return
		}
		var hello protocol.HelloMsg
		if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
			t.Errorf("bad HELLO: %s", msg)
			return
		}
		for _, reply := range replies {
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
		if extra != nil {
			extra(conn)
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDial_Handshake(t *testing.T) {
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		AgentID:         "A1",
		WorldParams:     protocol.WorldParams{TickRateHz: 5, Seed: 1337},
		Beacons: []protocol.Beacon{
			{ID: "B1", Pos: [3]float64{0, 0, 0}},
		},
	}
	srv := fakeServer(t, []any{welcome}, nil)
	defer srv.Close()

	c, w, err := Dial(wsURL(srv), "bot", testLogger())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if w.AgentID != "A1" || len(w.Beacons) != 1 || w.Beacons[0].ID != "B1" {
		t.Fatalf("welcome: %+v", w)
	}
}

func TestDial_ServerError(t *testing.T) {
	reject := protocol.ErrorMsg{
		Type:    protocol.TypeError,
		Code:    protocol.ErrProtoBadRequest,
		Message: "unsupported version",
	}
	srv := fakeServer(t, []any{reject}, nil)
	defer srv.Close()

	_, _, err := Dial(wsURL(srv), "bot", testLogger())
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if !strings.Contains(err.Error(), protocol.ErrProtoBadRequest) {
		t.Fatalf("err=%v want rejected code", err)
	}
}

func TestReadMessage_RoutesObs(t *testing.T) {
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		AgentID:         "A1",
		WorldParams:     protocol.WorldParams{TickRateHz: 5},
	}
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            3,
		AgentID:         "A1",
		Self:            protocol.SelfObs{Pos: [3]float64{1, 2, 3}},
	}
	srv := fakeServer(t, []any{welcome, obs}, nil)
	defer srv.Close()

	c, _, err := Dial(wsURL(srv), "bot", testLogger())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	base, raw, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if base.Type != protocol.TypeObs {
		t.Fatalf("type=%s want OBS", base.Type)
	}
	var got protocol.ObsMsg
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Tick != 3 || got.Self.Pos != [3]float64{1, 2, 3} {
		t.Fatalf("obs: %+v", got)
	}
}

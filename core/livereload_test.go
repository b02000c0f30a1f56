package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReloader(t *testing.T, lr LiveReloaderInterface) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(lr.Handler))

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect to WebSocket: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	return ws, func() {
		ws.Close()
		server.Close()
	}
}

func waitForClients(t *testing.T, lr *LiveReloader, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for lr.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, lr.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveReloader_ClientConnectsAndReceivesReload(t *testing.T) {
	lr := NewLiveReloader()
	ws, done := dialReloader(t, lr)
	defer done()

	lr.BroadcastReload()

	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read reload message: %v", err)
	}
	if string(msg) != reloadMessage {
		t.Errorf("expected %q message, got %q", reloadMessage, msg)
	}
}

func TestLiveReloader_TracksClients(t *testing.T) {
	lr := NewLiveReloader()
	ws, done := dialReloader(t, lr)
	defer done()

	waitForClients(t, lr.(*LiveReloader), 1)

	_ = ws.Close()
	waitForClients(t, lr.(*LiveReloader), 0)
}

func TestLiveReloader_BroadcastAfterDisconnectDoesNotPanic(t *testing.T) {
	lr := NewLiveReloader()
	ws, done := dialReloader(t, lr)
	defer done()

	_ = ws.Close()
	time.Sleep(100 * time.Millisecond)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("BroadcastReload panicked after client disconnect: %v", r)
		}
	}()

	lr.BroadcastReload()
}

func TestLiveReloader_IgnoreUpgradeError(t *testing.T) {
	lr := NewLiveReloader()

	w := httptest.NewRecorder()
	lr.Handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected HTTP 400 on upgrade failure, got %d", w.Code)
	}
	if lr.(*LiveReloader).Clients() != 0 {
		t.Error("failed upgrade should not register a client")
	}
}

func TestLiveReloader_BroadcastRemovesDeadConnection(t *testing.T) {
	lr := NewLiveReloader()
	ws, done := dialReloader(t, lr)
	defer done()

	_ = ws.Close()
	time.Sleep(100 * time.Millisecond)

	reloader := lr.(*LiveReloader)
	reloader.lock.Lock()
	reloader.clients[ws] = struct{}{}
	reloader.lock.Unlock()

	reloader.BroadcastReload()

	reloader.lock.Lock()
	_, exists := reloader.clients[ws]
	reloader.lock.Unlock()

	if exists {
		t.Errorf("expected closed connection to be removed from clients map")
	}
}

func TestInjectReloadScript_BeforeBody(t *testing.T) {
	out := string(injectReloadScript([]byte("<html><BODY>hi</BODY></html>")))

	if !strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be injected, got %q", out)
	}
	if !strings.HasSuffix(out, "</script></BODY></html>") {
		t.Errorf("expected script right before closing body, got %q", out)
	}
	if !strings.Contains(out, ReloadPath) {
		t.Errorf("expected script to reference %s", ReloadPath)
	}
}

func TestInjectReloadScript_NoBodyAppends(t *testing.T) {
	out := string(injectReloadScript([]byte("ok")))

	if !strings.HasPrefix(out, "ok<script>") || !strings.HasSuffix(out, "</script>") {
		t.Errorf("expected script appended, got %q", out)
	}
}

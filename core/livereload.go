package core

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is the websocket endpoint dev pages connect to.
const ReloadPath = "/__hello_reload"

const reloadMessage = "reload"

const writeWait = time.Second

const reloadScript = `<script>(function(){var s=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"` + ReloadPath + `");s.onmessage=function(){location.reload()};})();</script>`

type LiveReloaderInterface interface {
	BroadcastReload()
	Handler(http.ResponseWriter, *http.Request)
}

// LiveReloader tells every connected dev page to reload itself.
type LiveReloader struct {
	clients  map[*websocket.Conn]struct{}
	lock     sync.Mutex
	upgrader websocket.Upgrader
}

var NewLiveReloader = func() LiveReloaderInterface {
	return &LiveReloader{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	lr.lock.Lock()
	lr.clients[conn] = struct{}{}
	lr.lock.Unlock()

	go func() {
		defer func() {
			lr.lock.Lock()
			delete(lr.clients, conn)
			lr.lock.Unlock()
			conn.Close()
		}()

		for {
			if _, _, err := conn.NextReader(); err != nil {
				break
			}
		}
	}()
}

func (lr *LiveReloader) BroadcastReload() {
	lr.lock.Lock()
	defer lr.lock.Unlock()

	deadline := time.Now().Add(writeWait)
	for conn := range lr.clients {
		conn.SetWriteDeadline(deadline)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reloadMessage)); err != nil {
			conn.Close()
			delete(lr.clients, conn)
		}
	}
}

func (lr *LiveReloader) Clients() int {
	lr.lock.Lock()
	defer lr.lock.Unlock()
	return len(lr.clients)
}

// injectReloadScript places the reload client before the last </body>, or
// at the end when the page has none.
func injectReloadScript(html []byte) []byte {
	out := make([]byte, 0, len(html)+len(reloadScript))

	idx := bytes.LastIndex(bytes.ToLower(html), []byte("</body>"))
	if idx == -1 {
		out = append(out, html...)
		return append(out, reloadScript...)
	}

	out = append(out, html[:idx]...)
	out = append(out, reloadScript...)
	return append(out, html[idx:]...)
}

package uart

import (
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// LineHandler serves one connected line until it closes.
type LineHandler func(io.ReadWriteCloser)

// WebsocketHandler exposes the serial line over websocket. Only one
// peer may be attached at a time; further connections are closed
// immediately.
func WebsocketHandler(serve LineHandler) http.Handler {
	slot := make(chan struct{}, 1)
	return websocket.Handler(func(ws *websocket.Conn) {
		select {
		case slot <- struct{}{}:
		default:
			glog.Warningf("reject line peer %s: already attached", ws.Request().RemoteAddr)
			ws.Close()
			return
		}
		defer func() { <-slot }()
		ws.PayloadType = websocket.BinaryFrame
		glog.Infof("line attached: %s", ws.Request().RemoteAddr)
		serve(ws)
		glog.Infof("line detached: %s", ws.Request().RemoteAddr)
	})
}

// DialWebsocket connects to a line exposed by WebsocketHandler.
func DialWebsocket(url string) (io.ReadWriteCloser, error) {
	ws, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	return ws, nil
}

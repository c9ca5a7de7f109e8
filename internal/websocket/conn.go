package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is what a Client needs from a socket. Tests substitute an
// in-memory pipe.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// gorillaConn embeds the upgraded connection; only RemoteAddr differs.
type gorillaConn struct {
	*websocket.Conn
}

// NewConnectionWrapper adapts an upgraded gorilla connection.
func NewConnectionWrapper(conn *websocket.Conn) Connection {
	return gorillaConn{conn}
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

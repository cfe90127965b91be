// Package bus is the websocket chat protocol between the assistant server
// and its clients.
package bus

import (
	"log/slog"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	KindText  = "text"
	KindAudio = "audio"
	KindReply = "reply"
	KindError = "error"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Intent  string `json:"intent,omitempty"`
	// Audio carries a whole file for KindAudio; Name gives its extension.
	Audio []byte `json:"audio,omitempty"`
	Name  string `json:"name,omitempty"`
}

func Encode(m *Message) ([]byte, error) {
	return sonic.Marshal(m)
}

func Decode(data []byte) (*Message, error) {
	var m Message
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Conn wraps either side of a chat websocket.
type Conn struct {
	conn *websocket.Conn
}

func NewConn(c *websocket.Conn) *Conn { return &Conn{conn: c} }

func Dial(wsURL string) (*Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	slog.Info("Connected to bus", "url", wsURL)
	return &Conn{conn: conn}, nil
}

func (b *Conn) Read() (*Message, error) {
	_, msg, err := b.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return Decode(msg)
}

func (b *Conn) Write(m *Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Conn) Close() error {
	_ = b.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return b.conn.Close()
}

// IsClosed reports whether err is an orderly or abrupt peer close.
func IsClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}

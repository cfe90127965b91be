package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketPath stays short: unix socket paths are limited to ~104 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, h Handler) string {
	t.Helper()
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, path, h) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		c, err := net.Dial("unix", path)
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return path
}

func TestSendReceive(t *testing.T) {
	path := startServer(t, func(_ context.Context, msg ControlMessage) ControlReply {
		switch msg.Cmd {
		case CmdSay:
			return ControlReply{OK: true, Intent: "greet", Reply: "echo: " + msg.Text}
		case CmdHistory:
			return ControlReply{OK: true, Entries: []Entry{{Speaker: "User", Message: fmt.Sprint(msg.Limit)}}}
		}
		return Failure(errors.New("unknown command"))
	})

	reply, err := Send(path, ControlMessage{Cmd: CmdSay, Text: "hello"}, time.Second)
	require.NoError(t, err)
	assert.True(t, reply.OK)
	assert.Equal(t, "echo: hello", reply.Reply)

	reply, err = Send(path, ControlMessage{Cmd: CmdHistory, Limit: 1}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Speaker: "User", Message: "1"}}, reply.Entries)

	reply, err = Send(path, ControlMessage{Cmd: "dance"}, time.Second)
	assert.EqualError(t, err, "unknown command")
	assert.False(t, reply.OK)
}

func TestSendNoServer(t *testing.T) {
	_, err := Send(socketPath(t), ControlMessage{Cmd: CmdSay}, time.Second)
	assert.Error(t, err)
}

func TestBadRequest(t *testing.T) {
	path := startServer(t, func(context.Context, ControlMessage) ControlReply {
		return ControlReply{OK: true}
	})

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "bad request")
}

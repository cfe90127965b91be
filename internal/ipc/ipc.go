// Package ipc is the local control channel of the daemon: one JSON request
// and one JSON reply per unix-socket connection.
package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"

	"github.com/bytedance/sonic"
)

const DefaultSocketPath = "/tmp/assistant.sock"

const (
	CmdSay     = "say"
	CmdListen  = "listen"
	CmdHistory = "history"
)

type ControlMessage struct {
	Cmd   string `json:"cmd"`
	Text  string `json:"text,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type Entry struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

type ControlReply struct {
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Intent     string  `json:"intent,omitempty"`
	Reply      string  `json:"reply,omitempty"`
	Entries    []Entry `json:"entries,omitempty"`
}

func Failure(err error) ControlReply {
	return ControlReply{Error: err.Error()}
}

type Handler func(ctx context.Context, msg ControlMessage) ControlReply

// Serve accepts connections on socketPath until ctx is done.
func Serve(ctx context.Context, socketPath string, handler Handler) error {
	_ = os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer os.Remove(socketPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info("Control socket ready", "path", socketPath)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Warn("Accept failed", "err", err)
			continue
		}
		go handleConn(ctx, conn, handler)
	}
}

func handleConn(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		log.Debug("Control read failed", "err", err)
		return
	}

	var msg ControlMessage
	var reply ControlReply
	if err := sonic.Unmarshal(line, &msg); err != nil {
		reply = Failure(fmt.Errorf("bad request: %w", err))
	} else {
		reply = handler(ctx, msg)
	}

	if err := writeLine(conn, reply); err != nil {
		log.Debug("Control write failed", "err", err)
	}
}

// Send issues one command and waits up to timeout for the reply; zero means
// no deadline.
func Send(socketPath string, msg ControlMessage, timeout time.Duration) (ControlReply, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	if err := writeLine(conn, msg); err != nil {
		return ControlReply{}, fmt.Errorf("send: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return ControlReply{}, fmt.Errorf("receive: %w", err)
	}

	var reply ControlReply
	if err := sonic.Unmarshal(line, &reply); err != nil {
		return ControlReply{}, fmt.Errorf("decode reply: %w", err)
	}
	if !reply.OK && reply.Error != "" {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}

func writeLine(conn net.Conn, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = conn.Write(append(data, '\n'))
	return err
}

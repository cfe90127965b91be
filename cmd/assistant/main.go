package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"

	"assistant/internal/bus"
	"assistant/internal/nlu"
)

func main() {
	wsURL := cli.StringP("url", "u", "", "Websocket URL of the assistant (default $BUS_URL or ws://127.0.0.1:8501/ws)")
	name := cli.StringP("name", "n", "terminal", "Name this client reports to the server")
	cli.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})))

	url := *wsURL
	if url == "" {
		url = os.Getenv("BUS_URL")
	}
	if url == "" {
		url = "ws://127.0.0.1:8501/ws"
	}

	conn, err := bus.Dial(url)
	if err != nil {
		slog.Error("failed to connect to assistant", "url", url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := chat(conn, *name, os.Stdin, os.Stdout); err != nil {
		slog.Error("chat ended", "error", err)
		os.Exit(1)
	}
}

// chat reads one command per line; "@path" sends an audio file instead of
// text. It returns when input ends or the assistant answers a stop intent.
func chat(conn *bus.Conn, name string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type a command (\"@file.wav\" uploads audio, Ctrl-D quits).")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		msg, err := request(name, line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if err := conn.Write(msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}

		resp, err := conn.Read()
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if resp.Kind == bus.KindError {
			fmt.Fprintln(out, "!", resp.Content)
			continue
		}
		fmt.Fprintln(out, "Assistant:", resp.Content)

		if resp.Intent == nlu.Stop.String() {
			return nil
		}
	}
}

func request(name, line string) (*bus.Message, error) {
	path, isFile := strings.CutPrefix(line, "@")
	if !isFile {
		return &bus.Message{From: name, To: "assistant", Kind: bus.KindText, Content: line}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &bus.Message{
		From:  name,
		To:    "assistant",
		Kind:  bus.KindAudio,
		Audio: data,
		Name:  filepath.Base(path),
	}, nil
}

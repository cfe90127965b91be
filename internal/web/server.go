// Package web serves the assistant page, its form endpoints, a JSON history
// view and the websocket chat used by the terminal client.
package web

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"assistant/internal/assistant"
	"assistant/internal/bus"
	"assistant/internal/session"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

const (
	selfName          = "assistant"
	defaultMaxUpload  = 25 << 20
	shutdownGrace     = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Options struct {
	DisplayCap     int
	MaxUploadBytes int64
}

type Server struct {
	assistant *assistant.Assistant
	session   *session.Session
	opts      Options
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
}

func New(a *assistant.Assistant, sess *session.Session, opts Options) *Server {
	if opts.DisplayCap <= 0 {
		opts.DisplayCap = session.DefaultDisplayCap
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}

	s := &Server{
		assistant: a,
		session:   sess,
		opts:      opts,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /command", s.handleCommand)
	s.mux.HandleFunc("POST /audio", s.handleAudio)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pageView struct {
	SpeechAvailable bool
	Response        string
	Heard           string
	Warning         string
	Error           string
	Cap             int
	History         []session.Entry
}

func (s *Server) render(w http.ResponseWriter, v pageView) {
	v.SpeechAvailable = s.assistant.SpeechAvailable()
	v.Cap = s.opts.DisplayCap
	v.History = s.session.Tail(s.opts.DisplayCap)

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, v); err != nil {
		log.Error("Render failed", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, pageView{})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	reply, err := s.assistant.HandleText(s.session, r.FormValue("command"))
	if err != nil {
		s.render(w, pageView{Warning: assistant.UserMessage(err)})
		return
	}
	s.render(w, pageView{Response: reply.Response})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.render(w, pageView{Warning: "Please choose an audio file to upload."})
		return
	}
	defer file.Close()

	reply, err := s.assistant.HandleAudio(r.Context(), s.session, file, header.Filename)
	switch {
	case err == nil:
		s.render(w, pageView{Heard: reply.Transcript, Response: reply.Response})
	case errors.Is(err, assistant.ErrNoSpeech):
		s.render(w, pageView{Warning: assistant.UserMessage(err)})
	default:
		log.Warn("Audio submission failed", "file", header.Filename, "err", err)
		s.render(w, pageView{Error: assistant.UserMessage(err)})
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.DisplayCap
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	data, err := sonic.Marshal(struct {
		Session string          `json:"session"`
		Total   int             `json:"total"`
		Entries []session.Entry `json:"entries"`
	}{
		Session: s.session.ID,
		Total:   s.session.Len(),
		Entries: s.session.Tail(limit),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	conn := bus.NewConn(c)
	defer c.Close()

	log.Info("Chat client connected", "remote", r.RemoteAddr)
	for {
		in, err := conn.Read()
		if err != nil {
			if !bus.IsClosed(err) {
				log.Warn("Chat read failed", "err", err)
			}
			return
		}

		out := s.answer(r.Context(), in)
		if err := conn.Write(out); err != nil {
			log.Warn("Chat write failed", "err", err)
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, in *bus.Message) *bus.Message {
	out := &bus.Message{From: selfName, To: in.From, Kind: bus.KindReply}

	var (
		reply assistant.Reply
		err   error
	)
	switch in.Kind {
	case bus.KindText, "":
		reply, err = s.assistant.HandleText(s.session, in.Content)
	case bus.KindAudio:
		reply, err = s.assistant.HandleAudio(ctx, s.session, bytes.NewReader(in.Audio), in.Name)
	default:
		out.Kind = bus.KindError
		out.Content = "unsupported message kind " + strconv.Quote(in.Kind)
		return out
	}

	if err != nil {
		out.Kind = bus.KindError
		out.Content = assistant.UserMessage(err)
		return out
	}
	out.Content = reply.Response
	out.Intent = reply.Intent.String()
	return out
}

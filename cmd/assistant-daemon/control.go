package main

import (
	"context"
	"errors"
	"fmt"

	log "log/slog"

	"assistant/internal/assistant"
	"assistant/internal/audio"
	"assistant/internal/config"
	"assistant/internal/ipc"
	"assistant/internal/notify"
	"assistant/internal/session"
	"assistant/internal/tts"
	"assistant/pkg/stt"
)

type daemon struct {
	cfg       config.Config
	assistant *assistant.Assistant
	session   *session.Session
	recorder  *audio.Recorder // nil without --mic
	speaker   *tts.Speaker    // nil without --speak
}

func (d *daemon) handleControl(ctx context.Context, msg ipc.ControlMessage) ipc.ControlReply {
	switch msg.Cmd {
	case ipc.CmdSay:
		reply, err := d.assistant.HandleText(d.session, msg.Text)
		if err != nil {
			return ipc.Failure(errors.New(assistant.UserMessage(err)))
		}
		return ok(reply)

	case ipc.CmdListen:
		return d.listen(ctx)

	case ipc.CmdHistory:
		limit := msg.Limit
		if limit <= 0 {
			limit = d.cfg.History.DisplayCap
		}
		var entries []ipc.Entry
		for _, e := range d.session.Tail(limit) {
			entries = append(entries, ipc.Entry{Speaker: string(e.Speaker), Message: e.Message})
		}
		return ipc.ControlReply{OK: true, Entries: entries}

	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Failure(fmt.Errorf("unknown command %q", msg.Cmd))
	}
}

func (d *daemon) listen(ctx context.Context) ipc.ControlReply {
	if d.recorder == nil {
		return ipc.Failure(errors.New("microphone disabled; start the daemon with --mic"))
	}

	if err := notify.Beep(d.cfg.Audio.Beep); err != nil {
		log.Warn("Failed to play cue", "err", err)
	}

	log.Info("Starting listening")

	ctx, cancel := context.WithTimeout(ctx, listenTimeout)
	defer cancel()

	pcm, err := d.recorder.Record(ctx)
	if err != nil {
		log.Error("Failed to record", "err", err)
		return ipc.Failure(err)
	}

	log.Info("Recorded", "samples", len(pcm))

	reply, err := d.assistant.HandleVoice(ctx, d.session, pcm)
	if err != nil {
		log.Error("Failed to handle capture", "err", err)
		if errors.Is(err, stt.ErrUnavailable) || errors.Is(err, assistant.ErrNoSpeech) || errors.Is(err, assistant.ErrNoWake) {
			return ipc.ControlReply{Error: assistant.UserMessage(err), Transcript: reply.Transcript}
		}
		return ipc.Failure(err)
	}

	if d.speaker != nil {
		if err := d.speaker.Speak(reply.Response); err != nil {
			log.Error("Failed to voice out", "err", err)
		}
	}
	return ok(reply)
}

func ok(r assistant.Reply) ipc.ControlReply {
	return ipc.ControlReply{
		OK:         true,
		Transcript: r.Transcript,
		Intent:     r.Intent.String(),
		Reply:      r.Response,
	}
}

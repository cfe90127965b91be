package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	log "log/slog"

	"assistant/internal/assistant"
	"assistant/internal/audio"
	"assistant/internal/config"
	"assistant/internal/ipc"
	"assistant/internal/nlu"
	"assistant/internal/proxy"
	"assistant/internal/session"
	"assistant/internal/tts"
	"assistant/internal/web"
	"assistant/pkg/stt"
	"assistant/pkg/stt/whispercpp"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

const listenTimeout = 60 * time.Second

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgFile := cli.StringP("config", "c", "", "YAML config file (defaults built in)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	addr := cli.StringP("addr", "a", "", "Web listen address (overrides config)")
	mic := cli.BoolP("mic", "m", false, "Enable microphone capture for the listen command")
	speak := cli.BoolP("speak", "s", false, "Speak replies to microphone captures")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("No env file", "path", *envFile)
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)
	if *addr != "" {
		cfg.Web.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid config", "err", err)
		os.Exit(1)
	}

	ncfg, _ := cfg.Classifier()
	classifier, err := nlu.NewClassifier(ncfg)
	if err != nil {
		log.Error("Failed to build classifier", "err", err)
		os.Exit(1)
	}
	dispatcher, err := nlu.NewDispatcher(time.Now)
	if err != nil {
		log.Error("Failed to build dispatcher", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded classifier", "threshold", classifier.Threshold())

	transcriber := loadTranscriber(cfg)
	defer transcriber.Close()

	asst, err := assistant.New(assistant.Config{
		Classifier:  classifier,
		Dispatcher:  dispatcher,
		Transcriber: transcriber,
		STTOptions:  cfg.STTOptions(),
		Wake:        cfg.Wake(),
		MaxSamples:  cfg.MaxSamples(),
	})
	if err != nil {
		log.Error("Failed to build assistant", "err", err)
		os.Exit(1)
	}

	sess := session.New()
	log.Info("Session started", "id", sess.ID)

	var rec *audio.Recorder
	if *mic {
		if !asst.SpeechAvailable() {
			log.Warn("Microphone requested but speech recognition is unavailable")
		} else {
			rec = audio.NewRecorder(audio.DefaultRecorderConfig())
			if err := rec.Init(); err != nil {
				log.Error("Failed to init audio", "err", err)
				os.Exit(1)
			}
			defer rec.Close()
			log.Debug("Loaded recorder")
		}
	}

	d := &daemon{
		cfg:       cfg,
		assistant: asst,
		session:   sess,
		recorder:  rec,
	}
	if *speak {
		d.speaker = &tts.Speaker{Voice: cfg.Audio.Voice}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(asst, sess, web.Options{
		DisplayCap:     cfg.History.DisplayCap,
		MaxUploadBytes: cfg.Web.MaxUploadBytes,
	})

	log.Info("Boot up - successful")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Web.Addr) })
	g.Go(func() error { return ipc.Serve(gctx, cfg.IPC.Socket, d.handleControl) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Server failed", "err", err)
		os.Exit(1)
	}
	log.Info("Shut down")
}

// loadTranscriber never fails: a missing backend only disables audio input.
func loadTranscriber(cfg config.Config) stt.Transcriber {
	switch cfg.STT.Backend {
	case config.BackendWhisper:
		w, err := whispercpp.New(cfg.STT.Model)
		if err != nil {
			log.Warn("Whisper model unavailable, audio input disabled", "model", cfg.STT.Model, "err", err)
			return stt.Disabled{}
		}
		log.Debug("Loaded whisper", "model", cfg.STT.Model)
		return w

	case config.BackendOpenAI:
		httpClient, err := proxy.NewSocksClient(cfg.Proxy)
		if err != nil {
			log.Warn("Failed to dial socks proxy, audio input disabled", "proxy", cfg.Proxy, "err", err)
			return stt.Disabled{}
		}
		t, err := stt.NewOpenAI(os.Getenv("OPENAI_API_KEY"), httpClient, cfg.STT.OpenAIModel)
		if err != nil {
			log.Warn("OpenAI transcription unavailable, audio input disabled", "err", err)
			return stt.Disabled{}
		}
		log.Debug("Loaded OpenAI transcription", "model", cfg.STT.OpenAIModel)
		return t
	}

	log.Warn("Speech recognition disabled by config")
	return stt.Disabled{}
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/glyphbot/glyph/internal/auditing"
	"github.com/glyphbot/glyph/internal/bot"
	"github.com/glyphbot/glyph/internal/botlist"
	"github.com/glyphbot/glyph/internal/config"
	"github.com/glyphbot/glyph/internal/conversation"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/haste"
	"github.com/glyphbot/glyph/internal/lookup"
	"github.com/glyphbot/glyph/internal/messaging"
	"github.com/glyphbot/glyph/internal/nlu"
	"github.com/glyphbot/glyph/internal/quickview"
	"github.com/glyphbot/glyph/internal/router"
	"github.com/glyphbot/glyph/internal/skills"
	"github.com/glyphbot/glyph/internal/telemetry"
)

var logLevel = new(slog.LevelVar)

func runBot() {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Protocol:    cfg.Telemetry.Protocol,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Headers:     cfg.Telemetry.Headers,
	})
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		slog.Error("discord session setup failed", "error", err)
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	api := messaging.NewSession(session)
	messenger := messaging.NewOrchestrator(api)
	configs := guildconfig.NewProvider(api)
	conv := conversation.NewState()
	auditor := auditing.New(messenger)

	nluClient := nlu.NewClient(cfg.NLU.Token, cfg.NLU.Endpoint)

	registry := skills.NewRegistry()
	guards := skills.NewGuards(messenger)
	set := skills.NewSet(messenger, configs,
		lookup.NewWikiClient(),
		lookup.NewRedditClient(cfg.Lookup.RedditUserAgent),
		haste.NewClient(cfg.Lookup.HasteEndpoint))
	set.RegisterAll(registry, guards)

	intentRouter := router.New(registry, conv, messenger,
		time.Duration(cfg.RatelimitSeconds)*time.Second)

	dispatcher := bot.NewDispatcher(bot.Options{
		Messenger: messenger,
		Router:    intentRouter,
		NLU:       nluClient,
		Configs:   configs,
		Conv:      conv,
		Auditor:   auditor,
		FA:        quickview.NewFAClient(cfg.Lookup.FAExportEndpoint),
		Picarto:   quickview.NewPicartoClient(""),
		Status:    cfg.Discord.Status,
	})
	dispatcher.Attach(session)

	if err := session.Open(); err != nil {
		slog.Error("discord gateway connection failed", "error", err)
		os.Exit(1)
	}
	defer session.Close()
	slog.Info("glyph started", "version", Version)

	g, gctx := errgroup.WithContext(ctx)

	reporter := botlist.New(cfg.Botlist.URL, cfg.Botlist.Token, cfg.Botlist.Schedule, func() int {
		return len(session.State.Guilds)
	})
	g.Go(func() error { return reporter.Run(gctx) })

	g.Go(func() error {
		err := config.Watch(gctx, cfgPath, func(fresh *config.Config) {
			logLevel.Set(parseLogLevel(fresh.Log.Level))
		})
		if err != nil && gctx.Err() == nil {
			slog.Warn("config watcher stopped", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Error("run loop ended", "error", err)
	}
	slog.Info("glyph shutting down")
}

func setupLogging(cfg *config.Config) {
	logLevel.Set(parseLogLevel(cfg.Log.Level))
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

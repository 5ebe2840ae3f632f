package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/chunker"
	"supportbot/internal/config"
	"supportbot/internal/embedding"
	"supportbot/internal/knowledge"
	"supportbot/internal/llm"
	"supportbot/internal/vectorstore"
)

// app lazily assembles the components a command needs. Commands that only
// read analytics never touch the embedder or the LLM provider.
type app struct {
	cfg   *config.AppConfig
	debug bool

	store     *vectorstore.Store
	analytics *analytics.Logger
	backend   llm.Backend
	bot       *chat.Bot
}

func (a *app) loadConfig(path string, debug bool) error {
	var err error
	if path == "" {
		a.cfg, _, err = config.LoadDefault()
	} else {
		a.cfg, err = config.Load(path)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.debug = debug
	setupLogging(os.Stderr, a.cfg.LogLevel, debug)
	return nil
}

func setupLogging(w io.Writer, level string, debug bool) {
	lvl := parseLevel(level)
	if debug {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}

func parseLevel(level string) slog.Level {
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

// logToFile redirects logging into the data directory so it does not draw over the TUI.
func (a *app) logToFile() (io.Closer, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(a.cfg.DataDir, "supportbot.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	setupLogging(f, a.cfg.LogLevel, a.debug)
	return f, nil
}

// sources lists the FAQ file followed by the documentation files.
func (a *app) sources() []string {
	return append([]string{a.cfg.Knowledge.FAQPath}, a.cfg.Knowledge.DocumentationPaths...)
}

func (a *app) knowledgeBase(ctx context.Context) (*vectorstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	emb, err := embedding.New(ctx, a.cfg.Embedder)
	if err != nil {
		return nil, err
	}
	ch := chunker.NewSentenceChunker(a.cfg.Chunker.SentencesPerChunk, a.cfg.Chunker.OverlapSentences)
	a.store = vectorstore.New(emb, a.cfg.Knowledge.IndexPath, a.cfg.Knowledge.DocumentsPath,
		vectorstore.WithMinScore(a.cfg.Retrieval.MinScore),
		vectorstore.WithLoader(knowledge.NewLoader(ch)),
	)
	slog.Debug("knowledge base configured", "embedder", emb.Name(), "index", a.cfg.Knowledge.IndexPath)
	return a.store, nil
}

func (a *app) analyticsLogger() (*analytics.Logger, error) {
	if a.analytics != nil {
		return a.analytics, nil
	}
	sink, err := analytics.OpenSink(a.cfg.Analytics.Backend, a.cfg.Analytics.Path)
	if err != nil {
		return nil, err
	}
	a.analytics = analytics.NewLogger(sink)
	return a.analytics, nil
}

// chatBot returns the ready-to-use bot: provider credentials checked, analytics
// opened and the knowledge base loaded or built.
func (a *app) chatBot(ctx context.Context) (*chat.Bot, error) {
	if a.bot != nil {
		return a.bot, nil
	}
	backend, err := llm.NewBackend(ctx, a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	store, err := a.knowledgeBase(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := a.analyticsLogger()
	if err != nil {
		return nil, err
	}
	bot := chat.New(store, a.newSession(), logger,
		chat.WithTopK(a.cfg.Retrieval.TopK),
		chat.WithSources(a.sources()...),
	)
	if err := bot.InitializeKnowledgeBase(ctx); err != nil {
		return nil, err
	}
	slog.Info("assistant ready", "provider", backend.Name(), "model", a.cfg.LLM.Model, "documents", store.Len())
	a.bot = bot
	return bot, nil
}

func (a *app) newSession() *llm.Session {
	return llm.NewSession(a.backend, llm.SessionOptions(a.cfg.LLM)...)
}

// forkBot starts a separate conversation over the shared knowledge base.
func (a *app) forkBot() *chat.Bot {
	return a.bot.Fork(a.newSession())
}

func (a *app) close() {
	if a.analytics != nil {
		if err := a.analytics.Close(); err != nil {
			slog.Warn("closing analytics", "error", err)
		}
	}
}

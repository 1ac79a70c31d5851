// Command assistant runs the request pipeline from the terminal.
//
// Chat mode streams the response for one message:
//
//	assistant -message "explain src/router"
//
// Ingest mode indexes a repository into the retrieval store:
//
//	assistant -repo https://github.com/acme/widget
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	utcp "github.com/universal-tool-calling-protocol/go-utcp"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/audit"
	"github.com/Protocol-Lattice/go-assistant/src/config"
	"github.com/Protocol-Lattice/go-assistant/src/ingest"
	applog "github.com/Protocol-Lattice/go-assistant/src/log"
	"github.com/Protocol-Lattice/go-assistant/src/memory"
	"github.com/Protocol-Lattice/go-assistant/src/memory/embed"
	"github.com/Protocol-Lattice/go-assistant/src/memory/store"
	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/router"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

var (
	flagMessage = flag.String("message", "", "User message to answer")
	flagSession = flag.String("session", "", "Session ID for audit correlation")
	flagRepo    = flag.String("repo", "", "Repository path or URL to ingest instead of chatting")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := applog.New(applog.Config{
		Level:  parseLevel(cfg.LogLevel),
		Format: applog.Format(cfg.LogFormat),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("assistant failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	retriever := memory.NewRetriever(st, embed.AutoEmbedder(logger), cfg.Retrieval.TopK, logger)
	defer func() {
		if err := retriever.Close(context.Background()); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	if *flagRepo != "" {
		ig := ingest.NewIngestor(logger.With("component", "ingest"))
		ig.MaxFileBytes = cfg.IngestMaxFileBytes
		res, err := ig.IngestRepo(ctx, retriever, *flagRepo)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", *flagRepo, err)
		}
		fmt.Printf("indexed %d files (%d skipped, %d failed) in %s\n",
			res.FilesIndexed, res.FilesSkipped, res.FilesFailed, res.Duration.Round(time.Millisecond))
		return nil
	}

	if *flagMessage == "" {
		return errors.New("provide -message or -repo")
	}

	fast, err := models.NewProvider(ctx, cfg.Fast.Provider, cfg.Fast.Model)
	if err != nil {
		return fmt.Errorf("fast backend: %w", err)
	}
	deliberate, err := models.NewProvider(ctx, cfg.Deliberate.Provider, cfg.Deliberate.Model)
	if err != nil {
		return fmt.Errorf("deliberate backend: %w", err)
	}
	rt := router.New(fast, deliberate, router.Config{
		TokenThreshold: cfg.Router.TokenThreshold,
		Keywords:       routerKeywords(cfg),
		Encoding:       cfg.Router.Encoding,
	})

	ws, err := tools.NewWorkspace(cfg.Workspace)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	catalog := tools.NewStaticCatalog([]tools.Tool{
		tools.NewReadFileTool(ws),
		tools.NewProposeEditTool(ws),
	})
	if cfg.UTCPProviders != "" {
		if err := registerUTCPTools(ctx, cfg, catalog, logger); err != nil {
			logger.Warn("utcp tools unavailable", "error", err)
		}
	}

	sink, err := openAuditSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(context.Background()); err != nil {
			logger.Warn("audit close failed", "error", err)
		}
	}()

	loop := assistant.NewLoop(rt, catalog, logger.With("component", "loop"))
	engine := assistant.NewEngine(loop, retriever, logger.With("component", "engine"),
		assistant.WithAudit(sink),
		assistant.WithUsage(assistant.NewCounters()),
	)

	events, err := engine.Run(ctx, assistant.Input{
		UserMessage: *flagMessage,
		SessionID:   *flagSession,
	})
	if err != nil {
		return err
	}
	for ev := range events {
		switch ev.Type {
		case assistant.EventToken:
			fmt.Print(ev.Content)
		case assistant.EventTool:
			fmt.Printf("\n[tool] %s\n", ev.Content)
		case assistant.EventDone:
			fmt.Println()
		case assistant.EventError:
			return ev.Err
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.VectorStore, error) {
	r := cfg.Retrieval
	switch r.Store {
	case "postgres":
		return store.NewPostgresStore(ctx, r.PostgresDSN, r.Dimension)
	case "mongo":
		return store.NewMongoStore(ctx, r.MongoURI, r.MongoDB, "context_records")
	case "neo4j":
		return store.NewNeo4jStore(ctx, r.Neo4jURI, r.Neo4jUser, r.Neo4jPass, "neo4j")
	case "qdrant":
		qs := store.NewQdrantStore(r.QdrantURL, r.QdrantCollection, r.QdrantAPIKey, r.Dimension)
		if err := qs.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("qdrant schema: %w", err)
		}
		return qs, nil
	default:
		return store.NewInMemoryStore(), nil
	}
}

func openAuditSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (audit.Sink, error) {
	switch cfg.Audit.Sink {
	case "mongo":
		inner, err := audit.NewMongoSink(ctx, cfg.Audit.MongoURI, cfg.Audit.MongoDB, cfg.Audit.MongoColl, logger)
		if err != nil {
			return nil, fmt.Errorf("audit sink: %w", err)
		}
		return audit.NewAsync(inner, cfg.Audit.QueueDepth), nil
	case "none":
		return audit.NopSink{}, nil
	default:
		return audit.NewLogSink(logger.With("component", "audit")), nil
	}
}

func registerUTCPTools(ctx context.Context, cfg *config.Config, catalog *tools.StaticCatalog, logger *slog.Logger) error {
	client, err := utcp.NewUTCPClient(ctx, &utcp.UtcpClientConfig{ProvidersFilePath: cfg.UTCPProviders}, nil, nil)
	if err != nil {
		return fmt.Errorf("utcp client: %w", err)
	}
	discovered, err := tools.DiscoverUTCPTools(client, "", 64)
	if err != nil {
		return err
	}
	for _, tool := range discovered {
		if err := catalog.Register(tool); err != nil {
			logger.Warn("skipping utcp tool", "tool", tool.Spec().Name, "error", err)
		}
	}
	logger.Info("utcp tools registered", "count", len(discovered))
	return nil
}

func routerKeywords(cfg *config.Config) []string {
	if len(cfg.Router.Keywords) > 0 {
		return cfg.Router.Keywords
	}
	return router.DefaultConfig().Keywords
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

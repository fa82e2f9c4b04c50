package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockfinder/internal/article"
	"stockfinder/internal/config"
	"stockfinder/internal/embedding"
	"stockfinder/internal/llm"
	"stockfinder/internal/logger"
	"stockfinder/internal/market"
	"stockfinder/internal/service"
	"stockfinder/internal/vectorstore"
	"stockfinder/internal/vectorstore/memory"
	"stockfinder/internal/vectorstore/pinecone"
	"stockfinder/internal/vectorstore/qdrant"
)

type app struct {
	pipelines *service.Pipelines
	log       zerolog.Logger
	logCloser io.Closer
}

func (a *app) Close() error { return a.logCloser.Close() }

// buildApp assembles every component once. Credentials are read from the
// environment here but only checked when a client first needs them.
func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	if log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		closer.Close()
		return nil, err
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "pinecone", "":
		st = pinecone.NewStorage(pinecone.Config{
			ControlURL: cfg.VectorStore.Pinecone.ControlURL,
			Index:      cfg.VectorStore.Pinecone.Index,
			Host:       cfg.VectorStore.Pinecone.Host,
			APIKeyEnv:  cfg.VectorStore.Pinecone.APIKeyEnv,
			Timeout:    time.Duration(cfg.VectorStore.Pinecone.TimeoutSecs) * time.Second,
		})
	case "qdrant":
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKeyEnv:  cfg.VectorStore.Qdrant.APIKeyEnv,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory":
		docs, err := memory.LoadDocuments(cfg.VectorStore.Memory.SeedFile)
		if err != nil {
			closer.Close()
			return nil, err
		}
		if f, ok := emb.(embedding.Fitter); ok {
			corpus := make([]string, 0, len(docs))
			for _, d := range docs {
				corpus = append(corpus, d.Text)
			}
			if err := f.Fit(corpus); err != nil {
				closer.Close()
				return nil, fmt.Errorf("fit embedder: %w", err)
			}
		}
		mem := memory.NewStorage(0)
		if err := mem.Index(ctx, cfg.VectorStore.Namespace, emb, docs); err != nil {
			closer.Close()
			return nil, fmt.Errorf("index seed documents: %w", err)
		}
		log.Info().Int("documents", len(docs)).Str("namespace", cfg.VectorStore.Namespace).Msg("memory store seeded")
		st = mem
	default:
		closer.Close()
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	chat := llm.NewClient(llm.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    os.Getenv(cfg.LLM.APIKeyEnv),
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})

	qa := service.NewQAService(
		emb, st,
		llm.NewCompleter(chat, cfg.LLM.AnswerModel),
		cfg.VectorStore.Namespace, cfg.VectorStore.TopK,
		log.With().Str("component", "qa").Logger(),
	)
	pipelines := service.NewPipelines(
		article.NewFetcher(article.Config{
			UserAgent: cfg.Article.UserAgent,
			Timeout:   time.Duration(cfg.Article.TimeoutSecs) * time.Second,
		}),
		llm.NewExtractor(chat, cfg.LLM.ExtractionModel),
		market.NewFetcher(cfg.Market.LookbackDays, log.With().Str("component", "market").Logger()),
		qa,
		cfg.Article.ExcerptWords,
		log.With().Str("component", "pipelines").Logger(),
	)

	log.Info().
		Str("embedder", emb.Name()).
		Str("vector_store", cfg.VectorStore.Type).
		Str("namespace", cfg.VectorStore.Namespace).
		Msg("stockfinder ready")
	return &app{pipelines: pipelines, log: log, logCloser: closer}, nil
}

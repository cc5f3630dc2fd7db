package main

import (
	"context"
	"fmt"

	pc "github.com/pinecone-io/go-pinecone/v2/pinecone"
	qc "github.com/qdrant/go-client/qdrant"
	wv "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/adapter"
	"github.com/kailas-cloud/vecspace/internal/adapter/pinecone"
	"github.com/kailas-cloud/vecspace/internal/adapter/qdrant"
	"github.com/kailas-cloud/vecspace/internal/adapter/weaviate"
	"github.com/kailas-cloud/vecspace/internal/config"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	healthuc "github.com/kailas-cloud/vecspace/internal/usecase/health"
)

// connectedBackends holds the clients opened at startup.
type connectedBackends struct {
	checks  map[string]healthuc.Checker
	closers []func() error
}

func (b *connectedBackends) Close() {
	for _, c := range b.closers {
		_ = c()
	}
}

// connectBackends opens a client for every backend with a configured host
// and registers its executor. Host-executed backends (chroma, lancedb,
// grafeo) have no server-side client and remain translate-only.
func connectBackends(cfg config.BackendsConfig, registry *adapter.Registry, logger *zap.Logger) (*connectedBackends, error) {
	out := &connectedBackends{checks: make(map[string]healthuc.Checker)}

	if q := cfg.Qdrant; q.Host != "" {
		client, err := qc.NewClient(&qc.Config{
			Host:   q.Host,
			Port:   q.Port,
			APIKey: q.APIKey,
			UseTLS: q.UseTLS,
		})
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("qdrant client: %w", err)
		}
		out.closers = append(out.closers, client.Close)
		if err := registry.RegisterExecutor(backend.Qdrant, qdrant.NewExecutor(client, q.Collection)); err != nil {
			out.Close()
			return nil, fmt.Errorf("register qdrant executor: %w", err)
		}
		out.checks[backend.Qdrant] = healthuc.CheckerFunc(func(ctx context.Context) error {
			_, err := client.HealthCheck(ctx)
			return err
		})
		logger.Info("Qdrant executor registered",
			zap.String("host", q.Host),
			zap.Int("port", q.Port),
			zap.String("collection", q.Collection),
		)
	}

	if p := cfg.Pinecone; p.Host != "" {
		client, err := pc.NewClient(pc.NewClientParams{ApiKey: p.APIKey})
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("pinecone client: %w", err)
		}
		idx, err := client.Index(pc.NewIndexConnParams{Host: p.Host, Namespace: p.Namespace})
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("pinecone index %s: %w", p.Host, err)
		}
		out.closers = append(out.closers, idx.Close)
		if err := registry.RegisterExecutor(backend.Pinecone, pinecone.NewExecutor(idx, p.Namespace, logger)); err != nil {
			out.Close()
			return nil, fmt.Errorf("register pinecone executor: %w", err)
		}
		out.checks[backend.Pinecone] = healthuc.CheckerFunc(func(ctx context.Context) error {
			_, err := idx.DescribeIndexStats(ctx)
			return err
		})
		logger.Info("Pinecone executor registered",
			zap.String("host", p.Host),
			zap.String("namespace", p.Namespace),
		)
	}

	if w := cfg.Weaviate; w.Host != "" {
		wcfg := wv.Config{Host: w.Host, Scheme: w.Scheme}
		if w.APIKey != "" {
			wcfg.AuthConfig = auth.ApiKey{Value: w.APIKey}
		}
		client, err := wv.NewClient(wcfg)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("weaviate client: %w", err)
		}
		if err := registry.RegisterExecutor(backend.Weaviate, weaviate.NewClientExecutor(client)); err != nil {
			out.Close()
			return nil, fmt.Errorf("register weaviate executor: %w", err)
		}
		out.checks[backend.Weaviate] = healthuc.CheckerFunc(func(ctx context.Context) error {
			ready, err := client.Misc().ReadyChecker().Do(ctx)
			if err != nil {
				return err
			}
			if !ready {
				return fmt.Errorf("weaviate not ready")
			}
			return nil
		})
		logger.Info("Weaviate executor registered",
			zap.String("host", w.Host),
			zap.String("scheme", w.Scheme),
		)
	}

	return out, nil
}

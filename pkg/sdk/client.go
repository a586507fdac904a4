package lodestone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/db"
	dbRedis "github.com/lodestone-search/lodestone/internal/db/redis"
	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
	auditrepo "github.com/lodestone-search/lodestone/internal/repository/audit"
	entityrepo "github.com/lodestone-search/lodestone/internal/repository/entity"
	searchrepo "github.com/lodestone-search/lodestone/internal/repository/search"
	audituc "github.com/lodestone-search/lodestone/internal/usecase/audit"
	entityuc "github.com/lodestone-search/lodestone/internal/usecase/entity"
	searchuc "github.com/lodestone-search/lodestone/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, substituted in tests.
type entityUseCase interface {
	Create(ctx context.Context, t domain.Tenant, entityType string, in entityuc.CreateInput) (domain.Entity, []domain.Event, error)
	Get(ctx context.Context, t domain.Tenant, entityType, id string) (domain.Entity, error)
	Update(ctx context.Context, t domain.Tenant, entityType, id string, in entityuc.UpdateInput) (domain.Entity, []domain.Event, error)
	Delete(ctx context.Context, t domain.Tenant, entityType, id string) ([]domain.Event, error)
	BulkCreate(ctx context.Context, t domain.Tenant, entityType string, inputs []entityuc.CreateInput) ([]entityuc.ItemResult, []domain.Event, error)
}

type searchUseCase interface {
	Search(ctx context.Context, t domain.Tenant, entityType string, p searchuc.Params) ([]domsearch.Hit, []domain.Event, error)
}

type auditUseCase interface {
	Dispatch(ctx context.Context, events []domain.Event)
	Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error)
}

// Client is the lodestone embedded client entry point.
type Client struct {
	store     db.Store
	entitySvc entityUseCase
	searchSvc searchUseCase
	auditSvc  auditUseCase
	obs       *observer
}

// New creates a Client and connects to the index store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("lodestone: store address required (use WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("lodestone: embedder required (use WithEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("lodestone: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("lodestone: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Internal services log through zap; the client surfaces its own
	// observer instead, so the inner loggers stay silent.
	nop := zap.NewNop()

	entityRepo := entityrepo.New(store)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		entityRepo = entityRepo.WithHNSW(entityrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	searchRepo := searchrepo.New(store)
	auditSink := auditrepo.New(store)
	if cfg.auditMaxLen > 0 {
		auditSink = auditSink.WithMaxLen(cfg.auditMaxLen)
	}

	embedder := &embedderAdapter{inner: cfg.embedder}

	var extractor entityuc.Extractor = noopExtractor{}
	if cfg.extractor != nil {
		extractor = &extractorAdapter{inner: cfg.extractor}
	}

	entitySvc := entityuc.New(entityRepo, embedder, extractor, nop)
	if cfg.maxBatchSize > 0 {
		entitySvc = entitySvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	searchSvc := searchuc.New(searchRepo, embedder, extractor, searchuc.Defaults{
		TopK:     cfg.defaultTopK,
		MaxTopK:  cfg.maxTopK,
		MinScore: cfg.minScore,
	}, nop)
	auditSvc := audituc.NewDispatcher(auditSink, nop)

	return &Client{
		store:     store,
		entitySvc: entitySvc,
		searchSvc: searchSvc,
		auditSvc:  auditSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks index store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Entities returns the entity lifecycle service for one tenant and entity type.
func (c *Client) Entities(t Tenant, entityType string) *EntityService {
	return &EntityService{
		tenant:     toInternalTenant(t),
		entityType: entityType,
		svc:        c.entitySvc,
		audit:      c.auditSvc,
		obs:        c.obs,
	}
}

// Search returns the retrieval service for one tenant and entity type.
func (c *Client) Search(t Tenant, entityType string) *SearchService {
	return &SearchService{
		tenant:     toInternalTenant(t),
		entityType: entityType,
		svc:        c.searchSvc,
		audit:      c.auditSvc,
		obs:        c.obs,
	}
}

// AuditLog returns up to count recent audit entries for one tenant and
// entity type, newest first.
func (c *Client) AuditLog(ctx context.Context, t Tenant, entityType string, count int) (entries []AuditEntry, err error) {
	start := time.Now()
	defer func() { c.obs.observe("audit_log", start, err) }()

	events, err := c.auditSvc.Recent(ctx, toInternalTenant(t), entityType, count)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	entries = make([]AuditEntry, len(events))
	for i, ev := range events {
		entries[i] = AuditEntry{
			Timestamp:   ev.Timestamp,
			Kind:        string(ev.Kind),
			Status:      string(ev.Status),
			EntityID:    ev.EntityID,
			Query:       ev.Query,
			ResultCount: ev.ResultCount,
			Error:       ev.Error,
		}
	}
	return entries, nil
}

func toInternalTenant(t Tenant) domain.Tenant {
	return domain.Tenant{
		ClientName: t.ClientName,
		AppName:    t.AppName,
		Stack:      domain.Stack(strings.ToLower(t.Stack)),
		AppURL:     t.AppURL,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// extractorAdapter wraps the public Extractor to satisfy internal contracts.
type extractorAdapter struct {
	inner Extractor
}

func (a *extractorAdapter) Extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error) {
	text, err := a.inner.Extract(ctx, ref, string(kind))
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	return text, nil
}

// noopExtractor fails every media extraction (used when no extractor configured).
type noopExtractor struct{}

func (noopExtractor) Extract(context.Context, string, domain.MediaKind) (string, error) {
	return "", errors.New(
		"lodestone: extractor not configured (use WithExtractor for media entities)",
	)
}

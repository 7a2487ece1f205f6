package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

const (
	defaultCacheSize        = 512
	defaultBatchConcurrency = 8
)

// ContourService wraps the rule engine for the CLI and MCP tools: optional
// input validation, structured logging, memoisation and concurrent batches.
type ContourService struct {
	logger *logrus.Logger
	engine *ContourRuleEngine
	atlas  domain.Atlas
	cache  *lru.Cache[string, domain.Recommendation]
	config domain.EngineConfig
}

// NewContourService creates a new contour recommendation service
func NewContourService(logger *logrus.Logger, a domain.Atlas, cfg domain.EngineConfig) (*ContourService, error) {
	if logger == nil {
		logger = logrus.New()
	}
	engine := NewContourRuleEngine(a)

	s := &ContourService{
		logger: logger,
		engine: engine,
		atlas:  engine.atlas,
		config: cfg,
	}

	if s.config.BatchConcurrency <= 0 {
		s.config.BatchConcurrency = defaultBatchConcurrency
	}

	if cfg.CacheEnabled {
		size := cfg.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		cache, err := lru.New[string, domain.Recommendation](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create recommendation cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Recommend evaluates a single case.
func (s *ContourService) Recommend(ctx context.Context, c domain.CaseData) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, err
	}

	if s.config.ValidateInput {
		if err := c.Validate(); err != nil {
			s.logger.WithFields(c.LogFields()).WithError(err).Warn("Rejected invalid case")
			return domain.Recommendation{}, err
		}
	}

	start := time.Now()
	rec, hit := s.evaluate(c)

	s.logger.WithFields(c.LogFields()).
		WithFields(rec.LogFields()).
		WithFields(logrus.Fields{
			"cache_hit": hit,
			"duration":  time.Since(start).String(),
		}).Info("Contour recommendation generated")

	return rec, nil
}

func (s *ContourService) evaluate(c domain.CaseData) (domain.Recommendation, bool) {
	if s.cache == nil {
		return s.engine.Evaluate(c), false
	}

	key, err := cacheKey(c)
	if err != nil {
		s.logger.WithError(err).Debug("Case not cacheable")
		return s.engine.Evaluate(c), false
	}

	if rec, ok := s.cache.Get(key); ok {
		return rec.Clone(), true
	}

	rec := s.engine.Evaluate(c)
	s.cache.Add(key, rec.Clone())
	return rec, false
}

// cacheKey is the canonical JSON encoding of the case. Struct field order
// is fixed, so equal cases always encode identically.
func cacheKey(c domain.CaseData) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RecommendBatch evaluates cases concurrently, keeping input order. An
// invalid case is reported in its result and does not fail the batch; only
// context cancellation does.
func (s *ContourService) RecommendBatch(ctx context.Context, cases []domain.CaseData) ([]domain.BatchResult, error) {
	results := make([]domain.BatchResult, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.BatchConcurrency)

	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = domain.BatchResult{Index: i, Case: c}

			rec, err := s.Recommend(gctx, c)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].Error = err.Error()
				return nil
			}
			results[i].Recommendation = &rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation aborted: %w", err)
	}

	s.logger.WithField("cases", len(cases)).Info("Batch evaluation completed")
	return results, nil
}

// LookupLevel returns the anatomic boundaries of a nodal level.
func (s *ContourService) LookupLevel(code string) (domain.LevelBoundary, bool) {
	return s.atlas.Lookup(code)
}

// NodalLevels lists every level code in the atlas.
func (s *ContourService) NodalLevels() []string {
	return s.atlas.Codes()
}

// StageGroup derives the AJCC stage group without running the rule chain.
func (s *ContourService) StageGroup(c domain.CaseData) string {
	if c.Site != domain.SiteHeadAndNeck {
		return domain.StageUncertain
	}
	switch c.Subsite {
	case domain.SubsiteOropharynx:
		return staging.OropharynxStageGroup(c.TStage, c.NStage, c.HPVStatus)
	case domain.SubsiteOralCavity:
		return staging.OralCavityStageGroup(c.TStage, c.NStage)
	case domain.SubsiteLarynx:
		return staging.LarynxStageGroup(c.TStage, c.NStage)
	case domain.SubsiteNasopharynx:
		return staging.NasopharynxStageGroup(c.TStage, c.NStage)
	default:
		return domain.StageUncertain
	}
}

// Rules lists the rule chain of every branch.
func (s *ContourService) Rules() []RuleInfo {
	return s.engine.Rules()
}

// CacheLen reports the number of memoised recommendations.
func (s *ContourService) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

var _ domain.RecommendationService = (*ContourService)(nil)
var _ domain.RecommendationEngine = (*ContourRuleEngine)(nil)

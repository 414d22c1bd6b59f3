// Package search runs screening queries against the in-memory entity index.
// Scoring one query against N candidates is embarrassingly parallel: the
// candidate list is sharded across worker goroutines and the only
// coordination is the final merge and sort. Results that cross the alert
// threshold are recorded for compliance review and published for downstream
// case management.
package search

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/briar/internal/repositories/scoringtrace"
	"github.com/Ramsey-B/briar/internal/repositories/screeninghit"
	"github.com/Ramsey-B/briar/pkg/index"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
	"github.com/Ramsey-B/briar/pkg/scoring"
	"github.com/Ramsey-B/briar/pkg/trace"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// Config contains configuration for the search service.
type Config struct {
	Workers        int     // Scoring goroutines per request (default: 4)
	DefaultLimit   int     // Result count when the query does not set one (default: 10)
	MaxLimit       int     // Hard cap on requested result counts (default: 100)
	AlertThreshold float64 // Score at or above which hits are recorded and emitted (default: 0.85)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		DefaultLimit:   10,
		MaxLimit:       100,
		AlertThreshold: 0.85,
	}
}

// Query describes one screening request.
type Query struct {
	// Name screens a bare name when no full entity payload is supplied.
	Name string
	// Entity screens a full profile; identifiers, addresses and dates then
	// contribute evidence alongside the name.
	Entity *models.Entity
	// Source restricts candidates to one list.
	Source models.SourceList
	// EntityType restricts candidates to one kind.
	EntityType models.EntityType
	// MinMatch overrides the configured score floor; 0 keeps the default.
	MinMatch float64
	// Limit caps returned results; 0 keeps the default.
	Limit int
	// Debug captures a scoring trace for each returned candidate.
	Debug bool
}

// Result is one scored candidate.
type Result struct {
	Entity    *models.Entity        `json:"entity"`
	Score     float64               `json:"score"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
}

// Response is the outcome of one screening request. Traces captured by debug
// queries are persisted under SessionID rather than returned inline.
type Response struct {
	SessionID  string   `json:"sessionId"`
	Results    []Result `json:"results"`
	Candidates int      `json:"candidates"`
	DurationMs int64    `json:"durationMs"`
}

// TraceStore persists scoring traces captured by debug queries.
type TraceStore interface {
	SaveAll(ctx context.Context, records []scoringtrace.Record) error
}

// HitStore records screening results that cross the alert threshold.
type HitStore interface {
	Record(ctx context.Context, req screeninghit.RecordRequest) (string, error)
}

// HitEmitter publishes screening hits for downstream case management.
type HitEmitter interface {
	EmitScreeningHit(ctx context.Context, sessionID string, queryName string, entity *models.Entity, score float64, breakdown *models.ScoreBreakdown) error
}

// Service handles screening queries with two responsibilities:
// 1. Score a query against the index and rank the results (Search)
// 2. Compare a query against one specific list entry (Screen)
type Service struct {
	log        ectologger.Logger
	idx        *index.Index
	scorer     *scoring.Scorer
	normalizer *normalize.TextNormalizer
	traces     TraceStore
	hits       HitStore
	emitter    HitEmitter
	cfg        Config
}

// NewService creates a new search service. traces, hits and emitter may be
// nil; the corresponding capability is then skipped.
func NewService(
	log ectologger.Logger,
	idx *index.Index,
	scorer *scoring.Scorer,
	normalizer *normalize.TextNormalizer,
	traces TraceStore,
	hits HitStore,
	emitter HitEmitter,
	cfg Config,
) *Service {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = def.AlertThreshold
	}

	return &Service{
		log:        log,
		idx:        idx,
		scorer:     scorer,
		normalizer: normalizer,
		traces:     traces,
		hits:       hits,
		emitter:    emitter,
		cfg:        cfg,
	}
}

// Config returns the effective configuration
func (s *Service) Config() Config {
	return s.cfg
}

// Search screens a query against the index and returns the ranked results
func (s *Service) Search(ctx context.Context, query Query) (*Response, error) {
	ctx, span := tracing.StartSpan(ctx, "search.Service.Search")
	defer span.End()

	started := time.Now()
	sessionID := uuid.New().String()

	queryEntity, err := s.queryEntity(query)
	if err != nil {
		return nil, err
	}

	candidates := s.candidates(query)

	minMatch := query.MinMatch
	if minMatch <= 0 {
		minMatch = s.scorer.Config().MinMatch
	}

	scored := s.scoreCandidates(ctx, sessionID, queryEntity, candidates, minMatch, query.Debug)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Striding makes cross-worker arrival order nondeterministic, so ties
	// need a stable secondary ordering.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].result.Score != scored[j].result.Score {
			return scored[i].result.Score > scored[j].result.Score
		}
		return scored[i].result.Entity.Name < scored[j].result.Entity.Name
	})

	limit := query.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]Result, 0, len(scored))
	for _, sc := range scored {
		results = append(results, sc.result)
	}

	s.persistTraces(ctx, sessionID, queryEntity.Name, scored)
	s.recordHits(ctx, sessionID, queryEntity.Name, results)

	resp := &Response{
		SessionID:  sessionID,
		Results:    results,
		Candidates: len(candidates),
		DurationMs: time.Since(started).Milliseconds(),
	}

	s.log.WithContext(ctx).WithFields(map[string]any{
		"session_id":  sessionID,
		"query_name":  queryEntity.Name,
		"candidates":  len(candidates),
		"results":     len(results),
		"duration_ms": resp.DurationMs,
	}).Debug("Search completed")

	return resp, nil
}

// ScreenRequest pairs a query entity against one specific list entry. Index
// carries the entry inline; Source and SourceID look it up instead.
type ScreenRequest struct {
	Query    *models.Entity
	Index    *models.Entity
	Source   models.SourceList
	SourceID string
	// MinMatch clamps the score; 0 disables clamping so the raw comparison
	// is visible.
	MinMatch float64
	Debug    bool
}

// ScreenResult reports the comparison of one entity pair
type ScreenResult struct {
	SessionID string                `json:"sessionId,omitempty"`
	Entity    *models.Entity        `json:"entity"`
	Score     float64               `json:"score"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	Trace     *trace.ScoringTrace   `json:"trace,omitempty"`
}

// Screen compares a query entity against one list entry and returns the full
// breakdown, with the trace inline when requested
func (s *Service) Screen(ctx context.Context, req ScreenRequest) (*ScreenResult, error) {
	ctx, span := tracing.StartSpan(ctx, "search.Service.Screen")
	defer span.End()

	if req.Query == nil || strings.TrimSpace(req.Query.Name) == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "screen request requires a query entity with a name")
	}

	indexEntity := req.Index
	if indexEntity == nil {
		if req.Source == "" || req.SourceID == "" {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "screen request requires an index entity or a source and source id")
		}
		// Entries served by the index are already prepared
		found, ok := s.idx.FindBySourceID(req.Source, req.SourceID)
		if !ok {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "list entity not found")
		}
		indexEntity = found
	} else {
		s.normalizer.PrepareEntity(indexEntity)
	}

	s.normalizer.PrepareEntity(req.Query)

	tc := trace.Disabled
	sessionID := ""
	if req.Debug {
		sessionID = uuid.New().String()
		rc := trace.NewContext(sessionID)
		rc.WithMetadata("queryName", req.Query.Name)
		rc.WithMetadata("entitySource", string(indexEntity.Source))
		rc.WithMetadata("entitySourceId", indexEntity.SourceID)
		tc = rc
	}

	breakdown := s.scorer.ScoreWithBreakdown(req.Query, indexEntity, req.MinMatch, tc)

	result := &ScreenResult{
		SessionID: sessionID,
		Entity:    indexEntity,
		Score:     breakdown.TotalWeightedScore,
		Breakdown: breakdown,
	}

	if req.Debug {
		result.Trace = tc.ToTrace()
		if s.traces != nil && result.Trace != nil {
			record := scoringtrace.Record{
				SessionID:      sessionID,
				QueryName:      req.Query.Name,
				EntitySource:   string(indexEntity.Source),
				EntitySourceID: indexEntity.SourceID,
				FinalScore:     result.Score,
				Trace:          result.Trace,
			}
			if err := s.traces.SaveAll(ctx, []scoringtrace.Record{record}); err != nil {
				s.log.WithContext(ctx).WithError(err).Error("Failed to persist screening trace")
			}
		}
	}

	return result, nil
}

// queryEntity builds and prepares the entity the query screens with
func (s *Service) queryEntity(query Query) (*models.Entity, error) {
	entity := query.Entity
	if entity == nil {
		name := strings.TrimSpace(query.Name)
		if name == "" {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "search query requires a name or an entity")
		}
		entity = &models.Entity{Name: name, EntityType: query.EntityType}
	}
	if strings.TrimSpace(entity.Name) == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "query entity has no name")
	}

	s.normalizer.PrepareEntity(entity)
	return entity, nil
}

// candidates selects the slice of the index the query screens against
func (s *Service) candidates(query Query) []*models.Entity {
	var pool []*models.Entity
	if query.Source != "" {
		pool = s.idx.GetBySource(query.Source)
	} else {
		pool = s.idx.All()
	}

	if query.EntityType == "" {
		return pool
	}

	var out []*models.Entity
	for _, e := range pool {
		if e.EntityType == query.EntityType {
			out = append(out, e)
		}
	}
	return out
}

type scoredCandidate struct {
	result Result
	trace  *trace.ScoringTrace
}

// scoreCandidates shards the candidate list across workers by striding.
// Candidates score independently; each worker fills its own slot so no
// locking is needed. Cancellation is checked between candidates and the
// remaining work abandoned.
func (s *Service) scoreCandidates(ctx context.Context, sessionID string, query *models.Entity, candidates []*models.Entity, minMatch float64, debug bool) []scoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	workers := s.cfg.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	shards := make([][]scoredCandidate, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var out []scoredCandidate
			for i := w; i < len(candidates); i += workers {
				if ctx.Err() != nil {
					break
				}
				if sc, ok := s.scoreCandidate(sessionID, query, candidates[i], minMatch, debug); ok {
					out = append(out, sc)
				}
			}
			shards[w] = out
		}(w)
	}
	wg.Wait()

	var merged []scoredCandidate
	for _, shard := range shards {
		merged = append(merged, shard...)
	}
	return merged
}

// scoreCandidate runs the gate and the full comparison for one candidate.
// Index entries arrive prepared; only the query is normalized per request.
func (s *Service) scoreCandidate(sessionID string, query, candidate *models.Entity, minMatch float64, debug bool) (scoredCandidate, bool) {
	if !s.scorer.IsNameCloseEnough(query, candidate) {
		return scoredCandidate{}, false
	}

	tc := trace.Disabled
	if debug {
		rc := trace.NewContext(sessionID)
		rc.WithMetadata("queryName", query.Name)
		rc.WithMetadata("entitySource", string(candidate.Source))
		rc.WithMetadata("entitySourceId", candidate.SourceID)
		tc = rc
	}

	breakdown := s.scorer.ScoreWithBreakdown(query, candidate, minMatch, tc)
	if breakdown.TotalWeightedScore <= 0 {
		return scoredCandidate{}, false
	}

	return scoredCandidate{
		result: Result{
			Entity:    candidate,
			Score:     breakdown.TotalWeightedScore,
			Breakdown: breakdown,
		},
		trace: tc.ToTrace(),
	}, true
}

// persistTraces stores the traces captured for the returned results, all
// sharing the request's session id
func (s *Service) persistTraces(ctx context.Context, sessionID string, queryName string, scored []scoredCandidate) {
	if s.traces == nil {
		return
	}

	records := make([]scoringtrace.Record, 0, len(scored))
	for _, sc := range scored {
		if sc.trace == nil {
			continue
		}
		records = append(records, scoringtrace.Record{
			SessionID:      sessionID,
			QueryName:      queryName,
			EntitySource:   string(sc.result.Entity.Source),
			EntitySourceID: sc.result.Entity.SourceID,
			FinalScore:     sc.result.Score,
			Trace:          sc.trace,
		})
	}
	if len(records) == 0 {
		return
	}

	if err := s.traces.SaveAll(ctx, records); err != nil {
		// Trace persistence must never fail the search itself
		s.log.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"session_id": sessionID,
		}).Error("Failed to persist scoring traces")
	}
}

// recordHits stores and publishes every result at or above the alert
// threshold. Failures are logged and swallowed; screening responses do not
// depend on the audit trail being writable.
func (s *Service) recordHits(ctx context.Context, sessionID string, queryName string, results []Result) {
	for _, result := range results {
		if result.Score < s.cfg.AlertThreshold {
			continue
		}

		log := s.log.WithContext(ctx).WithFields(map[string]any{
			"session_id": sessionID,
			"source":     result.Entity.Source,
			"source_id":  result.Entity.SourceID,
			"score":      result.Score,
		})

		if s.hits != nil {
			if _, err := s.hits.Record(ctx, screeninghit.RecordRequest{
				SessionID:      sessionID,
				QueryName:      queryName,
				EntitySource:   result.Entity.Source,
				EntitySourceID: result.Entity.SourceID,
				EntityName:     result.Entity.Name,
				Score:          result.Score,
				Breakdown:      result.Breakdown,
			}); err != nil {
				log.WithError(err).Error("Failed to record screening hit")
			}
		}

		if s.emitter != nil {
			breakdown := result.Breakdown
			if err := s.emitter.EmitScreeningHit(ctx, sessionID, queryName, result.Entity, result.Score, &breakdown); err != nil {
				log.WithError(err).Error("Failed to publish screening hit")
			}
		}
	}
}

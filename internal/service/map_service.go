package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/jengzang/opportunity-map-go/internal/mapviz"
	"github.com/jengzang/opportunity-map-go/internal/metrics"
	"github.com/jengzang/opportunity-map-go/internal/models"
	"github.com/jengzang/opportunity-map-go/internal/repository"
	"github.com/jengzang/opportunity-map-go/internal/spatial"
	"github.com/jengzang/opportunity-map-go/internal/stats"
)

// MapOptions tunes the map service
type MapOptions struct {
	Spacing      float64 // degrees between spread markers
	CacheEntries int     // 0 disables memoization
	MaxEntities  int     // entities loaded per cluster request
	IngestBatch  int     // entities accepted per ingest call
}

// DefaultMapOptions returns the production defaults
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Spacing:      mapviz.DefaultSpacing,
		CacheEntries: 256,
		MaxEntities:  50000,
		IngestBatch:  500,
	}
}

// MapService handles business logic for map display data
type MapService struct {
	repo    *repository.EntityRepository
	opts    MapOptions
	logger  logging.Logger
	metrics *metrics.Metrics

	version atomic.Uint64
	cache   *clusterCache
	flight  singleflight.Group
	now     func() time.Time
}

// NewMapService creates a new map service. m may be nil.
func NewMapService(repo *repository.EntityRepository, opts MapOptions, logger logging.Logger, m *metrics.Metrics) *MapService {
	if opts.Spacing <= 0 {
		opts.Spacing = mapviz.DefaultSpacing
	}
	if opts.MaxEntities <= 0 {
		opts.MaxEntities = DefaultMapOptions().MaxEntities
	}
	if opts.IngestBatch <= 0 {
		opts.IngestBatch = DefaultMapOptions().IngestBatch
	}
	return &MapService{
		repo:    repo,
		opts:    opts,
		logger:  logger.Named("map"),
		metrics: m,
		cache:   newClusterCache(opts.CacheEntries),
		now:     time.Now,
	}
}

// Clusters loads entities, applies the value range and viewport, and returns
// spread, colored marker groups. Results are memoized per dataset version.
func (s *MapService) Clusters(ctx context.Context, filter models.ClusterFilter) (*models.ClusterResponse, error) {
	if filter.Kind != "" && !models.ValidKind(filter.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, filter.Kind)
	}
	r := filter.Range()
	if r.Min < 0 || r.Max < r.Min {
		return nil, fmt.Errorf("%w: value range [%g, %g]", ErrInvalidInput, r.Min, r.Max)
	}
	if filter.HasBounds() {
		if _, _, _, _, ok := filter.Bounds(); !ok {
			return nil, fmt.Errorf("%w: viewport needs minLat, maxLat, minLon and maxLon", ErrInvalidInput)
		}
	}

	version := s.version.Load()
	key := clusterKey(filter)

	if resp, ok := s.cache.get(version, key); ok {
		s.metrics.CacheHit()
		return resp, nil
	}
	s.metrics.CacheMiss()

	// The computation is shared by every caller waiting on this key, so it
	// runs detached from any one caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(fmt.Sprintf("%d|%s", version, key), func() (interface{}, error) {
		resp, err := s.computeClusters(flightCtx, filter)
		if err != nil {
			return nil, err
		}
		s.cache.put(version, key, resp)
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.ClusterResponse), nil
	}
}

func (s *MapService) computeClusters(ctx context.Context, filter models.ClusterFilter) (*models.ClusterResponse, error) {
	limit := s.opts.MaxEntities
	if filter.Limit > 0 && filter.Limit < limit {
		limit = filter.Limit
	}

	entities, err := s.repo.List(ctx, storeFilter(filter, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	start := time.Now()
	resp := BuildClusters(entities, filter, s.opts.Spacing)

	elapsed := time.Since(start)
	s.metrics.ObserveCluster(len(entities), elapsed)
	s.logger.Debug("clustered entities",
		logging.String("kind", filter.Kind),
		logging.Int("entities", len(entities)),
		logging.Int("markers", resp.Markers),
		logging.Int("clusters", len(resp.Clusters)),
		logging.Duration("elapsed", elapsed),
	)

	return resp, nil
}

// storeFilter moves the value range and viewport into the query so the
// limit counts matching entities only. BuildClusters still applies both,
// which covers boxes crossing the antimeridian.
func storeFilter(filter models.ClusterFilter, limit int) models.EntityFilter {
	r := filter.Range()
	ef := models.EntityFilter{
		Kind:      filter.Kind,
		MinAmount: r.Min,
		Located:   true,
		PageSize:  limit,
	}
	if !r.IsOpenEnded() {
		ef.MaxAmount = r.Max
	}
	if minLat, maxLat, minLon, maxLon, ok := filter.Bounds(); ok && minLon <= maxLon {
		if minLat > maxLat {
			minLat, maxLat = maxLat, minLat
		}
		ef.MinLat, ef.MaxLat, ef.MinLon, ef.MaxLon = minLat, maxLat, minLon, maxLon
	}
	return ef
}

// BuildClusters filters, groups, spreads and colors entities. Entities
// without a position are skipped.
func BuildClusters(entities []models.MapEntity, filter models.ClusterFilter, spacing float64) *models.ClusterResponse {
	valueRange := filter.Range()
	inRange := mapviz.MakeMatcher[models.MapEntity](valueRange)
	match := inRange
	if minLat, maxLat, minLon, maxLon, ok := filter.Bounds(); ok {
		viewport := spatial.NewViewport(minLat, maxLat, minLon, maxLon)
		match = func(e models.MapEntity) bool {
			lat, lng, ok := e.Location()
			return ok && viewport.Contains(lat, lng) && inRange(e)
		}
	}

	// Linear color scale spans the entities that will actually be drawn
	var amounts []float64
	for _, e := range entities {
		if _, _, ok := e.Location(); ok && match(e) {
			amounts = append(amounts, e.Amount)
		}
	}
	minValue, maxValue := stats.MinMax(stats.Positive(amounts))

	groups := mapviz.ClusterAndSpread(entities, match, mapviz.WithSpacing(spacing))

	resp := &models.ClusterResponse{
		Clusters: make([]models.ClusterView, 0, len(groups)),
		Range:    valueRange,
		MinValue: minValue,
		MaxValue: maxValue,
	}
	bounds := spatial.NewBounds()

	for _, g := range groups {
		view := models.ClusterView{
			Key:     g.Key,
			Center:  g.Center,
			Count:   len(g.Members),
			Markers: make([]models.MarkerView, 0, len(g.Members)),
		}
		for _, m := range g.Members {
			e := entities[m.Index]
			view.Markers = append(view.Markers, models.MarkerView{
				Entity:    e,
				Latitude:  m.Position.Lat,
				Longitude: m.Position.Lng,
				Spread:    m.Spread,
				Color:     mapviz.ColorForAmount(e.Amount, minValue, maxValue).String(),
			})
			bounds.Add(m.Position.Lat, m.Position.Lng)

			if m.Spread {
				d := spatial.HaversineDistance(g.Center.Lat, g.Center.Lng, m.Position.Lat, m.Position.Lng)
				if d > view.SpreadRadiusMeters {
					view.SpreadRadiusMeters = d
				}
			}
		}
		resp.Markers += view.Count
		resp.Clusters = append(resp.Clusters, view)
	}

	if !bounds.IsEmpty() {
		minLat, minLon, maxLat, maxLon := bounds.Box()
		resp.Bounds = &models.BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	}

	return resp
}

// Legend ranks the distinct amounts of a kind and colors them by rank
func (s *MapService) Legend(ctx context.Context, kind string) (*models.LegendResponse, error) {
	if kind != "" && !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}

	amounts, err := s.repo.Amounts(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load amounts: %w", err)
	}

	return BuildLegend(kind, amounts), nil
}

// BuildLegend computes a rank-colored legend for a set of amounts
func BuildLegend(kind string, amounts []float64) *models.LegendResponse {
	positive := stats.Positive(amounts)
	ranks := mapviz.RankPositions(positive)

	min, q1, median, q3, max := stats.FiveNumberSummary(positive)
	resp := &models.LegendResponse{
		Kind:     kind,
		Entries:  make([]models.LegendEntry, 0, ranks.Len()),
		Summary:  models.ValueSummary{Min: min, Q1: q1, Median: median, Q3: q3, Max: max},
		Gradient: mapviz.GradientCSS(),
	}

	for _, a := range ranks.Values() {
		f := ranks.Fraction(a)
		resp.Entries = append(resp.Entries, models.LegendEntry{
			Amount:   a,
			Fraction: f,
			Color:    mapviz.ColorForRank(f).String(),
		})
	}
	resp.Count = len(resp.Entries)
	return resp
}

// Color returns the linear marker color for one value within [min, max]
func (s *MapService) Color(q models.ColorQuery) string {
	return mapviz.ColorForEntityValue(mapviz.RawValue(q.Value), q.Min, q.Max).String()
}

// Gradient returns the fixed gradient stop table
func (s *MapService) Gradient() []models.GradientStopView {
	stops := mapviz.GradientStops()
	out := make([]models.GradientStopView, 0, len(stops))
	for _, st := range stops {
		out = append(out, models.GradientStopView{Position: st.Position, Color: st.Color.String()})
	}
	return out
}

// Ingest validates and stores a batch of entities, returning them with IDs
// and parsed amounts filled in
func (s *MapService) Ingest(ctx context.Context, entities []models.MapEntity) ([]models.MapEntity, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no entities", ErrInvalidInput)
	}
	if len(entities) > s.opts.IngestBatch {
		return nil, fmt.Errorf("%w: batch of %d exceeds limit %d", ErrInvalidInput, len(entities), s.opts.IngestBatch)
	}

	now := s.now().UTC()
	out := make([]models.MapEntity, len(entities))
	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		if err := validateEntity(&e); err != nil {
			return nil, fmt.Errorf("%w: entity %d: %v", ErrInvalidInput, i, err)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if j, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: entity %d repeats id %q of entity %d", ErrInvalidInput, i, e.ID, j)
		}
		seen[e.ID] = i
		e.CreatedAt = now
		e.Normalize()
		out[i] = e
	}

	if err := s.repo.Insert(ctx, out); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to store entities: %w", err)
	}

	s.version.Add(1)
	s.metrics.Ingested(len(out))
	s.logger.Info("ingested entities", logging.Int("count", len(out)))
	return out, nil
}

// List returns stored entities
func (s *MapService) List(ctx context.Context, filter models.EntityFilter) ([]models.MapEntity, error) {
	if filter.Kind != "" && !models.ValidKind(filter.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, filter.Kind)
	}
	if filter.PageSize > repository.DefaultListLimit {
		filter.PageSize = repository.DefaultListLimit
	}
	entities, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// Get returns one entity
func (s *MapService) Get(ctx context.Context, id string) (*models.MapEntity, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	return e, nil
}

// Delete removes one entity
func (s *MapService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	s.version.Add(1)
	s.logger.Info("deleted entity", logging.String("id", id))
	return nil
}

func validateEntity(e *models.MapEntity) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.Kind == "" {
		e.Kind = models.KindOpportunity
	}
	if !models.ValidKind(e.Kind) {
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if (e.Latitude == nil) != (e.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be given together")
	}
	if e.Latitude != nil {
		if *e.Latitude < -90 || *e.Latitude > 90 {
			return fmt.Errorf("latitude %g out of range", *e.Latitude)
		}
		if *e.Longitude < -180 || *e.Longitude > 180 {
			return fmt.Errorf("longitude %g out of range", *e.Longitude)
		}
	}
	return nil
}

func clusterKey(f models.ClusterFilter) string {
	r := f.Range()
	box := "-"
	if minLat, maxLat, minLon, maxLon, ok := f.Bounds(); ok {
		box = fmt.Sprintf("%g,%g,%g,%g", minLat, maxLat, minLon, maxLon)
	}
	return fmt.Sprintf("%s|%g|%g|%s|%d", f.Kind, r.Min, r.Max, box, f.Limit)
}

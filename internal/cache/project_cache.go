package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/portfolio-site/portfolio-api/pkg/retry"
	"go.uber.org/zap"
)

// ProjectSource loads the full, ordered project collection
type ProjectSource interface {
	GetAllProjects(ctx context.Context) ([]*models.Project, error)
}

const (
	projectKeyPrefix = "project:id:"
	allProjectsKey   = "project:all"
	cacheCheckPeriod = time.Minute
	refreshTimeout   = 30 * time.Second
)

var (
	ErrNotReady        = errors.New("project cache not initialized")
	ErrProjectNotFound = errors.New("project not found in cache")
)

// ProjectCache keeps every project in memory keyed by id, plus the ordered
// id list. Entries never expire on their own; a background loop reloads
// the whole collection every ttl.
type ProjectCache struct {
	cache       *gocache.Cache
	source      ProjectSource
	retryConfig retry.Config
	mu          sync.RWMutex
	refreshMu   sync.Mutex
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewProjectCache creates a project cache refreshed every ttlSeconds
func NewProjectCache(source ProjectSource, ttlSeconds int) *ProjectCache {
	retryConfig := retry.DefaultConfig()
	retryConfig.MaxRetries = 2
	retryConfig.InitialDelay = 2 * time.Second
	retryConfig.MaxDelay = 8 * time.Second

	return &ProjectCache{
		cache:       gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		source:      source,
		retryConfig: retryConfig,
		ttl:         time.Duration(ttlSeconds) * time.Second,
		stop:        make(chan struct{}),
	}
}

// Initialize performs the initial load and starts the refresh loop.
// It blocks until the cache is ready and should run before the server
// accepts requests.
func (pc *ProjectCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing project cache...")
	startTime := time.Now()

	projects, err := retry.DoWithResult(ctx, pc.retryConfig, "project_cache.initialize", func() ([]*models.Project, error) {
		return pc.source.GetAllProjects(ctx)
	})
	if err != nil {
		logger.Error("Failed to initialize project cache", zap.Error(err))
		return fmt.Errorf("failed to initialize project cache: %w", err)
	}

	pc.populate(projects)

	pc.mu.Lock()
	pc.ready = true
	pc.mu.Unlock()

	logger.Info("Project cache initialized successfully",
		zap.Int("count", len(projects)),
		zap.Duration("duration", time.Since(startTime)))

	if pc.ttl > 0 {
		go pc.schedulePeriodicRefresh()
	}

	return nil
}

// IsReady returns true once the cache has been populated
func (pc *ProjectCache) IsReady() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.ready
}

// LastRefresh returns when the collection was last loaded
func (pc *ProjectCache) LastRefresh() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.lastRefresh
}

// Get returns copies of all projects in display order
func (pc *ProjectCache) Get() ([]*models.Project, error) {
	if !pc.IsReady() {
		return nil, ErrNotReady
	}

	pc.mu.RLock()
	ids := pc.idsLocked()
	pc.mu.RUnlock()

	metrics.CacheHits.WithLabelValues("project_all").Inc()

	projects := make([]*models.Project, 0, len(ids))
	for _, id := range ids {
		p, found := pc.lookup(id)
		if !found {
			logger.Debug("Project missing from cache", zap.String("project_id", id))
			continue
		}
		projects = append(projects, p.Clone())
	}

	return projects, nil
}

// GetByID returns a copy of one project
func (pc *ProjectCache) GetByID(id string) (*models.Project, error) {
	if !pc.IsReady() {
		return nil, ErrNotReady
	}

	p, found := pc.lookup(id)
	if !found {
		metrics.CacheMisses.WithLabelValues("project_by_id").Inc()
		return nil, ErrProjectNotFound
	}

	metrics.CacheHits.WithLabelValues("project_by_id").Inc()
	return p.Clone(), nil
}

// Upsert stores p, appending its id to the order when new
func (pc *ProjectCache) Upsert(p *models.Project) error {
	if !pc.IsReady() {
		return ErrNotReady
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Set(projectKeyPrefix+p.ID, p.Clone(), gocache.NoExpiration)

	ids := pc.idsLocked()
	for _, id := range ids {
		if id == p.ID {
			return nil
		}
	}
	ids = append(ids, p.ID)
	pc.cache.Set(allProjectsKey, ids, gocache.NoExpiration)
	metrics.CacheSize.WithLabelValues("projects").Set(float64(len(ids)))

	return nil
}

// Remove drops a project from the cache
func (pc *ProjectCache) Remove(id string) error {
	if !pc.IsReady() {
		return ErrNotReady
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Delete(projectKeyPrefix + id)

	ids := pc.idsLocked()
	remaining := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	pc.cache.Set(allProjectsKey, remaining, gocache.NoExpiration)
	metrics.CacheSize.WithLabelValues("projects").Set(float64(len(remaining)))

	logger.Info("Project removed from cache", zap.String("project_id", id))
	return nil
}

// Refresh reloads the whole collection synchronously. A reload already in
// flight may have read the source before the caller's write, so Refresh
// waits for it to finish and then loads again.
func (pc *ProjectCache) Refresh(ctx context.Context) error {
	pc.refreshMu.Lock()
	defer pc.refreshMu.Unlock()
	return pc.reload(ctx)
}

// refreshIfIdle reloads unless another reload is running
func (pc *ProjectCache) refreshIfIdle(ctx context.Context) error {
	if !pc.refreshMu.TryLock() {
		logger.Debug("Refresh already in progress, skipping")
		return nil
	}
	defer pc.refreshMu.Unlock()
	return pc.reload(ctx)
}

func (pc *ProjectCache) reload(ctx context.Context) error {
	startTime := time.Now()
	projects, err := pc.source.GetAllProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh project cache: %w", err)
	}

	pc.populate(projects)

	logger.Info("Project cache refreshed",
		zap.Int("count", len(projects)),
		zap.Duration("duration", time.Since(startTime)))

	return nil
}

// ForceRefresh reloads in the background and returns current data immediately
func (pc *ProjectCache) ForceRefresh() ([]*models.Project, error) {
	logger.Info("Force refresh requested, triggering background refresh")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := pc.refreshIfIdle(ctx); err != nil {
			logger.Error("Background refresh failed", zap.Error(err))
		}
	}()

	return pc.Get()
}

// Stop ends the background refresh loop
func (pc *ProjectCache) Stop() {
	pc.stopOnce.Do(func() { close(pc.stop) })
}

func (pc *ProjectCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(pc.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-pc.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := pc.refreshIfIdle(ctx); err != nil {
				// keep serving the previous collection until the next tick
				logger.Error("Scheduled cache refresh failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// populate replaces the cached collection
func (pc *ProjectCache) populate(projects []*models.Project) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	ids := make([]string, 0, len(projects))
	keep := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		pc.cache.Set(projectKeyPrefix+p.ID, p.Clone(), gocache.NoExpiration)
		ids = append(ids, p.ID)
		keep[p.ID] = struct{}{}
	}

	for _, old := range pc.idsLocked() {
		if _, ok := keep[old]; !ok {
			pc.cache.Delete(projectKeyPrefix + old)
		}
	}

	pc.cache.Set(allProjectsKey, ids, gocache.NoExpiration)
	pc.lastRefresh = time.Now()

	metrics.CacheSize.WithLabelValues("projects").Set(float64(len(ids)))
}

func (pc *ProjectCache) lookup(id string) (*models.Project, bool) {
	data, found := pc.cache.Get(projectKeyPrefix + id)
	if !found {
		return nil, false
	}
	p, ok := data.(*models.Project)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("project_id", id))
		pc.cache.Delete(projectKeyPrefix + id)
		return nil, false
	}
	return p, true
}

// idsLocked returns a copy of the id order. Caller holds pc.mu.
func (pc *ProjectCache) idsLocked() []string {
	data, found := pc.cache.Get(allProjectsKey)
	if !found {
		return nil
	}
	ids, ok := data.([]string)
	if !ok {
		return nil
	}
	return append([]string(nil), ids...)
}

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu       sync.Mutex
	projects []*models.Project
	err      error
	calls    int
}

func (s *stubSource) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*models.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (s *stubSource) set(projects ...*models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

// gatedSource parks the first load after hold is set until release is closed
type gatedSource struct {
	stubSource
	hold    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := g.stubSource.GetAllProjects(ctx)
	if g.hold.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return projects, err
}

func project(id string) *models.Project {
	return &models.Project{
		ID:        id,
		Title:     "Project " + id,
		TechStack: []models.ProjectTech{{Name: "Go", Color: "#00ADD8"}},
	}
}

func newReadyCache(t *testing.T, source *stubSource) *ProjectCache {
	t.Helper()
	pc := NewProjectCache(source, 0)
	pc.retryConfig.InitialDelay = time.Millisecond
	pc.retryConfig.MaxDelay = time.Millisecond
	require.NoError(t, pc.Initialize(context.Background()))
	t.Cleanup(pc.Stop)
	return pc
}

func ids(projects []*models.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func TestProjectCache_NotReady(t *testing.T) {
	pc := NewProjectCache(&stubSource{}, 60)

	assert.False(t, pc.IsReady())
	_, err := pc.Get()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = pc.GetByID("p1")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, pc.Upsert(project("p1")), ErrNotReady)
	assert.ErrorIs(t, pc.Remove("p1"), ErrNotReady)
}

func TestProjectCache_InitializeKeepsOrder(t *testing.T) {
	source := &stubSource{}
	source.set(project("b"), project("a"), project("c"))
	pc := newReadyCache(t, source)

	assert.True(t, pc.IsReady())
	assert.False(t, pc.LastRefresh().IsZero())

	all, err := pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(all))
}

func TestProjectCache_InitializeRetriesThenFails(t *testing.T) {
	source := &stubSource{err: errors.New("db down")}
	pc := NewProjectCache(source, 0)
	pc.retryConfig.InitialDelay = time.Millisecond
	pc.retryConfig.MaxDelay = time.Millisecond

	err := pc.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, pc.IsReady())
	assert.Equal(t, pc.retryConfig.MaxRetries+1, source.calls)
}

func TestProjectCache_ReturnsCopies(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"))
	pc := newReadyCache(t, source)

	got, err := pc.GetByID("p1")
	require.NoError(t, err)
	got.Title = "mutated"
	got.TechStack[0].Name = "mutated"

	again, err := pc.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, "Project p1", again.Title)
	assert.Equal(t, "Go", again.TechStack[0].Name)
}

func TestProjectCache_GetByIDMissing(t *testing.T) {
	pc := newReadyCache(t, &stubSource{})
	_, err := pc.GetByID("nope")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectCache_UpsertAndRemove(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"), project("p2"))
	pc := newReadyCache(t, source)

	updated := project("p1")
	updated.Title = "Renamed"
	require.NoError(t, pc.Upsert(updated))
	require.NoError(t, pc.Upsert(project("p3")))

	all, err := pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(all))
	assert.Equal(t, "Renamed", all[0].Title)

	require.NoError(t, pc.Remove("p2"))
	all, err = pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids(all))

	_, err = pc.GetByID("p2")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectCache_RefreshDropsRemovedProjects(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"), project("p2"))
	pc := newReadyCache(t, source)

	source.set(project("p2"))
	require.NoError(t, pc.Refresh(context.Background()))

	all, err := pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(all))

	_, err = pc.GetByID("p1")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectCache_RefreshFailureKeepsData(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"))
	pc := newReadyCache(t, source)

	source.mu.Lock()
	source.err = errors.New("db down")
	source.mu.Unlock()

	assert.Error(t, pc.Refresh(context.Background()))

	all, err := pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(all))
}

func TestProjectCache_ForceRefreshReturnsCurrent(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"))
	pc := newReadyCache(t, source)

	source.set(project("p1"), project("p2"))
	current, err := pc.ForceRefresh()
	require.NoError(t, err)
	assert.NotEmpty(t, current)

	assert.Eventually(t, func() bool {
		all, err := pc.Get()
		return err == nil && len(all) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestProjectCache_PeriodicRefresh(t *testing.T) {
	source := &stubSource{}
	source.set(project("p1"))
	pc := NewProjectCache(source, 1)
	require.NoError(t, pc.Initialize(context.Background()))
	t.Cleanup(pc.Stop)

	source.set(project("p1"), project("p2"))
	assert.Eventually(t, func() bool {
		all, err := pc.Get()
		return err == nil && len(all) == 2
	}, 3*time.Second, 50*time.Millisecond)

	pc.Stop()
	pc.Stop()
}

func TestProjectCache_RefreshWaitsForReloadInFlight(t *testing.T) {
	source := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	source.set(project("p1"))
	pc := NewProjectCache(source, 0)
	require.NoError(t, pc.Initialize(context.Background()))
	t.Cleanup(pc.Stop)

	// a background reload reads [p1] and stalls
	source.hold.Store(true)
	_, err := pc.ForceRefresh()
	require.NoError(t, err)
	<-source.entered

	source.set(project("p2"), project("p1"))
	done := make(chan error, 1)
	go func() { done <- pc.Refresh(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Refresh returned while another reload was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(source.release)
	require.NoError(t, <-done)

	all, err := pc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(all))
}

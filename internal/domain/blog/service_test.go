package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

type mockPostRepo struct {
	byID map[string]*Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{byID: make(map[string]*Post)}
}

func (m *mockPostRepo) List(_ context.Context, page Page) ([]Post, error) {
	var out []Post
	for _, p := range m.byID {
		if page.PublishedOnly && !p.Published {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) GetBySlug(_ context.Context, slug string) (*Post, error) {
	for _, p := range m.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPostRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, p := range m.byID {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPostRepo) Create(_ context.Context, p *Post) error {
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPostRepo) Update(_ context.Context, p *Post) error {
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPostRepo) SetLifecycle(_ context.Context, id string, state lifecycle.State) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Lifecycle = state
	return nil
}

func (m *mockPostRepo) IncrementViews(_ context.Context, id string) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.ViewCount++
	return nil
}

func TestCreate_AssignsSlug(t *testing.T) {
	svc := NewService(newMockPostRepo())

	p, err := svc.Create(context.Background(), "Hello, World!", "body")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", p.Slug)
	assert.False(t, p.Published)
}

func TestCreate_SecondSameTitleGetsSuffix(t *testing.T) {
	svc := NewService(newMockPostRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, "Hello, World!", "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "Hello, World!", "")
	require.NoError(t, err)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
}

func TestCreate_EmptyTitle(t *testing.T) {
	svc := NewService(newMockPostRepo())

	_, err := svc.Create(context.Background(), "   ", "body")
	require.ErrorIs(t, err, ErrEmptyTitle)
}

func TestUpdate_UnchangedTitleKeepsSlug(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Hello, World!", "v1")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, "Hello, World!", "v2")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", updated.Slug)
	assert.Equal(t, "v2", updated.Body)
}

func TestUpdate_NewTitleRegeneratesSlug(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Hello, World!", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, "Goodbye, World!", "")
	require.NoError(t, err)
	assert.Equal(t, "goodbye-world", updated.Slug)
}

func TestRead_IncrementsViews(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Readable", "")
	require.NoError(t, err)
	require.NoError(t, svc.SetPublished(ctx, p.ID, true))

	got, err := svc.Read(ctx, "readable")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	got, err = svc.Read(ctx, "readable")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
}

func TestRead_UnpublishedIsNotFound(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Draft", "")
	require.NoError(t, err)

	_, err = svc.Read(ctx, "draft")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Tombstones(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Gone Soon", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, lifecycle.Deleted, repo.byID[p.ID].Lifecycle)

	// Re-deleting is a no-op, never an error.
	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, lifecycle.Deleted, repo.byID[p.ID].Lifecycle)
}

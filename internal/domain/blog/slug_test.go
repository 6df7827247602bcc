package blog

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Hello, World!", want: "hello-world"},
		{title: "  Spring --- Sale  2026  ", want: "spring-sale-2026"},
		{title: "UPPER case TITLE", want: "upper-case-title"},
		{title: "Tea & Coffee", want: "tea-and-coffee"},
		{title: "!!!", want: "post"},
		{title: "", want: "post"},
		{title: "already-a-slug", want: "already-a-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.title))
		})
	}
}

func TestSlugify_TruncatesWithoutTrailingHyphen(t *testing.T) {
	title := strings.Repeat("word ", 40) // slug would exceed 100 chars
	got := slugify(title)

	assert.LessOrEqual(t, len(got), 100)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestSlugify_Deterministic(t *testing.T) {
	assert.Equal(t, slugify("Some Catchy Title"), slugify("Some Catchy Title"))
}

type slugSet map[string]string // slug -> owning post id

func (s slugSet) exists(slug, excludeID string) bool {
	id, ok := s[slug]
	return ok && id != excludeID
}

type slugRepo struct {
	Repository // panics on unused methods
	taken      slugSet
}

func (r *slugRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	return r.taken.exists(slug, excludeID), nil
}

func TestUniqueSlug_NoCollision(t *testing.T) {
	repo := &slugRepo{taken: slugSet{}}

	got, err := uniqueSlug(context.Background(), repo, "Hello, World!", "")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)
}

func TestUniqueSlug_SuffixOnCollision(t *testing.T) {
	repo := &slugRepo{taken: slugSet{"hello-world": "other"}}

	got, err := uniqueSlug(context.Background(), repo, "Hello, World!", "")
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", got)
}

func TestUniqueSlug_SecondSuffix(t *testing.T) {
	repo := &slugRepo{taken: slugSet{
		"hello-world":   "a",
		"hello-world-1": "b",
	}}

	got, err := uniqueSlug(context.Background(), repo, "Hello, World!", "")
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", got)
}

func TestUniqueSlug_ExcludesOwnRow(t *testing.T) {
	repo := &slugRepo{taken: slugSet{"hello-world": "me"}}

	got, err := uniqueSlug(context.Background(), repo, "Hello, World!", "me")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)
}

func TestUniqueSlug_Exhaustion(t *testing.T) {
	taken := slugSet{"dup": "x"}
	for i := 1; i <= 1000; i++ {
		taken["dup-"+strconv.Itoa(i)] = "x"
	}
	repo := &slugRepo{taken: taken}

	_, err := uniqueSlug(context.Background(), repo, "dup", "")
	require.ErrorIs(t, err, ErrSlugExhausted)
}

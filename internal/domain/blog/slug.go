package blog

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	gslug "github.com/gosimple/slug"
)

const (
	slugMaxLen   = 100
	slugFallback = "post"
	// slugMaxRetries bounds the collision suffix loop so a pathological storm
	// of duplicate titles cannot spin forever.
	slugMaxRetries = 1000
)

// slugify derives the base slug from a title: lower-cased, symbols
// transliterated or substituted ("&" becomes "and"), runs of separators
// collapsed to single hyphens, capped at slugMaxLen without a dangling
// hyphen. Empty results fall back to a fixed token. Deterministic for a
// given title.
func slugify(title string) string {
	s := gslug.Make(title)
	if s == "" {
		return slugFallback
	}
	if len(s) > slugMaxLen {
		s = strings.TrimRight(s[:slugMaxLen], "-")
	}
	return s
}

// uniqueSlug returns the base slug for title, suffixed with -1, -2, …
// until it no longer collides with another row. excludeID skips the row being
// updated so a post keeps its own slug.
func uniqueSlug(ctx context.Context, repo Repository, title, excludeID string) (string, error) {
	base := slugify(title)

	candidate := base
	for i := 0; i <= slugMaxRetries; i++ {
		if i > 0 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		taken, err := repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}

package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Takaramono/utils"
)

// slugExistsFunc reports whether a slug is already taken, ignoring the
// record identified by excludeID.
type slugExistsFunc func(ctx context.Context, slug string, excludeID uint) (bool, error)

// AssignSlug returns the slug a record should carry. A slug that is
// already set is returned untouched, so re-saving a record never
// changes its slug. Otherwise the name is slugified and probed against
// the store: the base candidate first, then base-1, base-2 and so on
// until a free one is found. One existence check per candidate.
func AssignSlug(ctx context.Context, currentSlug, name string, excludeID uint, exists slugExistsFunc) (string, error) {
	if currentSlug != "" {
		return currentSlug, nil
	}

	base := utils.Slugify(name)
	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

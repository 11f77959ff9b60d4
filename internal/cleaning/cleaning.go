// Package cleaning normalizes scraped listing records before they are
// stored or matched.
package cleaning

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// Fields rewritten by CleanItem. Other keys pass through untouched.
const (
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldRequirement = "requirements"
)

// CleanItem returns a cleaned copy of item. Locations are mapped onto their
// canonical city and description-like fields lose HTML and extra whitespace.
// Non-string values are left as they are.
func CleanItem(item types.CleanItem) types.CleanItem {
	out := make(types.CleanItem, len(item))
	for k, v := range item {
		out[k] = v
	}

	if raw, ok := item[FieldLocation]; ok {
		switch loc := raw.(type) {
		case string:
			out[FieldLocation] = textutil.NormalizeLocation(textutil.CleanLocation(textutil.StripWrapperArtifacts(loc)))
		case nil:
			out[FieldLocation] = textutil.NormalizeLocation("")
		}
	}
	for _, field := range []string{FieldDescription, FieldRequirement} {
		if s, ok := item[field].(string); ok {
			out[field] = textutil.Clean(s)
		}
	}
	return out
}

// CleanAll cleans items with at most workers goroutines and keeps input
// order. It stops early when ctx is cancelled.
func CleanAll(ctx context.Context, items []types.CleanItem, workers int) ([]types.CleanItem, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]types.CleanItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = CleanItem(item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

package worker

import (
	"context"
	"time"

	"momentum/internal/storage"
)

// Sweep removes stored artifacts that no proof file references. Artifacts
// younger than grace are kept because their transaction may still be open.
// It returns the orphaned paths, removed unless dryRun is set.
func Sweep(ctx context.Context, store storage.ProofStore, referenced []string, grace time.Duration, dryRun bool) ([]string, error) {
	objects, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		keep[p] = struct{}{}
	}

	cutoff := time.Now().Add(-grace)
	var orphans []string
	for _, obj := range objects {
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Path)
	}

	if dryRun || len(orphans) == 0 {
		return orphans, nil
	}
	if err := store.Remove(ctx, orphans...); err != nil {
		return orphans, err
	}
	return orphans, nil
}

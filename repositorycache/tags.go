package repositorycache

import (
	"context"
)

type invalidationContextKey struct{}

// WithInvalidation attaches extra namespaces to ctx. A write made with the
// returned context invalidates them in addition to the repository's own.
func WithInvalidation(ctx context.Context, namespaces ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(namespaces) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(invalidationFromContext(ctx), namespaces...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, invalidationContextKey{}, combined)
}

func invalidationFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if namespaces, ok := ctx.Value(invalidationContextKey{}).([]string); ok {
		return append([]string(nil), namespaces...)
	}
	return nil
}

// dedupeStrings drops empty and repeated entries, keeping first-seen order.
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

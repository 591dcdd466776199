package tenant

import "context"

type ctxKey struct{}

// WithSchool returns a derived context carrying the resolved school.
func WithSchool(ctx context.Context, school School) context.Context {
	return context.WithValue(ctx, ctxKey{}, school)
}

// SchoolFromContext extracts the resolved school and a boolean indicating presence.
func SchoolFromContext(ctx context.Context) (School, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return School{}, false
	}

	school, ok := v.(School)
	return school, ok
}

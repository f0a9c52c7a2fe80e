package helpers

import "context"

type requestIDKey struct{}

// ContextWithRequestID stores id so code below the HTTP layer can log it.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

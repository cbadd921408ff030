package jwt

import "context"

type tokenContextKey struct{}

// SetToken stores the raw bearer token in ctx.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// GetToken returns the raw bearer token stored in ctx, if any.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok && token != ""
}

package auth

import "context"

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// WithUserID stores the authenticated user id (the token subject).
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID).(string); ok {
		return v
	}
	return ""
}

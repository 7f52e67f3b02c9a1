package request // import "github.com/Xunop/library-tracker/internal/http/request"

import (
	"context"
	"net/http"

	"github.com/Xunop/library-tracker/internal/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	UserContextKey
)

func getContextStringValue(r *http.Request, key ContextKey) string {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(string); valid {
			return value
		}
	}
	return ""
}

// ClientIP returns the client IP address stored in the context, falling back
// to the request headers when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := getContextStringValue(r, ClientIPContextKey); ip != "" {
		return ip
	}
	return FindClientIP(r)
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPContextKey, ip)
}

// WithUser attaches the authenticated user to the request context.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// User returns the authenticated user, or nil for anonymous requests.
func User(r *http.Request) *model.User {
	if v := r.Context().Value(UserContextKey); v != nil {
		if user, valid := v.(*model.User); valid {
			return user
		}
	}
	return nil
}

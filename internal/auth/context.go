package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/logging"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxDisplayName = "display_name"
)

// Identity is the caller as established by one of the auth middlewares.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// This is set by FirebaseAuthMiddleware or OptionalUser.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentIdentity returns everything known about the caller.
func CurrentIdentity(c *gin.Context) Identity {
	return Identity{
		UID:         UserFirebaseUID(c),
		Email:       c.GetString(CtxEmail),
		DisplayName: c.GetString(CtxDisplayName),
	}
}

type tokenKey struct{}

// ContextWithToken stores the caller's bearer token so upstream clients can forward it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by ContextWithToken.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok {
		return t
	}
	return ""
}

// Carrier holds the caller token and request id of a request so that work
// outliving the request can still forward them upstream.
type Carrier struct {
	token     string
	requestID string
}

func Carry(ctx context.Context) Carrier {
	return Carrier{token: TokenFromContext(ctx), requestID: logging.RequestID(ctx)}
}

// Bind returns ctx carrying c's token and request id.
func (c Carrier) Bind(ctx context.Context) context.Context {
	if c.token != "" {
		ctx = ContextWithToken(ctx, c.token)
	}
	if c.requestID != "" {
		ctx = logging.WithRequestID(ctx, c.requestID)
	}
	return ctx
}

// BearerToken extracts the Bearer token from the Authorization header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

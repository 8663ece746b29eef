package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"appointment-service/pkg/jwt"
	"appointment-service/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	ActorKey   contextKey = "actor"
	TokenIDKey contextKey = "token_id"
)

// RevokedTokenKeyPrefix marks revoked token ids in Redis. Written by the identity service.
const RevokedTokenKeyPrefix = "revoked_token:"

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	log         *logrus.Logger
}

// NewAuthMiddleware validates bearer tokens. redisClient may be nil, in which
// case revocation is not checked.
func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
		log:         log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.log.Debugf("Rejected token: %+v", err)
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if m.redisClient != nil && claims.ID != "" {
			revokedKey := fmt.Sprintf("%s%s", RevokedTokenKeyPrefix, claims.ID)
			revoked, err := m.redisClient.Exists(r.Context(), revokedKey).Result()
			if err != nil {
				m.log.Warnf("Failed to check token revocation: %+v", err)
				response.InternalServerError(w, "Failed to validate token")
				return
			}
			if revoked > 0 {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
		ctx = context.WithValue(ctx, ActorKey, claims.Actor())
		ctx = context.WithValue(ctx, TokenIDKey, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSubjectFromContext extracts the token subject from context
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// GetActorFromContext returns the caller name for audit fields, or "" for unauthenticated contexts.
func GetActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// WithActor returns ctx carrying actor. Used by background callers and tests.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

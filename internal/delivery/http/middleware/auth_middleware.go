package middleware

import (
	"errors"

	"github.com/maulanahdr/komentar/internal/model"
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/maulanahdr/komentar/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	Log               *zap.Logger
	Config            *koanf.Koanf
	CommentRepository *repository.CommentRepository
}

func NewAuthMiddleware(zap *zap.Logger, koanf *koanf.Koanf, commentRepository *repository.CommentRepository) *AuthMiddleware {
	return &AuthMiddleware{
		Log:               zap,
		Config:            koanf,
		CommentRepository: commentRepository,
	}
}

// ProtectedRoute validates the bearer token and resolves the actor's
// identity once, storing it in locals so every handler downstream receives
// it explicitly instead of reading ambient state. Claims win over the cached
// profile, the cache only fills in fields the token omits.
func (middleware *AuthMiddleware) ProtectedRoute() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var validationErr *model.ValidationError

		authHeader := ctx.Get("Authorization")
		tokenString, claims, err := util.ValidateAccessToken(authHeader, middleware.Config.String("JWT_SECRET_KEY"))
		if err != nil {
			if errors.As(err, &validationErr) {
				return util.SendErrorResponseUnauthorized(ctx, err)
			}

			return util.SendErrorResponseInternalServer(ctx, middleware.Log, err)
		}

		identity := &model.Identity{
			UserId:   claims.UserId,
			Username: claims.Username,
			Avatar:   claims.Avatar,
		}

		if identity.Username == "" {
			if cached, ok := middleware.CommentRepository.GetIdentityFromCache(ctx.Context(), claims.UserId); ok {
				identity = cached
			}
		} else {
			middleware.CommentRepository.SetIdentityToCache(ctx.Context(), identity)
		}

		ctx.Locals("identity", identity)
		ctx.Locals("bearer", tokenString)

		middleware.Log.Debug("authenticated request", zap.Int64("userId", identity.UserId))

		return ctx.Next()
	}
}

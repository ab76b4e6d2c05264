package config

import (
	nethttp "net/http"
	"time"

	http "github.com/maulanahdr/komentar/internal/delivery/http"
	"github.com/maulanahdr/komentar/internal/delivery/http/middleware"
	"github.com/maulanahdr/komentar/internal/delivery/http/route"
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/maulanahdr/komentar/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
}

func Server(config *ServerConfig) {
	httpClient := &nethttp.Client{
		Timeout: 10 * time.Second,
	}

	contentBaseURL := config.Config.String("CONTENT_API_URL")

	commentRepository := repository.NewCommentRepository(config.Log, config.DBCache, httpClient, contentBaseURL)
	commentUsecase := usecase.NewCommentUsecase(commentRepository, config.Log, config.Config)
	threadRegistry := usecase.NewThreadRegistry()
	commentController := http.NewCommentController(commentUsecase, threadRegistry, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Log, config.Config, commentRepository)

	routeConfig := route.RouteConfig{
		App:               config.Router,
		AuthMiddleware:    authMiddleware,
		WriteLimiter:      middleware.SetupWriteRateLimiter(config.Log),
		CommentController: commentController,
	}

	routeConfig.SetupRoute()
}

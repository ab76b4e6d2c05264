package route

import (
	"github.com/maulanahdr/komentar/internal/delivery/http"
	"github.com/maulanahdr/komentar/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App               *fiber.App
	AuthMiddleware    *middleware.AuthMiddleware
	WriteLimiter      fiber.Handler
	CommentController *http.CommentController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Reading a thread is public, every write requires a bearer token.
	materialGroup := api.Group("/materials")
	materialGroup.Get("/:materialId/comments", c.CommentController.GetThread)
	materialGroup.Post("/:materialId/comments", c.WriteLimiter, c.AuthMiddleware.ProtectedRoute(), c.CommentController.CreateComment)
	materialGroup.Post("/:materialId/comments/:commentId/replies", c.WriteLimiter, c.AuthMiddleware.ProtectedRoute(), c.CommentController.CreateReply)
	materialGroup.Post("/:materialId/comments/:commentId/likes", c.AuthMiddleware.ProtectedRoute(), c.CommentController.ToggleLike)
}

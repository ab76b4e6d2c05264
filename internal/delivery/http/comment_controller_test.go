package http_test

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/knadh/koanf/v2"
	deliveryhttp "github.com/maulanahdr/komentar/internal/delivery/http"
	"github.com/maulanahdr/komentar/internal/delivery/http/middleware"
	"github.com/maulanahdr/komentar/internal/delivery/http/route"
	"github.com/maulanahdr/komentar/internal/model"
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/maulanahdr/komentar/internal/usecase"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T, upstream nethttp.Handler) *fiber.App {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	rds := redis.NewClient(&redis.Options{
		Addr:       "127.0.0.1:1",
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = rds.Close() })

	log := zap.NewNop()
	config := koanf.New(".")
	require.NoError(t, config.Set("JWT_SECRET_KEY", testSecret))

	commentRepository := repository.NewCommentRepository(log, rds, server.Client(), server.URL)
	commentUsecase := usecase.NewCommentUsecase(commentRepository, log, config)
	threads := usecase.NewThreadRegistry()
	commentController := deliveryhttp.NewCommentController(commentUsecase, threads, log, config)
	authMiddleware := middleware.NewAuthMiddleware(log, config, commentRepository)

	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	routeConfig := route.RouteConfig{
		App:            app,
		AuthMiddleware: authMiddleware,
		WriteLimiter: func(ctx *fiber.Ctx) error {
			return ctx.Next()
		},
		CommentController: commentController,
	}
	routeConfig.SetupRoute()

	return app
}

func signToken(t *testing.T, userId int64, username string) string {
	t.Helper()

	claims := &model.Claims{
		UserId:   userId,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return token
}

func decodeBody(t *testing.T, response *nethttp.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	_ = response.Body.Close()

	var body map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &body))

	return body
}

func TestGetThread(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"comments":[{"id":1,"content":"first","replies":[{"id":2,"content":"nested"}]}],"total":1}`))
	}))

	request := httptest.NewRequest(nethttp.MethodGet, "/api/materials/1/comments", nil)
	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	require.Equal(t, float64(1), body["total"])

	// The flattened render rows include the nested reply.
	rows := body["rows"].([]interface{})
	require.Len(t, rows, 2)
}

func TestGetThreadInvalidMaterialId(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))

	request := httptest.NewRequest(nethttp.MethodGet, "/api/materials/zero/comments", nil)
	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusBadRequest, response.StatusCode)
}

func TestGetThreadServesLastKnownStateOnUpstreamFailure(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	}))

	request := httptest.NewRequest(nethttp.MethodGet, "/api/materials/1/comments", nil)
	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode, "a read failure degrades, it does not fail the request")

	body := decodeBody(t, response)
	require.Equal(t, "Failed to load comments", body["last_error"])
}

func TestCreateCommentRequiresToken(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))

	request := httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments", strings.NewReader(`{"content":"hi"}`))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusUnauthorized, response.StatusCode)
}

func TestCreateComment(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "), "the bearer token is forwarded upstream")
		_, _ = w.Write([]byte(`{"data":{"comment":{"id":42,"content":"hi"}}}`))
	}))

	request := httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments", strings.NewReader(`{"content":"hi"}`))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+signToken(t, 9, "dian"))

	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	require.Equal(t, float64(42), body["id"])
	require.Equal(t, "hi", body["content"])
	require.Equal(t, "dian", body["username"])
	require.Equal(t, false, body["is_optimistic"])
}

func TestCreateCommentUpstreamDown(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusInternalServerError)
	}))

	request := httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments", strings.NewReader(`{"content":"hi"}`))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+signToken(t, 9, "dian"))

	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusBadGateway, response.StatusCode)

	body := decodeBody(t, response)
	errBody := body["error"].(map[string]interface{})
	require.Equal(t, "UPSTREAM_ERROR", errBody["code"])
}

func TestCreateCommentEmptyContent(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))

	request := httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments", strings.NewReader(`{"content":""}`))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+signToken(t, 9, "dian"))

	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusBadRequest, response.StatusCode)
}

func TestCreateReply(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			_, _ = w.Write([]byte(`{"comments":[{"id":1,"content":"root"}],"total":1}`))
		default:
			_, _ = w.Write([]byte(`{"id":2,"content":"pong","parent_id":1}`))
		}
	}))

	// Load the thread first so the parent exists in the forest.
	request := httptest.NewRequest(nethttp.MethodGet, "/api/materials/1/comments", nil)
	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode)

	request = httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments/1/replies", strings.NewReader(`{"content":"pong"}`))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+signToken(t, 9, "dian"))

	response, err = app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	require.Equal(t, float64(2), body["id"])
	require.Equal(t, float64(1), body["parent_id"])
}

func TestToggleLikeUnknownComment(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"comments":[],"total":0}`))
	}))

	request := httptest.NewRequest(nethttp.MethodPost, "/api/materials/1/comments/404/likes", nil)
	request.Header.Set("Authorization", "Bearer "+signToken(t, 9, "dian"))

	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusNotFound, response.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))

	request := httptest.NewRequest(nethttp.MethodGet, "/api/health", nil)
	response, err := app.Test(request, 5000)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	require.Equal(t, "ok", body["status"])
}

package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/maulanahdr/komentar/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUpstreamStatus = fmt.Errorf("upstream returned non-success status")

// CommentRepository talks to the external content API over HTTP and keeps
// two redis caches in front of it: identity profiles and normalized comment
// pages. Cache reads always fail soft, the upstream is the source of truth.
type CommentRepository struct {
	Log     *zap.Logger
	DBCache *redis.Client
	HTTP    *http.Client
	BaseURL string
}

func NewCommentRepository(zap *zap.Logger, dbCache *redis.Client, httpClient *http.Client, baseURL string) *CommentRepository {
	return &CommentRepository{
		Log:     zap,
		DBCache: dbCache,
		HTTP:    httpClient,
		BaseURL: baseURL,
	}
}

type createCommentPayload struct {
	Content  string `json:"content"`
	ParentId *int64 `json:"parent_id,omitempty"`
}

// Content API - HTTP

func (repository *CommentRepository) FetchComments(ctx context.Context, materialId int64, page int64) ([]byte, error) {
	url := fmt.Sprintf("%s/api/materials/%d/comments?page=%d", repository.BaseURL, materialId, page)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return repository.do(request)
}

func (repository *CommentRepository) CreateComment(ctx context.Context, bearer string, materialId int64, content string, parentId *int64) ([]byte, error) {
	url := fmt.Sprintf("%s/api/materials/%d/comments", repository.BaseURL, materialId)

	body, err := sonic.Marshal(createCommentPayload{
		Content:  content,
		ParentId: parentId,
	})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+bearer)

	return repository.do(request)
}

func (repository *CommentRepository) ToggleLike(ctx context.Context, bearer string, commentId int64) ([]byte, error) {
	url := fmt.Sprintf("%s/api/comments/%d/like", repository.BaseURL, commentId)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Authorization", "Bearer "+bearer)

	return repository.do(request)
}

func (repository *CommentRepository) do(request *http.Request) ([]byte, error) {
	response, err := repository.HTTP.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		repository.Log.Warn("content api returned non-success status",
			zap.String("url", request.URL.String()),
			zap.Int("status", response.StatusCode))
		return body, fmt.Errorf("%w: %d", ErrUpstreamStatus, response.StatusCode)
	}

	return body, nil
}

// Redis - Cache

func (repository *CommentRepository) GetIdentityFromCache(ctx context.Context, userId int64) (*model.Identity, bool) {
	key := fmt.Sprintf("identity:profile:%d", userId)

	raw, err := repository.DBCache.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		repository.Log.Debug("identity cache read failed", zap.Error(err))
		return nil, false
	}

	var identity model.Identity
	if err := sonic.Unmarshal([]byte(raw), &identity); err != nil {
		repository.Log.Debug("identity cache record is malformed", zap.Error(err))
		return nil, false
	}

	return &identity, true
}

func (repository *CommentRepository) SetIdentityToCache(ctx context.Context, identity *model.Identity) {
	key := fmt.Sprintf("identity:profile:%d", identity.UserId)

	raw, err := sonic.Marshal(identity)
	if err != nil {
		return
	}

	err = repository.DBCache.Set(ctx, key, raw, 30*time.Minute).Err()
	if err != nil {
		repository.Log.Debug("identity cache write failed", zap.Error(err))
	}
}

func (repository *CommentRepository) GetListFromCache(ctx context.Context, materialId int64, page int64) (model.CommentList, bool) {
	key := fmt.Sprintf("comments:%d:%d", materialId, page)

	var list model.CommentList

	raw, err := repository.DBCache.Get(ctx, key).Result()
	if err == redis.Nil {
		return list, false
	} else if err != nil {
		repository.Log.Debug("comment list cache read failed", zap.Error(err))
		return list, false
	}

	if err := sonic.Unmarshal([]byte(raw), &list); err != nil {
		repository.Log.Debug("comment list cache record is malformed", zap.Error(err))
		return list, false
	}

	return list, true
}

func (repository *CommentRepository) SetListToCache(ctx context.Context, materialId int64, page int64, list model.CommentList) {
	key := fmt.Sprintf("comments:%d:%d", materialId, page)

	raw, err := sonic.Marshal(list)
	if err != nil {
		return
	}

	err = repository.DBCache.Set(ctx, key, raw, 30*time.Second).Err()
	if err != nil {
		repository.Log.Debug("comment list cache write failed", zap.Error(err))
	}
}

func (repository *CommentRepository) InvalidateListCache(ctx context.Context, materialId int64) {
	pattern := fmt.Sprintf("comments:%d:*", materialId)

	// SCAN instead of KEYS, invalidation runs on every confirmed write.
	var keys []string
	iter := repository.DBCache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		repository.Log.Debug("comment list cache invalidation failed", zap.Error(err))
		return
	}

	if len(keys) > 0 {
		err := repository.DBCache.Del(ctx, keys...).Err()
		if err != nil {
			repository.Log.Debug("comment list cache invalidation failed", zap.Error(err))
		}
	}
}

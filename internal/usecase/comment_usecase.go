package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/maulanahdr/komentar/internal/constant"
	"github.com/maulanahdr/komentar/internal/model"
	"github.com/maulanahdr/komentar/internal/normalizer"
	"github.com/maulanahdr/komentar/internal/observability"
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/maulanahdr/komentar/internal/tree"
	"go.uber.org/zap"
)

type CommentUsecase struct {
	CommentRepository *repository.CommentRepository
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewCommentUsecase(commentRepository *repository.CommentRepository, zap *zap.Logger, koanf *koanf.Koanf) *CommentUsecase {
	return &CommentUsecase{
		CommentRepository: commentRepository,
		Log:               zap,
		Config:            koanf,
	}
}

// Optimistic ids are negative and strictly decreasing. Seeding from the wall
// clock keeps them unique across restarts, the CAS loop keeps them unique
// under rapid double submits within one process.
var optimisticClock atomic.Int64

func nextOptimisticId() int64 {
	now := time.Now().UnixNano()
	for {
		last := optimisticClock.Load()
		if now <= last {
			now = last + 1
		}
		if optimisticClock.CompareAndSwap(last, now) {
			return -now
		}
	}
}

func errUnauthenticated() error {
	return &model.ValidationError{
		Code:    constant.ERR_UNATHORIZED_ERROR,
		Message: constant.ERR_UNAUTHENTICATED_MESSAGE,
		Param:   "identity",
	}
}

// LoadComments fetches one page of the material's thread and swaps it into
// the Thread. A fetch failure leaves the existing state untouched and only
// records the error, there is no partial overwrite.
func (usecase *CommentUsecase) LoadComments(ctx context.Context, thread *Thread, page int64) error {
	if page < constant.DEFAULT_PAGE {
		page = constant.DEFAULT_PAGE
	}

	if cached, ok := usecase.CommentRepository.GetListFromCache(ctx, thread.MaterialId, page); ok {
		thread.setList(cached)
		return nil
	}

	body, err := usecase.CommentRepository.FetchComments(ctx, thread.MaterialId, page)
	if err != nil {
		observability.WithContext(ctx, usecase.Log).Warn("failed to fetch comments",
			zap.Int64("materialId", thread.MaterialId),
			zap.Int64("page", page),
			zap.Error(err))
		thread.setError("Failed to load comments")
		return err
	}

	list := normalizer.List(body, thread.MaterialId, page, usecase.Log)

	usecase.CommentRepository.SetListToCache(ctx, thread.MaterialId, page, list)
	thread.setList(list)

	return nil
}

// SubmitComment runs the optimistic add protocol for a root comment: the
// synthesized record is prepended before the network call so the thread
// reflects intent immediately, then reconciled or rolled back.
func (usecase *CommentUsecase) SubmitComment(ctx context.Context, thread *Thread, identity *model.Identity, bearer string, content string) (model.Comment, error) {
	return usecase.submit(ctx, thread, identity, bearer, nil, content)
}

// SubmitReply is the same protocol with the synthesized record appended to
// the parent's replies. A parent missing from the thread makes the tree
// insert a silent no-op, and the id-keyed reconciliation steps no-op too.
func (usecase *CommentUsecase) SubmitReply(ctx context.Context, thread *Thread, identity *model.Identity, bearer string, parentId int64, content string) (model.Comment, error) {
	return usecase.submit(ctx, thread, identity, bearer, &parentId, content)
}

func (usecase *CommentUsecase) submit(ctx context.Context, thread *Thread, identity *model.Identity, bearer string, parentId *int64, content string) (model.Comment, error) {
	if identity == nil {
		return model.Comment{}, errUnauthenticated()
	}

	if content == "" {
		return model.Comment{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Content is required",
			Param:   "content",
		}
	}

	if len(content) > constant.MAX_CONTENT_LENGTH {
		return model.Comment{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Content is too long",
			Param:   "content",
		}
	}

	synthesized := usecase.synthesize(ctx, identity, thread.MaterialId, parentId, content)

	// Apply before the network call is issued, that is the whole point.
	thread.update(func(forest []model.Comment) []model.Comment {
		if parentId == nil {
			return tree.InsertRoot(forest, synthesized, true)
		}
		return tree.InsertReply(forest, *parentId, synthesized)
	})

	body, err := usecase.CommentRepository.CreateComment(ctx, bearer, thread.MaterialId, content, parentId)
	if err != nil {
		thread.update(func(forest []model.Comment) []model.Comment {
			return tree.RemoveById(forest, synthesized.Id)
		})
		thread.setError("Failed to submit comment")
		return model.Comment{}, err
	}

	raw, ok := normalizer.ExtractComment(body, usecase.Log)
	if ok {
		// A bare status envelope decodes as an object too; without a server
		// id there is nothing to confirm against.
		_, ok = normalizer.Int64Field(raw, "id")
	}
	if !ok {
		// Keep the node optimistic rather than confirm it without a server
		// id, the next list fetch reconciles it.
		observability.WithContext(ctx, usecase.Log).Warn("create response carried no comment record",
			zap.Int64("materialId", thread.MaterialId))
		return synthesized, nil
	}

	reconciled := reconcile(synthesized, raw, usecase.Log)

	thread.update(func(forest []model.Comment) []model.Comment {
		return tree.ReplaceById(forest, synthesized.Id, reconciled)
	})

	usecase.CommentRepository.InvalidateListCache(ctx, thread.MaterialId)

	return reconciled, nil
}

// ToggleLike flips the viewer's like state optimistically and converges to
// the server's answer. The revert path is a symmetric compensating update,
// not a snapshot restore. Concurrent toggles on one id are not serialized,
// the last response wins.
func (usecase *CommentUsecase) ToggleLike(ctx context.Context, thread *Thread, identity *model.Identity, bearer string, commentId int64) error {
	if identity == nil {
		return errUnauthenticated()
	}

	original, found := tree.FindById(thread.Roots(), commentId)
	if !found {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Comment not found",
			Param:   "commentId",
		}
	}

	liked := !original.IsLiked
	var delta int64 = 1
	if !liked {
		delta = -1
	}

	thread.update(func(forest []model.Comment) []model.Comment {
		return tree.UpdateLikeState(forest, commentId, liked, delta)
	})

	body, err := usecase.CommentRepository.ToggleLike(ctx, bearer, commentId)
	if err != nil {
		thread.update(func(forest []model.Comment) []model.Comment {
			return tree.UpdateLikeState(forest, commentId, original.IsLiked, -delta)
		})
		thread.setError("Failed to update like")
		return err
	}

	raw, ok := normalizer.ExtractComment(body, usecase.Log)
	if !ok {
		// Success with no payload, the optimistic state is the final truth.
		return nil
	}

	reconciled := reconcile(original, raw, usecase.Log)

	thread.update(func(forest []model.Comment) []model.Comment {
		return tree.ReplaceById(forest, commentId, reconciled)
	})

	usecase.CommentRepository.InvalidateListCache(ctx, thread.MaterialId)

	return nil
}

// synthesize builds the transient optimistic record from the actor's known
// identity, falling back to the cached profile and then to the anonymous
// default when the live identity is incomplete.
func (usecase *CommentUsecase) synthesize(ctx context.Context, identity *model.Identity, materialId int64, parentId *int64, content string) model.Comment {
	resolved := *identity
	if resolved.Username == "" {
		if cached, ok := usecase.CommentRepository.GetIdentityFromCache(ctx, identity.UserId); ok {
			resolved = *cached
		}
	}
	if resolved.Username == "" {
		resolved.Username = constant.DEFAULT_USERNAME
	}

	now := time.Now().UTC()

	return model.Comment{
		Id:           nextOptimisticId(),
		MaterialId:   materialId,
		UserId:       resolved.UserId,
		Username:     resolved.Username,
		UserAvatar:   resolved.Avatar,
		Content:      content,
		ParentId:     parentId,
		CreatedAt:    now,
		UpdatedAt:    now,
		Replies:      []model.Comment{},
		IsOptimistic: true,
	}
}

// reconcile builds the authoritative record from a local base and the raw
// server payload. Precedence per field: the server's value wherever the
// payload actually carries it, the base's value wherever it does not. A
// partial server response can therefore never blank out fields the user
// already sees. IsOptimistic is forced off unconditionally, together with
// the server-assigned id this keeps the sign/flag invariant intact.
func reconcile(base model.Comment, raw map[string]interface{}, log *zap.Logger) model.Comment {
	merged := base

	if id, ok := normalizer.Int64Field(raw, "id"); ok {
		merged.Id = id
	}
	if materialId, ok := normalizer.Int64Field(raw, "material_id"); ok {
		merged.MaterialId = materialId
	}
	if userId, ok := normalizer.Int64Field(raw, "user_id"); ok {
		merged.UserId = userId
	}
	if username, ok := normalizer.StringField(raw, "username"); ok {
		merged.Username = username
	}
	if avatar, ok := normalizer.StringField(raw, "user_avatar"); ok {
		merged.UserAvatar = &avatar
	}
	if content, ok := normalizer.StringField(raw, "content"); ok {
		merged.Content = content
	}
	if parentId, ok := normalizer.Int64Field(raw, "parent_id"); ok {
		merged.ParentId = &parentId
	}
	if likesCount, ok := normalizer.Int64Field(raw, "likes_count"); ok {
		merged.LikesCount = likesCount
		if merged.LikesCount < 0 {
			merged.LikesCount = 0
		}
	}
	if isLiked, ok := normalizer.BoolField(raw, "is_liked"); ok {
		merged.IsLiked = isLiked
	}
	if createdAt, ok := normalizer.TimeField(raw, "created_at"); ok {
		merged.CreatedAt = createdAt
	}
	if updatedAt, ok := normalizer.TimeField(raw, "updated_at"); ok {
		merged.UpdatedAt = updatedAt
	}
	if replies, ok := raw["replies"].([]interface{}); ok {
		merged.Replies = make([]model.Comment, 0, len(replies))
		for _, reply := range replies {
			replyMap, _ := reply.(map[string]interface{})
			merged.Replies = append(merged.Replies, normalizer.Comment(replyMap, merged.MaterialId, log))
		}
	}

	merged.IsOptimistic = false

	return merged
}

package http

import (
	"errors"
	"strconv"

	"github.com/maulanahdr/komentar/internal/constant"
	"github.com/maulanahdr/komentar/internal/middleware"
	"github.com/maulanahdr/komentar/internal/model"
	"github.com/maulanahdr/komentar/internal/render"
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/maulanahdr/komentar/internal/usecase"
	"github.com/maulanahdr/komentar/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type CommentController struct {
	CommentUsecase *usecase.CommentUsecase
	Threads        *usecase.ThreadRegistry
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewCommentController(commentUsecase *usecase.CommentUsecase, threads *usecase.ThreadRegistry, zap *zap.Logger, koanf *koanf.Koanf) *CommentController {
	return &CommentController{
		CommentUsecase: commentUsecase,
		Threads:        threads,
		Log:            zap,
		Config:         koanf,
	}
}

func (controller *CommentController) GetThread(ctx *fiber.Ctx) error {
	materialId, err := parseId(ctx.Params("materialId"), "materialId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	page := int64(ctx.QueryInt("page", constant.DEFAULT_PAGE))
	thread := controller.Threads.Get(materialId)

	// A fetch failure keeps whatever state the thread already holds, the
	// response carries the error message instead of failing the request.
	err = controller.CommentUsecase.LoadComments(ctx.Context(), thread, page)
	if err != nil {
		middleware.GetLoggerFromContext(ctx).Warn("comment list fetch failed, serving last known state",
			zap.Int64("materialId", materialId),
			zap.Error(err))
	}

	snapshot := thread.Snapshot()

	replyTargetId := int64(ctx.QueryInt("reply_to", 0))
	draft := ctx.Query("draft", "")
	maxLevel := ctx.QueryInt("max_level", constant.DEFAULT_MAX_REPLY_LEVEL)

	return util.SendSuccessResponseWithData(ctx, fiber.Map{
		"items":        snapshot.Items,
		"total":        snapshot.Total,
		"pages":        snapshot.Pages,
		"current_page": snapshot.CurrentPage,
		"last_error":   snapshot.LastError,
		"rows":         render.Rows(snapshot.Items, replyTargetId, draft, maxLevel),
	})
}

func (controller *CommentController) CreateComment(ctx *fiber.Ctx) error {
	identity := ctx.Locals("identity").(*model.Identity)
	bearer := ctx.Locals("bearer").(string)

	materialId, err := parseId(ctx.Params("materialId"), "materialId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var payload model.CreateCommentRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	requestId := uuid.New()
	controller.Log.Debug("submitting comment",
		zap.String("requestId", requestId.String()),
		zap.Int64("materialId", materialId),
		zap.Int64("userId", identity.UserId))

	thread := controller.Threads.Get(materialId)

	comment, err := controller.CommentUsecase.SubmitComment(ctx.Context(), thread, identity, bearer, payload.Content)
	if err != nil {
		return controller.sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, comment)
}

func (controller *CommentController) CreateReply(ctx *fiber.Ctx) error {
	identity := ctx.Locals("identity").(*model.Identity)
	bearer := ctx.Locals("bearer").(string)

	materialId, err := parseId(ctx.Params("materialId"), "materialId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	parentId, err := parseId(ctx.Params("commentId"), "commentId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var payload model.CreateReplyRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	thread := controller.Threads.Get(materialId)

	comment, err := controller.CommentUsecase.SubmitReply(ctx.Context(), thread, identity, bearer, parentId, payload.Content)
	if err != nil {
		return controller.sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, comment)
}

func (controller *CommentController) ToggleLike(ctx *fiber.Ctx) error {
	identity := ctx.Locals("identity").(*model.Identity)
	bearer := ctx.Locals("bearer").(string)

	materialId, err := parseId(ctx.Params("materialId"), "materialId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	commentId, err := parseId(ctx.Params("commentId"), "commentId")
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	thread := controller.Threads.Get(materialId)

	err = controller.CommentUsecase.ToggleLike(ctx.Context(), thread, identity, bearer, commentId)
	if err != nil {
		return controller.sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *CommentController) sendUsecaseError(ctx *fiber.Ctx, err error) error {
	var validationErr *model.ValidationError

	if errors.As(err, &validationErr) {
		switch validationErr.Code {
		case constant.ERR_UNATHORIZED_ERROR:
			return util.SendErrorResponseUnauthorized(ctx, err)
		case constant.ERR_NOT_FOUND_ERROR:
			return util.SendErrorResponseNotFound(ctx, err)
		default:
			return util.SendErrorResponse(ctx, err)
		}
	}

	if errors.Is(err, repository.ErrUpstreamStatus) {
		return util.SendErrorResponseBadGateway(ctx, controller.Log, err)
	}

	return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
}

func parseId(param string, name string) (int64, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid " + name,
			Param:   name,
		}
	}

	return id, nil
}

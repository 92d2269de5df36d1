// Package progresshdl xử lý các request HTTP cho domain progress.
package progresshdl

import (
	basehdl "edu_tube/internal/api/base/handler"
	progressdto "edu_tube/internal/api/progress/dto"
	models "edu_tube/internal/api/progress/models"
	progresssvc "edu_tube/internal/api/progress/service"
	"edu_tube/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressHandler xử lý các request tiến độ học
type ProgressHandler struct {
	*basehdl.BaseHandler[models.Progress, progressdto.ProgressUpdateInput, progressdto.ProgressUpdateInput]
	progressService *progresssvc.ProgressService
}

// NewProgressHandler tạo instance mới của ProgressHandler
func NewProgressHandler(progressService *progresssvc.ProgressService) *ProgressHandler {
	baseHandler := basehdl.NewBaseHandler[models.Progress, progressdto.ProgressUpdateInput, progressdto.ProgressUpdateInput](progressService)
	return &ProgressHandler{
		BaseHandler:     baseHandler,
		progressService: progressService,
	}
}

// requireUserID lấy userID đã được AuthMiddleware lưu vào context.
func (h *ProgressHandler) requireUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := c.Locals("user_id")
	if userID == nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil)
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err)
	}
	return objID, nil
}

// parseVideoID lấy và validate video ID từ URL param.
func (h *ProgressHandler) parseVideoID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := c.Params("id")
	if id == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationInput, "Video ID không được để trống", common.StatusBadRequest, nil)
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Video ID không hợp lệ", common.StatusBadRequest, err)
	}
	return objID, nil
}

// HandleUpdateProgress cập nhật tiến độ xem video của người dùng hiện tại
func (h *ProgressHandler) HandleUpdateProgress(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input progressdto.ProgressUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		progress, err := h.progressService.RecordWatchTime(c.Context(), userID, videoID, &input)
		h.HandleResponse(c, progress, err)
		return nil
	})
}

// HandleSubmitQuiz chấm bài quiz và ghi lại lần làm bài
func (h *ProgressHandler) HandleSubmitQuiz(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input progressdto.QuizSubmitInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.progressService.SubmitQuiz(c.Context(), userID, videoID, &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleAddNote thêm ghi chú vào tiến độ học
func (h *ProgressHandler) HandleAddNote(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input progressdto.NoteAddInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		progress, err := h.progressService.AddNote(c.Context(), userID, videoID, &input)
		h.HandleResponse(c, progress, err)
		return nil
	})
}

// HandleAddBookmark thêm đánh dấu vào tiến độ học
func (h *ProgressHandler) HandleAddBookmark(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input progressdto.BookmarkAddInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		progress, err := h.progressService.AddBookmark(c.Context(), userID, videoID, &input)
		h.HandleResponse(c, progress, err)
		return nil
	})
}

// HandleGetProgress trả về toàn bộ tiến độ học của người dùng hiện tại kèm thống kê
func (h *ProgressHandler) HandleGetProgress(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Query param video (optional): chỉ lấy tiến độ của một video
		var videoID *primitive.ObjectID
		if v := c.Query("video"); v != "" {
			objID, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Video ID không hợp lệ", common.StatusBadRequest, err))
				return nil
			}
			videoID = &objID
		}

		items, stats, err := h.progressService.GetUserProgress(c.Context(), userID, videoID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"progress": items, "stats": stats}, nil)
		return nil
	})
}

// Package aihdl xử lý các request HTTP cho domain ai.
package aihdl

import (
	aidto "edu_tube/internal/api/ai/dto"
	aisvc "edu_tube/internal/api/ai/service"
	basehdl "edu_tube/internal/api/base/handler"
	videomodels "edu_tube/internal/api/video/models"
	videosvc "edu_tube/internal/api/video/service"
	"edu_tube/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIHandler xử lý các request liên quan đến nội dung AI của video
type AIHandler struct {
	*basehdl.BaseHandler[videomodels.Video, aidto.AskQuestionInput, aidto.AskQuestionInput]
	enrichmentService *aisvc.EnrichmentService
	videoService      *videosvc.VideoService
}

// NewAIHandler tạo instance mới của AIHandler
func NewAIHandler(enrichmentService *aisvc.EnrichmentService, videoService *videosvc.VideoService) *AIHandler {
	baseHandler := basehdl.NewBaseHandler[videomodels.Video, aidto.AskQuestionInput, aidto.AskQuestionInput](videoService)
	return &AIHandler{
		BaseHandler:       baseHandler,
		enrichmentService: enrichmentService,
		videoService:      videoService,
	}
}

// requireUserID lấy userID đã được AuthMiddleware lưu vào context.
func (h *AIHandler) requireUserID(c fiber.Ctx) (primitive.ObjectID, error) {
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
func (h *AIHandler) parseVideoID(c fiber.Ctx) (primitive.ObjectID, error) {
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

// HandleProcess chạy pipeline xử lý AI cho video (chỉ chủ sở hữu).
// Pipeline chạy đồng bộ trong request; client có thể poll /status từ request khác
// để theo dõi tiến độ từng bước.
func (h *AIHandler) HandleProcess(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		requesterID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.enrichmentService.Enrich(c.Context(), videoID, requesterID)
		h.HandleResponse(c, video, err)
		return nil
	})
}

// HandleGetStatus trả về trạng thái xử lý AI của video
func (h *AIHandler) HandleGetStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		status, err := h.enrichmentService.GetStatus(c.Context(), videoID)
		h.HandleResponse(c, status, err)
		return nil
	})
}

// HandleGetTranscript trả về transcript của video
func (h *AIHandler) HandleGetTranscript(c fiber.Ctx) error {
	return h.handleGetField(c, func(v *videomodels.Video) interface{} {
		return fiber.Map{"transcript": v.Transcript}
	})
}

// HandleGetSummary trả về summary của video
func (h *AIHandler) HandleGetSummary(c fiber.Ctx) error {
	return h.handleGetField(c, func(v *videomodels.Video) interface{} {
		return fiber.Map{"summary": v.Summary}
	})
}

// HandleGetChapters trả về danh sách chương của video
func (h *AIHandler) HandleGetChapters(c fiber.Ctx) error {
	return h.handleGetField(c, func(v *videomodels.Video) interface{} {
		return fiber.Map{"chapters": v.Chapters}
	})
}

// HandleGetQuiz trả về bộ câu hỏi trắc nghiệm của video
func (h *AIHandler) HandleGetQuiz(c fiber.Ctx) error {
	return h.handleGetField(c, func(v *videomodels.Video) interface{} {
		return fiber.Map{"quiz": v.Quiz}
	})
}

// HandleGetInsights trả về toàn bộ nội dung AI của video
func (h *AIHandler) HandleGetInsights(c fiber.Ctx) error {
	return h.handleGetField(c, func(v *videomodels.Video) interface{} {
		return fiber.Map{
			"transcript":         v.Transcript,
			"summary":            v.Summary,
			"chapters":           v.Chapters,
			"quiz":               v.Quiz,
			"keywords":           v.Keywords,
			"learningObjectives": v.LearningObjectives,
			"aiProcessingStatus": v.AIProcessingStatus,
		}
	})
}

// handleGetField đọc video và trả về phần nội dung do extract chọn ra
func (h *AIHandler) handleGetField(c fiber.Ctx, extract func(*videomodels.Video) interface{}) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.videoService.BaseServiceMongoImpl.FindOneById(c.Context(), videoID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, extract(&video), nil)
		return nil
	})
}

// HandleAsk trả lời câu hỏi của người học về nội dung video
func (h *AIHandler) HandleAsk(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input aidto.AskQuestionInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		answer, err := h.enrichmentService.AskQuestion(c.Context(), videoID, input.Question)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"answer": answer}, nil)
		return nil
	})
}

// HandleLearningPlan tạo lộ trình học cá nhân hóa từ nội dung video
func (h *AIHandler) HandleLearningPlan(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		plan, err := h.enrichmentService.GenerateLearningPlan(c.Context(), videoID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"learningPlan": plan}, nil)
		return nil
	})
}

// Package videohdl xử lý các request HTTP cho domain video.
package videohdl

import (
	"fmt"
	"strconv"

	authmodels "edu_tube/internal/api/auth/models"
	basehdl "edu_tube/internal/api/base/handler"
	videodto "edu_tube/internal/api/video/dto"
	models "edu_tube/internal/api/video/models"
	videosvc "edu_tube/internal/api/video/service"
	"edu_tube/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoHandler xử lý các request quản lý video
type VideoHandler struct {
	*basehdl.BaseHandler[models.Video, videodto.VideoCreateInput, videodto.VideoUpdateInput]
	videoService *videosvc.VideoService
}

// NewVideoHandler tạo instance mới của VideoHandler
func NewVideoHandler(videoService *videosvc.VideoService) (*VideoHandler, error) {
	if videoService == nil {
		var err error
		videoService, err = videosvc.NewVideoService()
		if err != nil {
			return nil, fmt.Errorf("failed to create video service: %v", err)
		}
	}
	baseHandler := basehdl.NewBaseHandler[models.Video, videodto.VideoCreateInput, videodto.VideoUpdateInput](videoService)
	return &VideoHandler{
		BaseHandler:  baseHandler,
		videoService: videoService,
	}, nil
}

// requireUserID lấy userID đã được AuthMiddleware lưu vào context.
func (h *VideoHandler) requireUserID(c fiber.Ctx) (primitive.ObjectID, error) {
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
func (h *VideoHandler) parseVideoID(c fiber.Ctx) (primitive.ObjectID, error) {
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

// HandlePublish xử lý đăng video mới
func (h *VideoHandler) HandlePublish(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input videodto.VideoCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.videoService.Publish(c.Context(), ownerID, &input)
		h.HandleResponse(c, video, err)
		return nil
	})
}

// HandleList xử lý lấy danh sách video với lọc/sắp xếp/phân trang
func (h *VideoHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

		input := videodto.VideoListInput{
			Page:       page,
			Limit:      limit,
			Query:      c.Query("query"),
			SortBy:     c.Query("sortBy"),
			SortType:   c.Query("sortType"),
			Category:   c.Query("category"),
			Difficulty: c.Query("difficulty"),
			OwnerID:    c.Query("ownerId"),
		}

		result, err := h.videoService.List(c.Context(), &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGetByID xử lý lấy chi tiết một video
func (h *VideoHandler) HandleGetByID(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.videoService.BaseServiceMongoImpl.FindOneById(c.Context(), videoID)
		h.HandleResponse(c, video, err)
		return nil
	})
}

// HandleUpdate xử lý cập nhật thông tin video (chỉ chủ sở hữu)
func (h *VideoHandler) HandleUpdate(c fiber.Ctx) error {
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
		var input videodto.VideoUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.videoService.Update(c.Context(), videoID, requesterID, &input)
		h.HandleResponse(c, video, err)
		return nil
	})
}

// HandleDelete xử lý xóa video (chỉ chủ sở hữu)
func (h *VideoHandler) HandleDelete(c fiber.Ctx) error {
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
		err = h.videoService.Delete(c.Context(), videoID, requesterID)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleTogglePublish xử lý đảo trạng thái xuất bản của video (chỉ chủ sở hữu)
func (h *VideoHandler) HandleTogglePublish(c fiber.Ctx) error {
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
		isPublished, err := h.videoService.TogglePublish(c.Context(), videoID, requesterID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"isPublished": isPublished}, nil)
		return nil
	})
}

// HandleRecordView xử lý ghi nhận lượt xem của người dùng hiện tại
func (h *VideoHandler) HandleRecordView(c fiber.Ctx) error {
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
		views, err := h.videoService.RecordView(c.Context(), videoID, userID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"views": views}, nil)
		return nil
	})
}

// HandleUpdateMetrics xử lý cập nhật chỉ số phân tích của video
func (h *VideoHandler) HandleUpdateMetrics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		videoID, err := h.parseVideoID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input videodto.VideoMetricsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		video, err := h.videoService.UpdateMetrics(c.Context(), videoID, &input)
		h.HandleResponse(c, video, err)
		return nil
	})
}

// HandleChannelStats xử lý lấy thống kê kênh của người dùng hiện tại
func (h *VideoHandler) HandleChannelStats(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		stats, err := h.videoService.ChannelStats(c.Context(), ownerID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if u, ok := c.Locals("user").(authmodels.User); ok {
			stats.OwnerName = u.FullName
		}
		h.HandleResponse(c, stats, nil)
		return nil
	})
}

// Package router đăng ký các route thuộc domain video.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"edu_tube/internal/api/middleware"
	apirouter "edu_tube/internal/api/router"
	videohdl "edu_tube/internal/api/video/handler"
	videosvc "edu_tube/internal/api/video/service"
)

// Register đăng ký các route video lên v1. Tất cả route video đều yêu cầu xác thực.
// videoService được truyền từ ngoài vào để dùng chung với domain ai và progress.
func Register(v1 fiber.Router, r *apirouter.Router, videoService *videosvc.VideoService) error {
	videoHandler, err := videohdl.NewVideoHandler(videoService)
	if err != nil {
		return fmt.Errorf("failed to create video handler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	mws := []fiber.Handler{authMiddleware}

	// Các route tĩnh đăng ký trước route có param :id
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "GET", "/list", mws, videoHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "GET", "/channel/stats", mws, videoHandler.HandleChannelStats)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "POST", "/publish", mws, videoHandler.HandlePublish)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "GET", "/:id", mws, videoHandler.HandleGetByID)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "PUT", "/:id", mws, videoHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "DELETE", "/:id", mws, videoHandler.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "PATCH", "/toggle-publish/:id", mws, videoHandler.HandleTogglePublish)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "POST", "/view/:id", mws, videoHandler.HandleRecordView)
	apirouter.RegisterRouteWithMiddleware(v1, "/video", "POST", "/metrics/:id", mws, videoHandler.HandleUpdateMetrics)

	return nil
}

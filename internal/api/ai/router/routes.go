// Package router đăng ký các route thuộc domain ai.
package router

import (
	"github.com/gofiber/fiber/v3"

	aihdl "edu_tube/internal/api/ai/handler"
	aisvc "edu_tube/internal/api/ai/service"
	"edu_tube/internal/api/middleware"
	apirouter "edu_tube/internal/api/router"
	videosvc "edu_tube/internal/api/video/service"
)

// Register đăng ký các route ai lên v1. Tất cả route ai đều yêu cầu xác thực.
func Register(v1 fiber.Router, r *apirouter.Router, enrichmentService *aisvc.EnrichmentService, videoService *videosvc.VideoService) error {
	aiHandler := aihdl.NewAIHandler(enrichmentService, videoService)

	authMiddleware := middleware.AuthMiddleware()
	mws := []fiber.Handler{authMiddleware}

	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "POST", "/process/:id", mws, aiHandler.HandleProcess)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/status/:id", mws, aiHandler.HandleGetStatus)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/transcript/:id", mws, aiHandler.HandleGetTranscript)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/summary/:id", mws, aiHandler.HandleGetSummary)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/chapters/:id", mws, aiHandler.HandleGetChapters)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/quiz/:id", mws, aiHandler.HandleGetQuiz)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "GET", "/insights/:id", mws, aiHandler.HandleGetInsights)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "POST", "/ask/:id", mws, aiHandler.HandleAsk)
	apirouter.RegisterRouteWithMiddleware(v1, "/ai", "POST", "/learning-plan/:id", mws, aiHandler.HandleLearningPlan)

	return nil
}

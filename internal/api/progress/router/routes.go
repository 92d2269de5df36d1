// Package router đăng ký các route thuộc domain progress.
package router

import (
	"github.com/gofiber/fiber/v3"

	"edu_tube/internal/api/middleware"
	progresshdl "edu_tube/internal/api/progress/handler"
	progresssvc "edu_tube/internal/api/progress/service"
	apirouter "edu_tube/internal/api/router"
)

// Register đăng ký các route progress lên v1. Tất cả route progress đều yêu cầu xác thực.
func Register(v1 fiber.Router, r *apirouter.Router, progressService *progresssvc.ProgressService) error {
	progressHandler := progresshdl.NewProgressHandler(progressService)

	authMiddleware := middleware.AuthMiddleware()
	mws := []fiber.Handler{authMiddleware}

	apirouter.RegisterRouteWithMiddleware(v1, "/progress", "GET", "/", mws, progressHandler.HandleGetProgress)
	apirouter.RegisterRouteWithMiddleware(v1, "/progress", "PUT", "/video/:id", mws, progressHandler.HandleUpdateProgress)
	apirouter.RegisterRouteWithMiddleware(v1, "/progress", "POST", "/quiz/:id", mws, progressHandler.HandleSubmitQuiz)
	apirouter.RegisterRouteWithMiddleware(v1, "/progress", "POST", "/note/:id", mws, progressHandler.HandleAddNote)
	apirouter.RegisterRouteWithMiddleware(v1, "/progress", "POST", "/bookmark/:id", mws, progressHandler.HandleAddBookmark)

	return nil
}

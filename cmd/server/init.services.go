package main

import (
	aiprovider "edu_tube/internal/api/ai/provider"
	aisvc "edu_tube/internal/api/ai/service"
	authsvc "edu_tube/internal/api/auth/service"
	progresssvc "edu_tube/internal/api/progress/service"
	videosvc "edu_tube/internal/api/video/service"

	"github.com/sirupsen/logrus"
)

// appServices chứa các service dùng chung giữa các domain.
// videoService được share cho ai (enrichment store) và progress (tra cứu video, cascade delete).
type appServices struct {
	userService       *authsvc.UserService
	videoService      *videosvc.VideoService
	progressService   *progresssvc.ProgressService
	enrichmentService *aisvc.EnrichmentService
}

// InitServices khởi tạo các service theo đúng thứ tự phụ thuộc
func InitServices() *appServices {
	userService, err := authsvc.NewUserService()
	if err != nil {
		logrus.Fatalf("Failed to create user service: %v", err)
	}

	videoService, err := videosvc.NewVideoService()
	if err != nil {
		logrus.Fatalf("Failed to create video service: %v", err)
	}

	// NewProgressService đăng ký hàm xóa tiến độ theo video vào videoService
	progressService, err := progresssvc.NewProgressService(videoService, userService)
	if err != nil {
		logrus.Fatalf("Failed to create progress service: %v", err)
	}

	enrichmentService := aisvc.NewEnrichmentService(videoService, aiprovider.NewOpenAIProvider())

	logrus.Info("Initialized domain services")
	return &appServices{
		userService:       userService,
		videoService:      videoService,
		progressService:   progressService,
		enrichmentService: enrichmentService,
	}
}

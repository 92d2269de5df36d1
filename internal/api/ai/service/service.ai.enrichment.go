// Package aisvc - service xử lý nội dung AI cho video (enrichment pipeline).
package aisvc

import (
	"context"
	"errors"
	"time"

	aiprovider "edu_tube/internal/api/ai/provider"
	videomodels "edu_tube/internal/api/video/models"
	"edu_tube/internal/common"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoStore là phần của video service mà enrichment pipeline cần dùng.
// VideoService triển khai đầy đủ interface này.
type VideoStore interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (videomodels.Video, error)
	ClaimForEnrichment(ctx context.Context, videoID primitive.ObjectID) (*videomodels.Video, error)
	ApplyEnrichmentUpdate(ctx context.Context, videoID primitive.ObjectID, set map[string]interface{}) (*videomodels.Video, error)
	FindStaleProcessing(ctx context.Context, cutoffMilli int64) ([]videomodels.Video, error)
}

// EnrichmentService điều phối pipeline sinh nội dung AI cho video:
// transcript -> summary -> chapters -> quiz, sau đó keywords + learning objectives chạy song song.
// Trạng thái từng bước được ghi xuống DB ngay khi chuyển trạng thái, nên client có thể
// poll trạng thái trong khi pipeline chạy, và janitor có thể reconcile khi process chết giữa chừng.
type EnrichmentService struct {
	store    VideoStore
	provider aiprovider.ContentProvider
}

// NewEnrichmentService tạo mới EnrichmentService
func NewEnrichmentService(store VideoStore, provider aiprovider.ContentProvider) *EnrichmentService {
	return &EnrichmentService{
		store:    store,
		provider: provider,
	}
}

// enrichStep là một bước có thứ tự trong pipeline. run trả về giá trị nội dung
// để ghi vào trường tương ứng, lỗi trả về làm dừng pipeline.
type enrichStep struct {
	field string
	run   func(ctx context.Context) (interface{}, error)
}

// Enrich chạy toàn bộ pipeline sinh nội dung AI cho một video.
// Chỉ chủ sở hữu video mới được phép chạy. Claim bằng CAS đảm bảo tại một thời điểm
// chỉ có một phiên enrich trên mỗi video; phiên thứ hai nhận lỗi conflict.
func (s *EnrichmentService) Enrich(ctx context.Context, videoID, requesterID primitive.ObjectID) (*videomodels.Video, error) {
	video, err := s.store.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Owner != requesterID {
		return nil, common.NewError(common.ErrCodeAuthOwnership, "Không có quyền xử lý AI cho video này", common.StatusForbidden, nil)
	}

	claimed, err := s.store.ClaimForEnrichment(ctx, videoID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "owner_id": requesterID.Hex()}).Info("Enrich: Bắt đầu pipeline xử lý AI")

	// transcript là đầu vào của mọi bước sau, closure của từng bước đọc biến này
	var transcript string
	steps := []enrichStep{
		{field: videomodels.AIFieldTranscript, run: func(ctx context.Context) (interface{}, error) {
			text, err := s.provider.GenerateTranscript(ctx, claimed.VideoFile)
			if err == nil {
				transcript = text
			}
			return text, err
		}},
		{field: videomodels.AIFieldSummary, run: func(ctx context.Context) (interface{}, error) {
			return s.provider.GenerateSummary(ctx, transcript)
		}},
		{field: videomodels.AIFieldChapters, run: func(ctx context.Context) (interface{}, error) {
			return s.provider.DetectChapters(ctx, transcript)
		}},
		{field: videomodels.AIFieldQuiz, run: func(ctx context.Context) (interface{}, error) {
			return s.provider.GenerateQuiz(ctx, transcript)
		}},
	}

	current := claimed
	for i, step := range steps {
		value, err := step.run(ctx)
		if err == nil && emptyStepResult(value) {
			// completed chỉ đi với trường đã có nội dung; payload hợp lệ
			// nhưng rỗng bị coi là lỗi provider
			err = &aiprovider.ProviderError{Op: step.field, Err: errors.New("kết quả rỗng")}
		}
		if err != nil {
			return nil, s.failEnrichment(ctx, videoID, step.field, err)
		}

		set := map[string]interface{}{
			step.field: value,
			"aiProcessingStatus." + step.field: videomodels.AIStatusCompleted,
		}
		// Chuyển bước kế tiếp sang processing trong cùng một lần ghi
		if i+1 < len(steps) {
			set["aiProcessingStatus."+steps[i+1].field] = videomodels.AIStatusProcessing
		}

		current, err = s.store.ApplyEnrichmentUpdate(ctx, videoID, set)
		if err != nil {
			return nil, err
		}
	}

	// Keywords và learning objectives không có trạng thái riêng, chạy song song, fail-fast
	var keywords, objectives []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		kw, err := s.provider.ExtractKeywords(gctx, transcript)
		if err == nil {
			keywords = kw
		}
		return err
	})
	g.Go(func() error {
		obj, err := s.provider.GenerateLearningObjectives(gctx, transcript)
		if err == nil {
			objectives = obj
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.failEnrichment(ctx, videoID, "keywords/objectives", err)
	}

	current, err = s.store.ApplyEnrichmentUpdate(ctx, videoID, map[string]interface{}{
		"keywords":           keywords,
		"learningObjectives": objectives,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"video_id": videoID.Hex()}).Info("Enrich: Pipeline xử lý AI hoàn tất")
	return current, nil
}

// emptyStepResult kiểm tra kết quả của một bước có rỗng không
func emptyStepResult(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case []videomodels.Chapter:
		return len(v) == 0
	case []videomodels.QuizQuestion:
		return len(v) == 0
	}
	return value == nil
}

// failEnrichment ghi lại trạng thái cuối khi pipeline lỗi giữa chừng:
// mỗi trường completed nếu nội dung đã có, failed nếu còn rỗng. Lỗi gốc được
// wrap và trả về cho caller.
func (s *EnrichmentService) failEnrichment(ctx context.Context, videoID primitive.ObjectID, failedStep string, cause error) error {
	logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "step": failedStep, "error": cause.Error()}).Error("Enrich: Pipeline xử lý AI thất bại")

	video, err := s.store.FindOneById(ctx, videoID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "error": err.Error()}).Error("Enrich: Không đọc được video để chốt trạng thái lỗi")
		return common.NewError(common.ErrCodeProvider, "Xử lý AI thất bại: "+cause.Error(), common.StatusInternalServerError, cause)
	}

	set := statusUpdateSet(computeStatusFromContent(&video))
	if _, err := s.store.ApplyEnrichmentUpdate(ctx, videoID, set); err != nil {
		logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "error": err.Error()}).Error("Enrich: Không ghi được trạng thái lỗi")
	}

	return common.NewError(common.ErrCodeProvider, "Xử lý AI thất bại: "+cause.Error(), common.StatusInternalServerError, cause)
}

// computeStatusFromContent suy ra trạng thái của cả bốn trường từ nội dung hiện có:
// completed nếu trường đã có nội dung, failed nếu còn rỗng. Đây là nguồn sự thật duy nhất
// cho cả đường lỗi của pipeline lẫn janitor reconcile.
func computeStatusFromContent(v *videomodels.Video) map[string]string {
	status := make(map[string]string, len(videomodels.AIFields))
	mark := func(field string, hasContent bool) {
		if hasContent {
			status[field] = videomodels.AIStatusCompleted
		} else {
			status[field] = videomodels.AIStatusFailed
		}
	}
	mark(videomodels.AIFieldTranscript, v.Transcript != "")
	mark(videomodels.AIFieldSummary, v.Summary != "")
	mark(videomodels.AIFieldChapters, len(v.Chapters) > 0)
	mark(videomodels.AIFieldQuiz, len(v.Quiz) > 0)
	return status
}

// statusUpdateSet chuyển map trạng thái thành các key aiProcessingStatus.* cho $set
func statusUpdateSet(status map[string]string) map[string]interface{} {
	set := make(map[string]interface{}, len(status))
	for field, st := range status {
		set["aiProcessingStatus."+field] = st
	}
	return set
}

// GetStatus trả về trạng thái xử lý AI hiện tại của video
func (s *EnrichmentService) GetStatus(ctx context.Context, videoID primitive.ObjectID) (map[string]string, error) {
	video, err := s.store.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.AIProcessingStatus == nil {
		return videomodels.DefaultAIProcessingStatus(), nil
	}
	return video.AIProcessingStatus, nil
}

// ReconcileStale quét các video có trường đang processing nhưng không được cập nhật
// trong khoảng olderThan (phiên enrich bị bỏ dở do process chết giữa chừng) và chốt lại
// trạng thái theo nội dung hiện có. Trả về số video đã reconcile.
// Hàm này idempotent: video đã được chốt sẽ không còn trường processing nên không match nữa.
func (s *EnrichmentService) ReconcileStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	stale, err := s.store.FindStaleProcessing(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for i := range stale {
		video := &stale[i]
		set := statusUpdateSet(computeStatusFromContent(video))
		if _, err := s.store.ApplyEnrichmentUpdate(ctx, video.ID, set); err != nil {
			logrus.WithFields(logrus.Fields{"video_id": video.ID.Hex(), "error": err.Error()}).Error("ReconcileStale: Không ghi được trạng thái")
			continue
		}
		logrus.WithFields(logrus.Fields{"video_id": video.ID.Hex()}).Warn("ReconcileStale: Đã chốt trạng thái cho phiên xử lý bị bỏ dở")
		reconciled++
	}
	return reconciled, nil
}

// AskQuestion trả lời câu hỏi của người học dựa trên transcript và summary của video
func (s *EnrichmentService) AskQuestion(ctx context.Context, videoID primitive.ObjectID, question string) (string, error) {
	video, err := s.store.FindOneById(ctx, videoID)
	if err != nil {
		return "", err
	}

	contextText := "Transcript:\n" + video.Transcript + "\n\nSummary:\n" + video.Summary
	answer, err := s.provider.AnswerQuestion(ctx, question, contextText)
	if err != nil {
		return "", common.NewError(common.ErrCodeProvider, "Không trả lời được câu hỏi", common.StatusInternalServerError, err)
	}
	return answer, nil
}

// GenerateLearningPlan tạo lộ trình học cá nhân hóa từ nội dung video
func (s *EnrichmentService) GenerateLearningPlan(ctx context.Context, videoID primitive.ObjectID) (string, error) {
	video, err := s.store.FindOneById(ctx, videoID)
	if err != nil {
		return "", err
	}

	plan, err := s.provider.GenerateLearningPlan(ctx, video.Transcript, video.Summary, video.LearningObjectives)
	if err != nil {
		return "", common.NewError(common.ErrCodeProvider, "Không tạo được lộ trình học", common.StatusInternalServerError, err)
	}
	return plan, nil
}

// Package aiprovider định nghĩa interface nhà cung cấp nội dung AI và triển khai OpenAI.
package aiprovider

import (
	"context"
	"fmt"

	videomodels "edu_tube/internal/api/video/models"
)

// ContentProvider sinh nội dung học tập từ transcript của video.
// Mọi phương thức đều có thể bị hủy qua context; lỗi trả về được wrap trong ProviderError.
type ContentProvider interface {
	// GenerateTranscript tạo transcript từ file video (URL)
	GenerateTranscript(ctx context.Context, videoFileURL string) (string, error)

	// GenerateSummary tóm tắt nội dung từ transcript
	GenerateSummary(ctx context.Context, transcript string) (string, error)

	// DetectChapters phát hiện các chương từ transcript
	DetectChapters(ctx context.Context, transcript string) ([]videomodels.Chapter, error)

	// GenerateQuiz sinh bộ câu hỏi trắc nghiệm từ transcript
	GenerateQuiz(ctx context.Context, transcript string) ([]videomodels.QuizQuestion, error)

	// ExtractKeywords trích xuất từ khóa từ transcript
	ExtractKeywords(ctx context.Context, transcript string) ([]string, error)

	// GenerateLearningObjectives sinh mục tiêu học tập từ transcript
	GenerateLearningObjectives(ctx context.Context, transcript string) ([]string, error)

	// AnswerQuestion trả lời câu hỏi của người học dựa trên ngữ cảnh video
	AnswerQuestion(ctx context.Context, question, contextText string) (string, error)

	// GenerateLearningPlan tạo lộ trình học cá nhân hóa dựa trên nội dung video
	GenerateLearningPlan(ctx context.Context, transcript, summary string, objectives []string) (string, error)
}

// ProviderError là lỗi từ nhà cung cấp AI, kèm tên thao tác gây lỗi
type ProviderError struct {
	Op  string // thao tác: generate_transcript, generate_summary, ...
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

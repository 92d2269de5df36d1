package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	videomodels "edu_tube/internal/api/video/models"
	"edu_tube/internal/global"

	"github.com/sirupsen/logrus"
)

// OpenAIProvider gọi API chat completions tương thích OpenAI qua HTTP.
// Các capability trả về dữ liệu có cấu trúc (chapters, quiz, keywords, objectives)
// dùng JSON mode để model luôn trả về JSON hợp lệ.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIProvider tạo provider từ cấu hình server
func NewOpenAIProvider() *OpenAIProvider {
	cfg := global.MongoDB_ServerConfig
	return &OpenAIProvider{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chatCompletion gọi endpoint /chat/completions và trả về content của choice đầu tiên
func (p *OpenAIProvider) chatCompletion(ctx context.Context, op string, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: maxTokens,
	}
	if jsonMode {
		reqBody.ResponseFormat = map[string]interface{}{"type": "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &ProviderError{Op: op, Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Op: op, Err: fmt.Errorf("invalid response (status %d): %w", resp.StatusCode, err)}
	}
	if parsed.Error != nil {
		return "", &ProviderError{Op: op, Err: fmt.Errorf("api error (status %d): %s", resp.StatusCode, parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Op: op, Err: fmt.Errorf("empty choices in response")}
	}

	return parsed.Choices[0].Message.Content, nil
}

// GenerateTranscript tạo transcript từ file video.
// TODO: chuyển sang Whisper API khi backend media tách audio xong; hiện tại
// sinh transcript từ URL qua chat completions như bản placeholder.
func (p *OpenAIProvider) GenerateTranscript(ctx context.Context, videoFileURL string) (string, error) {
	logrus.WithFields(logrus.Fields{"video_file": videoFileURL}).Info("OpenAIProvider: Bắt đầu tạo transcript")
	return p.chatCompletion(ctx, "generate_transcript",
		"You are an expert transcriber for educational videos. Produce a clean, readable transcript.",
		fmt.Sprintf("Please produce a transcript for the educational video at: %s", videoFileURL),
		2000, false)
}

// GenerateSummary tóm tắt nội dung từ transcript
func (p *OpenAIProvider) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	return p.chatCompletion(ctx, "generate_summary",
		"You are an expert at summarizing educational content. Create a concise but comprehensive summary.",
		fmt.Sprintf("Please summarize the following transcript:\n\n%s", transcript),
		500, false)
}

// DetectChapters phát hiện các chương từ transcript
func (p *OpenAIProvider) DetectChapters(ctx context.Context, transcript string) ([]videomodels.Chapter, error) {
	content, err := p.chatCompletion(ctx, "detect_chapters",
		`You are an expert at organizing educational content into logical chapters. Return a JSON object {"chapters": [{"title", "startTime", "endTime", "summary"}]} with times in seconds.`,
		fmt.Sprintf("Please identify main chapters/sections from this transcript with timestamps:\n\n%s", transcript),
		500, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Chapters []videomodels.Chapter `json:"chapters"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ProviderError{Op: "detect_chapters", Err: fmt.Errorf("invalid chapters json: %w", err)}
	}
	return parsed.Chapters, nil
}

// GenerateQuiz sinh bộ câu hỏi trắc nghiệm từ transcript
func (p *OpenAIProvider) GenerateQuiz(ctx context.Context, transcript string) ([]videomodels.QuizQuestion, error) {
	content, err := p.chatCompletion(ctx, "generate_quiz",
		`You are an expert at creating educational assessments. Create multiple choice questions that test understanding of key concepts. Return a JSON object {"quiz": [{"question", "options", "correctAnswer", "explanation", "difficulty", "topic"}]} where correctAnswer is the index in options.`,
		fmt.Sprintf("Please generate a quiz based on this transcript:\n\n%s", transcript),
		1000, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Quiz []videomodels.QuizQuestion `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ProviderError{Op: "generate_quiz", Err: fmt.Errorf("invalid quiz json: %w", err)}
	}
	return parsed.Quiz, nil
}

// ExtractKeywords trích xuất từ khóa từ transcript
func (p *OpenAIProvider) ExtractKeywords(ctx context.Context, transcript string) ([]string, error) {
	content, err := p.chatCompletion(ctx, "extract_keywords",
		`Extract key technical terms and concepts. Return a JSON object {"keywords": ["..."]}.`,
		fmt.Sprintf("Please extract important keywords from this transcript:\n\n%s", transcript),
		300, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ProviderError{Op: "extract_keywords", Err: fmt.Errorf("invalid keywords json: %w", err)}
	}
	return parsed.Keywords, nil
}

// GenerateLearningObjectives sinh mục tiêu học tập từ transcript
func (p *OpenAIProvider) GenerateLearningObjectives(ctx context.Context, transcript string) ([]string, error) {
	content, err := p.chatCompletion(ctx, "generate_learning_objectives",
		`You are an expert at creating learning objectives. Return a JSON object {"objectives": ["..."]}.`,
		fmt.Sprintf("Please generate learning objectives based on this transcript:\n\n%s", transcript),
		500, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Objectives []string `json:"objectives"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ProviderError{Op: "generate_learning_objectives", Err: fmt.Errorf("invalid objectives json: %w", err)}
	}
	return parsed.Objectives, nil
}

// AnswerQuestion trả lời câu hỏi của người học dựa trên ngữ cảnh video
func (p *OpenAIProvider) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	return p.chatCompletion(ctx, "answer_question",
		"You are a helpful AI tutor. Answer questions based on the provided context.",
		fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question),
		500, false)
}

// GenerateLearningPlan tạo lộ trình học cá nhân hóa dựa trên nội dung video
func (p *OpenAIProvider) GenerateLearningPlan(ctx context.Context, transcript, summary string, objectives []string) (string, error) {
	objectivesJSON, _ := json.Marshal(objectives)
	return p.chatCompletion(ctx, "generate_learning_plan",
		"You are an expert educational planner. Create a personalized learning plan based on the content.",
		fmt.Sprintf("Please generate a personalized learning plan based on:\n\nTranscript: %s\n\nSummary: %s\n\nLearning Objectives: %s", transcript, summary, string(objectivesJSON)),
		1000, false)
}

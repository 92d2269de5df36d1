package aiprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestProvider trỏ provider vào một server giả lập chat completions
func newTestProvider(handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	p := &OpenAIProvider{
		apiKey:  "test-key",
		baseURL: srv.URL,
		model:   "gpt-4o-mini",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	return p, srv
}

func chatReply(content string) []byte {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	body, _ := json.Marshal(reply)
	return body
}

func TestChatCompletionRequestShape(t *testing.T) {
	var got chatRequest
	var gotAuth, gotPath string

	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Body request không phải JSON hợp lệ: %v", err)
		}
		w.Write(chatReply("nội dung tóm tắt"))
	})
	defer srv.Close()

	summary, err := p.GenerateSummary(context.Background(), "transcript mẫu")
	if err != nil {
		t.Fatalf("GenerateSummary trả về lỗi không mong đợi: %v", err)
	}
	if summary != "nội dung tóm tắt" {
		t.Errorf("Phải trả về content của choice đầu tiên, nhận được %q", summary)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Header Authorization sai: %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("Phải gọi endpoint /chat/completions, nhận được %q", gotPath)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("Model trong request sai: %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Error("Request phải có đúng một message system và một message user")
	}
	if got.ResponseFormat != nil {
		t.Error("GenerateSummary không dùng JSON mode nên không được gửi response_format")
	}
}

func TestDetectChaptersUsesJSONModeAndParses(t *testing.T) {
	var got chatRequest
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write(chatReply(`{"chapters":[{"title":"Giới thiệu","startTime":0,"endTime":120,"summary":"Phần mở đầu"},{"title":"Nội dung chính","startTime":120,"endTime":600}]}`))
	})
	defer srv.Close()

	chapters, err := p.DetectChapters(context.Background(), "transcript mẫu")
	if err != nil {
		t.Fatalf("DetectChapters trả về lỗi không mong đợi: %v", err)
	}
	if got.ResponseFormat == nil || got.ResponseFormat["type"] != "json_object" {
		t.Error("DetectChapters phải gửi response_format json_object")
	}
	if len(chapters) != 2 {
		t.Fatalf("Phải parse được 2 chương, nhận được %d", len(chapters))
	}
	if chapters[0].Title != "Giới thiệu" || chapters[0].EndTime != 120 {
		t.Errorf("Chương đầu parse sai: %+v", chapters[0])
	}
}

func TestChatCompletionAPIError(t *testing.T) {
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`))
	})
	defer srv.Close()

	_, err := p.GenerateSummary(context.Background(), "transcript mẫu")
	if err == nil {
		t.Fatal("Response có trường error phải được trả về như lỗi")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Lỗi phải là *ProviderError, nhận được %T", err)
	}
	if provErr.Op != "generate_summary" {
		t.Errorf("ProviderError phải mang tên operation, nhận được %q", provErr.Op)
	}
}

func TestGenerateQuizRejectsInvalidJSON(t *testing.T) {
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply("đây không phải JSON"))
	})
	defer srv.Close()

	_, err := p.GenerateQuiz(context.Background(), "transcript mẫu")
	if err == nil {
		t.Fatal("Content không phải JSON phải bị từ chối")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Op != "generate_quiz" {
		t.Errorf("Lỗi phải là *ProviderError của generate_quiz, nhận được %v", err)
	}
}

func TestExtractKeywordsParsesList(t *testing.T) {
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(`{"keywords":["goroutine","channel","mutex"]}`))
	})
	defer srv.Close()

	keywords, err := p.ExtractKeywords(context.Background(), "transcript mẫu")
	if err != nil {
		t.Fatalf("ExtractKeywords trả về lỗi không mong đợi: %v", err)
	}
	if len(keywords) != 3 || keywords[0] != "goroutine" {
		t.Errorf("Danh sách keywords parse sai: %v", keywords)
	}
}

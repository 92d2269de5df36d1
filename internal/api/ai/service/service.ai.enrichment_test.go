package aisvc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	videomodels "edu_tube/internal/api/video/models"
	"edu_tube/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeVideoStore giả lập VideoStore trên bộ nhớ, mô phỏng cả guard CAS của claim.
type fakeVideoStore struct {
	mu      sync.Mutex
	videos  map[primitive.ObjectID]*videomodels.Video
	updates []map[string]interface{}
}

func newFakeVideoStore(videos ...*videomodels.Video) *fakeVideoStore {
	store := &fakeVideoStore{videos: make(map[primitive.ObjectID]*videomodels.Video)}
	for _, v := range videos {
		store.videos[v.ID] = v
	}
	return store
}

func (f *fakeVideoStore) FindOneById(ctx context.Context, id primitive.ObjectID) (videomodels.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return videomodels.Video{}, common.ErrNotFound
	}
	return *v, nil
}

func (f *fakeVideoStore) ClaimForEnrichment(ctx context.Context, videoID primitive.ObjectID) (*videomodels.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[videoID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for _, st := range v.AIProcessingStatus {
		if st == videomodels.AIStatusProcessing {
			return nil, common.NewError(common.ErrCodeBusinessState, "Video đang được xử lý AI bởi một phiên khác", common.StatusConflict, nil)
		}
	}
	status := videomodels.DefaultAIProcessingStatus()
	status[videomodels.AIFieldTranscript] = videomodels.AIStatusProcessing
	v.AIProcessingStatus = status
	v.UpdatedAt = time.Now().UnixMilli()
	claimed := *v
	return &claimed, nil
}

func (f *fakeVideoStore) ApplyEnrichmentUpdate(ctx context.Context, videoID primitive.ObjectID, set map[string]interface{}) (*videomodels.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[videoID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for key, value := range set {
		if field, found := strings.CutPrefix(key, "aiProcessingStatus."); found {
			if v.AIProcessingStatus == nil {
				v.AIProcessingStatus = videomodels.DefaultAIProcessingStatus()
			}
			v.AIProcessingStatus[field] = value.(string)
			continue
		}
		switch key {
		case "transcript":
			v.Transcript = value.(string)
		case "summary":
			v.Summary = value.(string)
		case "chapters":
			v.Chapters = value.([]videomodels.Chapter)
		case "quiz":
			v.Quiz = value.([]videomodels.QuizQuestion)
		case "keywords":
			v.Keywords = value.([]string)
		case "learningObjectives":
			v.LearningObjectives = value.([]string)
		}
	}
	v.UpdatedAt = time.Now().UnixMilli()
	f.updates = append(f.updates, set)
	updated := *v
	return &updated, nil
}

func (f *fakeVideoStore) FindStaleProcessing(ctx context.Context, cutoffMilli int64) ([]videomodels.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []videomodels.Video
	for _, v := range f.videos {
		if v.UpdatedAt >= cutoffMilli {
			continue
		}
		for _, st := range v.AIProcessingStatus {
			if st == videomodels.AIStatusProcessing {
				stale = append(stale, *v)
				break
			}
		}
	}
	return stale, nil
}

// fakeProvider trả về nội dung cố định; bước trùng failStep trả lỗi,
// bước trùng emptyStep trả về thành công nhưng nội dung rỗng.
type fakeProvider struct {
	mu        sync.Mutex
	failStep  string
	emptyStep string
	calls     []string
}

func (f *fakeProvider) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if op == f.failStep {
		return errors.New("provider hỏng tại bước " + op)
	}
	return nil
}

func (f *fakeProvider) isEmpty(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return op == f.emptyStep
}

func (f *fakeProvider) GenerateTranscript(ctx context.Context, videoFileURL string) (string, error) {
	if err := f.record("transcript"); err != nil {
		return "", err
	}
	if f.isEmpty("transcript") {
		return "", nil
	}
	return "transcript của " + videoFileURL, nil
}

func (f *fakeProvider) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	if err := f.record("summary"); err != nil {
		return "", err
	}
	if f.isEmpty("summary") {
		return "", nil
	}
	return "tóm tắt: " + transcript, nil
}

func (f *fakeProvider) DetectChapters(ctx context.Context, transcript string) ([]videomodels.Chapter, error) {
	if err := f.record("chapters"); err != nil {
		return nil, err
	}
	if f.isEmpty("chapters") {
		return []videomodels.Chapter{}, nil
	}
	return []videomodels.Chapter{{Title: "Mở đầu", StartTime: 0, EndTime: 60}}, nil
}

func (f *fakeProvider) GenerateQuiz(ctx context.Context, transcript string) ([]videomodels.QuizQuestion, error) {
	if err := f.record("quiz"); err != nil {
		return nil, err
	}
	if f.isEmpty("quiz") {
		return []videomodels.QuizQuestion{}, nil
	}
	return []videomodels.QuizQuestion{{Question: "Nội dung chính là gì?", Options: []string{"A", "B"}, CorrectAnswer: 0}}, nil
}

func (f *fakeProvider) ExtractKeywords(ctx context.Context, transcript string) ([]string, error) {
	if err := f.record("keywords"); err != nil {
		return nil, err
	}
	return []string{"golang", "mongodb"}, nil
}

func (f *fakeProvider) GenerateLearningObjectives(ctx context.Context, transcript string) ([]string, error) {
	if err := f.record("objectives"); err != nil {
		return nil, err
	}
	return []string{"Hiểu nội dung video"}, nil
}

func (f *fakeProvider) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	if err := f.record("answer"); err != nil {
		return "", err
	}
	return "câu trả lời", nil
}

func (f *fakeProvider) GenerateLearningPlan(ctx context.Context, transcript, summary string, objectives []string) (string, error) {
	if err := f.record("plan"); err != nil {
		return "", err
	}
	return "lộ trình học", nil
}

func newTestVideo(owner primitive.ObjectID) *videomodels.Video {
	return &videomodels.Video{
		ID:                 primitive.NewObjectID(),
		Title:              "Bài giảng Go",
		VideoFile:          "https://cdn.example.com/video.mp4",
		Owner:              owner,
		AIProcessingStatus: videomodels.DefaultAIProcessingStatus(),
		UpdatedAt:          time.Now().UnixMilli(),
	}
}

func TestEnrichSuccess(t *testing.T) {
	owner := primitive.NewObjectID()
	video := newTestVideo(owner)
	store := newFakeVideoStore(video)
	provider := &fakeProvider{}
	svc := NewEnrichmentService(store, provider)

	result, err := svc.Enrich(context.Background(), video.ID, owner)
	if err != nil {
		t.Fatalf("Enrich trả về lỗi không mong đợi: %v", err)
	}

	for _, field := range videomodels.AIFields {
		if st := result.AIProcessingStatus[field]; st != videomodels.AIStatusCompleted {
			t.Errorf("Trạng thái của %q phải là completed, nhận được %q", field, st)
		}
	}
	if result.Transcript == "" {
		t.Error("Transcript phải được ghi sau khi pipeline hoàn tất")
	}
	if result.Summary == "" {
		t.Error("Summary phải được ghi sau khi pipeline hoàn tất")
	}
	if len(result.Chapters) == 0 {
		t.Error("Chapters phải được ghi sau khi pipeline hoàn tất")
	}
	if len(result.Quiz) == 0 {
		t.Error("Quiz phải được ghi sau khi pipeline hoàn tất")
	}
	if len(result.Keywords) == 0 || len(result.LearningObjectives) == 0 {
		t.Error("Keywords và learning objectives phải được ghi sau khi pipeline hoàn tất")
	}

	// Bốn bước đầu phải chạy đúng thứ tự, vì mỗi bước dùng transcript làm đầu vào
	wantOrder := []string{"transcript", "summary", "chapters", "quiz"}
	if len(provider.calls) < len(wantOrder) {
		t.Fatalf("Provider phải được gọi ít nhất %d lần, nhận được %d", len(wantOrder), len(provider.calls))
	}
	for i, op := range wantOrder {
		if provider.calls[i] != op {
			t.Errorf("Bước thứ %d phải là %q, nhận được %q", i+1, op, provider.calls[i])
		}
	}
}

func TestEnrichRejectsNonOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	video := newTestVideo(owner)
	store := newFakeVideoStore(video)
	svc := NewEnrichmentService(store, &fakeProvider{})

	_, err := svc.Enrich(context.Background(), video.ID, primitive.NewObjectID())
	if err == nil {
		t.Fatal("Enrich phải từ chối người không phải chủ sở hữu video")
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Code != common.ErrCodeAuthOwnership {
		t.Errorf("Lỗi phải có mã AUTH_003 (ownership), nhận được %v", err)
	}
	if len(store.updates) != 0 {
		t.Error("Không được ghi gì vào store khi bị từ chối quyền")
	}
}

func TestEnrichConflictWhenAlreadyProcessing(t *testing.T) {
	owner := primitive.NewObjectID()
	video := newTestVideo(owner)
	video.AIProcessingStatus[videomodels.AIFieldSummary] = videomodels.AIStatusProcessing
	store := newFakeVideoStore(video)
	svc := NewEnrichmentService(store, &fakeProvider{})

	_, err := svc.Enrich(context.Background(), video.ID, owner)
	if err == nil {
		t.Fatal("Enrich phải trả lỗi conflict khi video đang được phiên khác xử lý")
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.StatusCode != common.StatusConflict {
		t.Errorf("Lỗi phải có status 409 Conflict, nhận được %v", err)
	}
}

func TestEnrichFailureFinalizesStatusFromContent(t *testing.T) {
	owner := primitive.NewObjectID()
	video := newTestVideo(owner)
	store := newFakeVideoStore(video)
	provider := &fakeProvider{failStep: "chapters"}
	svc := NewEnrichmentService(store, provider)

	_, err := svc.Enrich(context.Background(), video.ID, owner)
	if err == nil {
		t.Fatal("Enrich phải trả lỗi khi một bước trong pipeline thất bại")
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Code != common.ErrCodeProvider {
		t.Errorf("Lỗi phải có mã EXT_001 (provider), nhận được %v", err)
	}

	// Trạng thái cuối suy ra từ nội dung: bước đã xong là completed, còn lại failed
	final := store.videos[video.ID].AIProcessingStatus
	wantStatus := map[string]string{
		videomodels.AIFieldTranscript: videomodels.AIStatusCompleted,
		videomodels.AIFieldSummary:    videomodels.AIStatusCompleted,
		videomodels.AIFieldChapters:   videomodels.AIStatusFailed,
		videomodels.AIFieldQuiz:       videomodels.AIStatusFailed,
	}
	for field, want := range wantStatus {
		if final[field] != want {
			t.Errorf("Trạng thái của %q phải là %q sau khi pipeline lỗi, nhận được %q", field, want, final[field])
		}
	}
}

func TestEnrichRejectsEmptyStepResult(t *testing.T) {
	owner := primitive.NewObjectID()
	video := newTestVideo(owner)
	store := newFakeVideoStore(video)
	provider := &fakeProvider{emptyStep: "chapters"}
	svc := NewEnrichmentService(store, provider)

	_, err := svc.Enrich(context.Background(), video.ID, owner)
	if err == nil {
		t.Fatal("Bước trả về payload hợp lệ nhưng rỗng phải làm pipeline thất bại")
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Code != common.ErrCodeProvider {
		t.Errorf("Lỗi phải có mã EXT_001 (provider), nhận được %v", err)
	}

	// Không trường nào được mang trạng thái completed khi nội dung còn rỗng
	final := store.videos[video.ID]
	if final.AIProcessingStatus[videomodels.AIFieldChapters] != videomodels.AIStatusFailed {
		t.Errorf("Chapters rỗng phải bị chốt là failed, nhận được %q", final.AIProcessingStatus[videomodels.AIFieldChapters])
	}
	if len(final.Chapters) != 0 {
		t.Errorf("Chapters rỗng không được ghi vào document, nhận được %d phần tử", len(final.Chapters))
	}
	if final.AIProcessingStatus[videomodels.AIFieldTranscript] != videomodels.AIStatusCompleted {
		t.Error("Các bước đã có nội dung trước đó phải giữ trạng thái completed")
	}
	if final.AIProcessingStatus[videomodels.AIFieldQuiz] != videomodels.AIStatusFailed {
		t.Error("Bước chưa chạy phải bị chốt là failed")
	}
}

func TestComputeStatusFromContent(t *testing.T) {
	video := &videomodels.Video{
		Transcript: "có nội dung",
		Chapters:   []videomodels.Chapter{{Title: "Chương 1"}},
	}
	status := computeStatusFromContent(video)

	if status[videomodels.AIFieldTranscript] != videomodels.AIStatusCompleted {
		t.Error("Trường có nội dung phải được chốt là completed")
	}
	if status[videomodels.AIFieldChapters] != videomodels.AIStatusCompleted {
		t.Error("Chapters có phần tử phải được chốt là completed")
	}
	if status[videomodels.AIFieldSummary] != videomodels.AIStatusFailed {
		t.Error("Trường rỗng phải được chốt là failed")
	}
	if status[videomodels.AIFieldQuiz] != videomodels.AIStatusFailed {
		t.Error("Quiz rỗng phải được chốt là failed")
	}
	if len(status) != len(videomodels.AIFields) {
		t.Errorf("Map trạng thái phải có đủ %d trường, nhận được %d", len(videomodels.AIFields), len(status))
	}
}

func TestReconcileStaleIsIdempotent(t *testing.T) {
	owner := primitive.NewObjectID()
	stale := newTestVideo(owner)
	stale.Transcript = "đã có transcript"
	stale.AIProcessingStatus[videomodels.AIFieldTranscript] = videomodels.AIStatusCompleted
	stale.AIProcessingStatus[videomodels.AIFieldSummary] = videomodels.AIStatusProcessing
	stale.UpdatedAt = time.Now().Add(-time.Hour).UnixMilli()

	fresh := newTestVideo(owner)
	fresh.AIProcessingStatus[videomodels.AIFieldTranscript] = videomodels.AIStatusProcessing

	store := newFakeVideoStore(stale, fresh)
	svc := NewEnrichmentService(store, &fakeProvider{})

	reconciled, err := svc.ReconcileStale(context.Background(), 15*time.Minute)
	if err != nil {
		t.Fatalf("ReconcileStale trả về lỗi không mong đợi: %v", err)
	}
	if reconciled != 1 {
		t.Fatalf("Chỉ video cũ hơn cutoff mới được reconcile, mong 1 nhận được %d", reconciled)
	}

	final := store.videos[stale.ID].AIProcessingStatus
	if final[videomodels.AIFieldTranscript] != videomodels.AIStatusCompleted {
		t.Error("Transcript đã có nội dung phải giữ trạng thái completed")
	}
	if final[videomodels.AIFieldSummary] != videomodels.AIStatusFailed {
		t.Error("Summary đang processing nhưng chưa có nội dung phải bị chốt là failed")
	}
	if st := store.videos[fresh.ID].AIProcessingStatus[videomodels.AIFieldTranscript]; st != videomodels.AIStatusProcessing {
		t.Errorf("Video còn mới không được đụng tới, trạng thái transcript nhận được %q", st)
	}

	// Lần quét thứ hai không còn gì để chốt
	reconciled, err = svc.ReconcileStale(context.Background(), 15*time.Minute)
	if err != nil {
		t.Fatalf("ReconcileStale lần hai trả về lỗi không mong đợi: %v", err)
	}
	if reconciled != 0 {
		t.Errorf("Video đã được chốt không được reconcile lại, mong 0 nhận được %d", reconciled)
	}
}

package progresssvc

import (
	"context"
	"testing"

	authmodels "edu_tube/internal/api/auth/models"
	progressdto "edu_tube/internal/api/progress/dto"
	videomodels "edu_tube/internal/api/video/models"

	"github.com/stretchr/testify/assert"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleQuiz() []videomodels.QuizQuestion {
	return []videomodels.QuizQuestion{
		{Question: "Câu 1", Options: []string{"A", "B", "C"}, CorrectAnswer: 0},
		{Question: "Câu 2", Options: []string{"A", "B", "C"}, CorrectAnswer: 2},
		{Question: "Câu 3", Options: []string{"A", "B", "C"}, CorrectAnswer: 1},
		{Question: "Câu 4", Options: []string{"A", "B", "C"}, CorrectAnswer: 1},
	}
}

func TestScoreQuizAllCorrect(t *testing.T) {
	score, total, correct := scoreQuiz(sampleQuiz(), []int{0, 2, 1, 1})

	assert.Equal(t, 4, total, "Tổng số câu phải bằng số câu hỏi của quiz")
	assert.Equal(t, 4, correct, "Trả lời đúng hết phải được tính đủ số câu")
	assert.InDelta(t, 100.0, score, 0.001, "Đúng hết phải được 100 điểm")
}

func TestScoreQuizPartial(t *testing.T) {
	score, total, correct := scoreQuiz(sampleQuiz(), []int{0, 0, 1, 0})

	assert.Equal(t, 4, total)
	assert.Equal(t, 2, correct, "Chỉ câu 1 và câu 3 đúng")
	assert.InDelta(t, 50.0, score, 0.001)
}

func TestScoreQuizIgnoresExtraAnswers(t *testing.T) {
	// Câu trả lời thừa so với số câu hỏi không được tính điểm
	score, total, correct := scoreQuiz(sampleQuiz(), []int{0, 2, 1, 1, 0, 0, 0})

	assert.Equal(t, 4, total)
	assert.Equal(t, 4, correct)
	assert.InDelta(t, 100.0, score, 0.001)
}

func TestScoreQuizFewerAnswersThanQuestions(t *testing.T) {
	score, total, correct := scoreQuiz(sampleQuiz(), []int{0})

	assert.Equal(t, 4, total, "Điểm vẫn chia cho tổng số câu của quiz")
	assert.Equal(t, 1, correct)
	assert.InDelta(t, 25.0, score, 0.001)
}

func TestScoreQuizEmptyQuiz(t *testing.T) {
	score, total, correct := scoreQuiz(nil, []int{0, 1})

	assert.Equal(t, 0, total)
	assert.Equal(t, 0, correct)
	assert.Zero(t, score, "Quiz rỗng không được chia cho 0")
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestWatchTimeUpdateSetMarksCompletedAtThreshold(t *testing.T) {
	now := int64(1700000000000)

	// Đúng ngưỡng 90% thời lượng
	set := watchTimeUpdateSet(100, &progressdto.ProgressUpdateInput{WatchTime: floatPtr(90)}, now)
	assert.Equal(t, 90.0, set["watchTime"])
	assert.Equal(t, now, set["lastWatched"])
	assert.Equal(t, true, set["completed"], "Xem đủ 90% thời lượng phải được đánh dấu hoàn thành")

	// Dưới ngưỡng thì không đụng tới cờ completed
	set = watchTimeUpdateSet(100, &progressdto.ProgressUpdateInput{WatchTime: floatPtr(89.9)}, now)
	_, hasCompleted := set["completed"]
	assert.False(t, hasCompleted, "Dưới ngưỡng không được ghi cờ completed")
}

func TestWatchTimeUpdateSetCompletedIsSticky(t *testing.T) {
	now := int64(1700000000000)

	// Client báo hoàn thành tường minh
	set := watchTimeUpdateSet(100, &progressdto.ProgressUpdateInput{Completed: boolPtr(true)}, now)
	assert.Equal(t, true, set["completed"])

	// Completed=false không bao giờ gỡ cờ đã có
	set = watchTimeUpdateSet(100, &progressdto.ProgressUpdateInput{WatchTime: floatPtr(10), Completed: boolPtr(false)}, now)
	_, hasCompleted := set["completed"]
	assert.False(t, hasCompleted, "Completed=false không được ghi đè trạng thái đã hoàn thành")

	// Video không có thời lượng thì không thể suy ra hoàn thành từ watch time
	set = watchTimeUpdateSet(0, &progressdto.ProgressUpdateInput{WatchTime: floatPtr(50)}, now)
	_, hasCompleted = set["completed"]
	assert.False(t, hasCompleted)
}

func TestWatchTimeUpdateSetEmptyInput(t *testing.T) {
	set := watchTimeUpdateSet(100, &progressdto.ProgressUpdateInput{}, 0)
	assert.Empty(t, set, "Input rỗng không có gì để ghi")
}

// fakeMilestoneNotifier ghi lại các mốc đã được thông báo
type fakeMilestoneNotifier struct {
	sent []int
}

func (f *fakeMilestoneNotifier) SendMilestoneNotification(to string, name string, completedCount int) error {
	f.sent = append(f.sent, completedCount)
	return nil
}

// fakeUserReader trả về một người dùng cố định
type fakeUserReader struct {
	user authmodels.User
}

func (f *fakeUserReader) FindOneById(ctx context.Context, id primitive.ObjectID) (authmodels.User, error) {
	return f.user, nil
}

func TestNotifyMilestoneFiresOnlyAtExactCounts(t *testing.T) {
	for count := int64(1); count <= 12; count++ {
		notifier := &fakeMilestoneNotifier{}
		s := &ProgressService{
			userService: &fakeUserReader{user: authmodels.User{Email: "hocvien@example.com", FullName: "Học Viên"}},
			notifier:    notifier,
		}
		s.countCompleted = func(ctx context.Context, userID primitive.ObjectID) (int64, error) {
			return count, nil
		}

		s.notifyMilestone(context.Background(), primitive.NewObjectID())

		if count == MilestoneFirstVideo || count == MilestoneTenVideos {
			assert.Equal(t, []int{int(count)}, notifier.sent, "Mốc %d phải gửi đúng một thông báo", count)
		} else {
			assert.Empty(t, notifier.sent, "Số video hoàn thành %d không phải mốc, không được gửi thông báo", count)
		}
	}
}

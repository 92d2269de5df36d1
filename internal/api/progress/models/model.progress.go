// Package models định nghĩa các model cho domain progress (tiến độ học).
package models

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizAttempt là một lần làm quiz của người học
type QuizAttempt struct {
	Score             float64 `json:"score" bson:"score"` // 0..100
	QuestionsAnswered int     `json:"questionsAnswered" bson:"questionsAnswered"`
	CorrectAnswers    int     `json:"correctAnswers" bson:"correctAnswers"`
	Timestamp         int64   `json:"timestamp" bson:"timestamp"` // unix milli
}

// Note là một ghi chú của người học gắn với một chương
type Note struct {
	Content      string `json:"content" bson:"content"`
	ChapterIndex int    `json:"chapterIndex" bson:"chapterIndex"`
	Timestamp    int64  `json:"timestamp" bson:"timestamp"`
}

// Bookmark là một đánh dấu tại một thời điểm trong video
type Bookmark struct {
	Title       string  `json:"title" bson:"title"`
	TimeInVideo float64 `json:"timeInVideo" bson:"timeInVideo"` // giây
	Note        string  `json:"note,omitempty" bson:"note,omitempty"`
	Timestamp   int64   `json:"timestamp" bson:"timestamp"`
}

// Progress là tiến độ học của một người dùng trên một video.
// Mỗi cặp (user, video) chỉ có đúng một bản ghi, đảm bảo bằng compound unique index.
type Progress struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user" index:"compound:user_video_unique"`
	Video       primitive.ObjectID `json:"video" bson:"video" index:"compound:user_video_unique"`
	WatchTime   float64            `json:"watchTime" bson:"watchTime"` // giây, last-write-wins
	Completed   bool               `json:"completed" bson:"completed"`
	LastWatched int64              `json:"lastWatched" bson:"lastWatched"` // unix milli

	QuizAttempts []QuizAttempt `json:"quizAttempts" bson:"quizAttempts"`
	Notes        []Note        `json:"notes" bson:"notes"`
	Bookmarks    []Bookmark    `json:"bookmarks" bson:"bookmarks"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// AverageQuizScore trả về điểm quiz trung bình (làm tròn), 0 nếu chưa làm lần nào
func (p *Progress) AverageQuizScore() int {
	if len(p.QuizAttempts) == 0 {
		return 0
	}
	total := 0.0
	for _, attempt := range p.QuizAttempts {
		total += attempt.Score
	}
	return int(math.Round(total / float64(len(p.QuizAttempts))))
}

// CompletionPercentage tính phần trăm hoàn thành dựa trên thời lượng video, chặn trên 100
func (p *Progress) CompletionPercentage(videoDuration float64) int {
	if videoDuration <= 0 {
		return 0
	}
	pct := int(math.Round(p.WatchTime / videoDuration * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// VideoInfo là thông tin rút gọn của video trong danh sách tiến độ
type VideoInfo struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Title      string             `json:"title" bson:"title"`
	Duration   float64            `json:"duration" bson:"duration"`
	Category   string             `json:"category" bson:"category"`
	Difficulty string             `json:"difficulty" bson:"difficulty"`
}

// ProgressListItem là một bản ghi tiến độ kèm thông tin video và các chỉ số suy ra
type ProgressListItem struct {
	Progress             `bson:",inline"`
	VideoDetail          VideoInfo `json:"videoDetail" bson:"videoDetail"`
	CompletionPercentage int       `json:"completionPercentage" bson:"-"`
	AverageScore         int       `json:"averageQuizScore" bson:"-"`
}

// ProgressStats là thống kê tổng hợp tiến độ học của một người dùng
type ProgressStats struct {
	TotalVideosWatched int     `json:"totalVideosWatched"`
	TotalWatchTime     float64 `json:"totalWatchTime"`
	AverageQuizScore   int     `json:"averageQuizScore"`
	TotalNotes         int     `json:"totalNotes"`
	TotalBookmarks     int     `json:"totalBookmarks"`
}

// QuizResult là kết quả một lần nộp quiz
type QuizResult struct {
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Progress       *Progress `json:"progress"`
}

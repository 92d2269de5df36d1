// Package models định nghĩa các model cho domain video.
package models

import (
	basemodels "edu_tube/internal/api/base/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái xử lý AI cho từng trường nội dung.
const (
	AIStatusPending    = "pending"
	AIStatusProcessing = "processing"
	AIStatusCompleted  = "completed"
	AIStatusFailed     = "failed"
)

// Tên các trường nội dung AI trong map aiProcessingStatus.
const (
	AIFieldTranscript = "transcript"
	AIFieldSummary    = "summary"
	AIFieldChapters   = "chapters"
	AIFieldQuiz       = "quiz"
)

// AIFields là danh sách đầy đủ các trường nội dung AI, theo thứ tự xử lý trong pipeline.
var AIFields = []string{AIFieldTranscript, AIFieldSummary, AIFieldChapters, AIFieldQuiz}

// DefaultAIProcessingStatus trả về map trạng thái ban đầu: tất cả các trường đều pending.
func DefaultAIProcessingStatus() map[string]string {
	status := make(map[string]string, len(AIFields))
	for _, f := range AIFields {
		status[f] = AIStatusPending
	}
	return status
}

// Chapter là một chương của video do AI phát hiện từ transcript
type Chapter struct {
	Title     string  `json:"title" bson:"title"`
	StartTime float64 `json:"startTime" bson:"startTime"` // giây
	EndTime   float64 `json:"endTime" bson:"endTime"`     // giây
	Summary   string  `json:"summary" bson:"summary"`
}

// QuizQuestion là một câu hỏi trắc nghiệm do AI sinh ra từ transcript
type QuizQuestion struct {
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correctAnswer"` // index trong options
	Explanation   string   `json:"explanation" bson:"explanation"`
	Difficulty    string   `json:"difficulty,omitempty" bson:"difficulty,omitempty"` // easy / medium / hard
	Topic         string   `json:"topic,omitempty" bson:"topic,omitempty"`
	Timestamp     float64  `json:"timestamp,omitempty" bson:"timestamp,omitempty"` // giây trong video (nếu có)
}

// Engagement là các chỉ số tương tác cộng đồng của video
type Engagement struct {
	Likes    int64 `json:"likes" bson:"likes"`
	Comments int64 `json:"comments" bson:"comments"`
	Shares   int64 `json:"shares" bson:"shares"`
}

// Video là cấu trúc đại diện cho một video bài giảng trong collection videos.
// Các trường transcript/summary/chapters/quiz/keywords/learningObjectives do
// pipeline AI điền vào, trạng thái từng trường theo dõi trong AIProcessingStatus.
type Video struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	VideoFile   string               `json:"videoFile" bson:"videoFile"`
	Thumbnail   string               `json:"thumbnail" bson:"thumbnail"`
	Title       string               `json:"title" bson:"title" index:"text"`
	Description string               `json:"description" bson:"description"`
	Duration    float64              `json:"duration" bson:"duration"` // giây
	Category    string               `json:"category" bson:"category" index:"single"`
	Difficulty  string               `json:"difficulty" bson:"difficulty" default:"intermediate"` // beginner / intermediate / advanced
	Views       int64                `json:"views" bson:"views"`
	ViewedBy    []primitive.ObjectID `json:"-" bson:"viewedBy"`
	IsPublished bool                 `json:"isPublished" bson:"isPublished" default:"true"`
	Owner       primitive.ObjectID   `json:"owner" bson:"owner" index:"single"`

	// Nội dung do AI sinh ra
	Transcript         string         `json:"transcript" bson:"transcript"`
	Summary            string         `json:"summary" bson:"summary"`
	Chapters           []Chapter      `json:"chapters" bson:"chapters"`
	Quiz               []QuizQuestion `json:"quiz" bson:"quiz"`
	Keywords           []string       `json:"keywords" bson:"keywords"`
	LearningObjectives []string       `json:"learningObjectives" bson:"learningObjectives"`

	// Phân tích
	AverageWatchTime float64    `json:"averageWatchTime" bson:"averageWatchTime"`
	CompletionRate   float64    `json:"completionRate" bson:"completionRate"`
	Engagement       Engagement `json:"engagement" bson:"engagement"`

	// Trạng thái xử lý AI theo từng trường: transcript/summary/chapters/quiz
	AIProcessingStatus map[string]string `json:"aiProcessingStatus" bson:"aiProcessingStatus"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single,order:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// VideoPaginateResult là kết quả phân trang danh sách video
type VideoPaginateResult = basemodels.PaginateResult[Video]

// VideoListItem là một phần tử trong danh sách video, kèm thông tin rút gọn của chủ sở hữu
// (kết quả của $lookup sang collection users).
type VideoListItem struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	VideoFile   string             `json:"videoFile" bson:"videoFile"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Category    string             `json:"category" bson:"category"`
	Difficulty  string             `json:"difficulty" bson:"difficulty"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Owner       OwnerInfo          `json:"owner" bson:"owner"`
	CreatedAt   int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64              `json:"updatedAt" bson:"updatedAt"`
}

// OwnerInfo là thông tin rút gọn của chủ sở hữu video trong kết quả listing
type OwnerInfo struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Username  string             `json:"username" bson:"username"`
	FullName  string             `json:"fullName" bson:"fullName"`
	AvatarURL string             `json:"avatarUrl" bson:"avatarUrl"`
}

// ChannelStats là thống kê kênh của một chủ sở hữu video
type ChannelStats struct {
	OwnerName     string  `json:"ownerName" bson:"-"`
	TotalVideos   int64   `json:"totalVideos" bson:"totalVideos"`
	TotalViews    int64   `json:"totalViews" bson:"totalViews"`
	TotalDuration float64 `json:"totalDuration" bson:"totalDuration"` // giây
}

// Package progressdto định nghĩa các DTO cho domain progress.
package progressdto

// ProgressUpdateInput cập nhật tiến độ xem video.
// WatchTime và Completed dùng con trỏ để phân biệt giá trị 0/false với bỏ trống.
type ProgressUpdateInput struct {
	WatchTime *float64 `json:"watchTime" validate:"omitempty,gte=0"`
	Completed *bool    `json:"completed"`
}

// QuizSubmitInput bài làm quiz: answers[i] là index phương án chọn cho câu i
type QuizSubmitInput struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}

// NoteAddInput thêm ghi chú gắn với một chương
type NoteAddInput struct {
	Content      string `json:"content" validate:"required,no_xss" maxLength:"5000"`
	ChapterIndex int    `json:"chapterIndex" validate:"gte=0"`
}

// BookmarkAddInput thêm đánh dấu tại một thời điểm trong video
type BookmarkAddInput struct {
	Title       string  `json:"title" validate:"required,no_xss" maxLength:"200"`
	TimeInVideo float64 `json:"timeInVideo" validate:"gte=0"`
	Note        string  `json:"note" validate:"omitempty,no_xss" maxLength:"1000"`
}

// Package videodto định nghĩa các DTO cho domain video.
package videodto

// VideoCreateInput dữ liệu đầu vào để đăng video mới.
// VideoFile và Thumbnail là URL đã được upload từ trước (CDN/Cloudinary).
type VideoCreateInput struct {
	Title       string  `json:"title" validate:"required,no_xss" maxLength:"200"`
	Description string  `json:"description" validate:"required,no_xss" maxLength:"5000"`
	Category    string  `json:"category" validate:"required,no_xss" maxLength:"100"`
	Difficulty  string  `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	VideoFile   string  `json:"videoFile" validate:"required,url"`
	Thumbnail   string  `json:"thumbnail" validate:"required,url"`
	Duration    float64 `json:"duration" validate:"required,gt=0"`
}

// VideoUpdateInput dữ liệu đầu vào để cập nhật video.
// Chỉ các trường khác zero mới được cập nhật; IsPublished dùng con trỏ để phân biệt false với bỏ trống.
type VideoUpdateInput struct {
	Title       string `json:"title" validate:"omitempty,no_xss" maxLength:"200"`
	Description string `json:"description" validate:"omitempty,no_xss" maxLength:"5000"`
	Category    string `json:"category" validate:"omitempty,no_xss" maxLength:"100"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublished *bool  `json:"isPublished"`
}

// VideoListInput các tham số lọc/sắp xếp danh sách video (đọc từ query string)
type VideoListInput struct {
	Page       int64  `json:"page"`
	Limit      int64  `json:"limit"`
	Query      string `json:"query"`
	SortBy     string `json:"sortBy"`
	SortType   string `json:"sortType"` // asc / desc
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	OwnerID    string `json:"ownerId"`
}

// VideoMetricsInput dữ liệu đầu vào cập nhật chỉ số phân tích của video
type VideoMetricsInput struct {
	WatchTime float64 `json:"watchTime" validate:"omitempty,gte=0"`
	Completed bool    `json:"completed"`
}

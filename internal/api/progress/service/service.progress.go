// Package progresssvc - service tiến độ học của người dùng.
package progresssvc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	authmodels "edu_tube/internal/api/auth/models"
	authsvc "edu_tube/internal/api/auth/service"
	basesvc "edu_tube/internal/api/base/service"
	progressdto "edu_tube/internal/api/progress/dto"
	models "edu_tube/internal/api/progress/models"
	videomodels "edu_tube/internal/api/video/models"
	videosvc "edu_tube/internal/api/video/service"
	"edu_tube/internal/common"
	"edu_tube/internal/global"
	"edu_tube/internal/notification"

	"github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các mốc hoàn thành video sẽ gửi thông báo chúc mừng
const (
	MilestoneFirstVideo = 1
	MilestoneTenVideos  = 10
)

// MilestoneNotifier là phần của notifier mà progress service cần dùng.
// notification.Notifier triển khai đầy đủ interface này.
type MilestoneNotifier interface {
	SendMilestoneNotification(to string, name string, completedCount int) error
}

// UserReader là phần của user service mà progress service cần dùng
type UserReader interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (authmodels.User, error)
}

// ProgressService là cấu trúc chứa các phương thức liên quan đến tiến độ học
type ProgressService struct {
	*basesvc.BaseServiceMongoImpl[models.Progress]

	videoService *videosvc.VideoService
	userService  UserReader
	notifier     MilestoneNotifier

	// countCompleted đếm số video đã hoàn thành của một người dùng
	countCompleted func(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// NewProgressService tạo mới ProgressService.
// Đồng thời đăng ký hàm xóa tiến độ theo video vào videoService (cascade khi xóa video).
func NewProgressService(videoService *videosvc.VideoService, userService *authsvc.UserService) (*ProgressService, error) {
	progressCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Progress)
	if !exist {
		return nil, fmt.Errorf("failed to get progress collection: %v", common.ErrNotFound)
	}

	s := &ProgressService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Progress](progressCollection),
		videoService:         videoService,
		userService:          userService,
		notifier:             notification.GetNotifier(),
	}
	s.countCompleted = func(ctx context.Context, userID primitive.ObjectID) (int64, error) {
		return s.BaseServiceMongoImpl.CountDocuments(ctx, bson.M{"user": userID, "completed": true})
	}

	if videoService != nil {
		videoService.SetProgressPurgeFunc(s.PurgeByVideo)
	}
	return s, nil
}

// PurgeByVideo xóa toàn bộ bản ghi tiến độ học của một video (gọi khi video bị xóa)
func (s *ProgressService) PurgeByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return s.BaseServiceMongoImpl.DeleteMany(ctx, bson.M{"video": videoID})
}

// getOrCreate trả về bản ghi tiến độ của cặp (user, video), tạo mới nếu chưa có.
// Hai request đồng thời cùng tạo thì unique index bắt bản ghi thứ hai, khi đó đọc lại.
func (s *ProgressService) getOrCreate(ctx context.Context, userID, videoID primitive.ObjectID) (*models.Progress, error) {
	filter := bson.M{"user": userID, "video": videoID}

	progress, err := s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.Progress{
		User:         userID,
		Video:        videoID,
		LastWatched:  time.Now().UnixMilli(),
		QuizAttempts: []models.QuizAttempt{},
		Notes:        []models.Note{},
		Bookmarks:    []models.Bookmark{},
	})
	if err == nil {
		return &created, nil
	}
	if errors.Is(err, common.ErrMongoDuplicate) {
		progress, err = s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
		if err != nil {
			return nil, err
		}
		return &progress, nil
	}
	return nil, err
}

// RecordWatchTime cập nhật thời gian xem của người dùng trên một video.
// WatchTime ghi đè giá trị cũ (last-write-wins). Video được coi là hoàn thành khi
// xem đủ 90% thời lượng; trạng thái completed là sticky, không bao giờ quay lại false.
// Khi tổng số video hoàn thành của người dùng chạm mốc 1 hoặc 10, gửi thông báo
// chúc mừng; lỗi gửi thông báo chỉ log, không làm fail thao tác.
func (s *ProgressService) RecordWatchTime(ctx context.Context, userID, videoID primitive.ObjectID, input *progressdto.ProgressUpdateInput) (*models.Progress, error) {
	video, err := s.videoService.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}

	progress, err := s.getOrCreate(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	set := watchTimeUpdateSet(video.Duration, input, time.Now().UnixMilli())
	if len(set) == 0 {
		return progress, nil
	}

	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, progress.ID, &basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}

	// Thông báo milestone chỉ khi bản ghi này vừa chuyển sang completed
	if !progress.Completed && updated.Completed {
		s.notifyMilestone(ctx, userID)
	}

	return &updated, nil
}

// watchTimeUpdateSet dựng các trường cần ghi cho một lần cập nhật tiến độ xem.
// Completed chỉ được bật chứ không bao giờ bị tắt: xem đủ 90% thời lượng hoặc
// client báo hoàn thành đều chỉ thêm cờ, không gỡ trạng thái đã có.
func watchTimeUpdateSet(videoDuration float64, input *progressdto.ProgressUpdateInput, nowMilli int64) map[string]interface{} {
	set := map[string]interface{}{}
	if input.WatchTime != nil {
		set["watchTime"] = *input.WatchTime
		set["lastWatched"] = nowMilli
		if videoDuration > 0 && *input.WatchTime/videoDuration >= 0.9 {
			set["completed"] = true
		}
	}
	if input.Completed != nil && *input.Completed {
		set["completed"] = true
	}
	return set
}

// notifyMilestone đếm số video đã hoàn thành của người dùng và gửi thông báo
// nếu vừa chạm đúng mốc 1 hoặc 10. Chạy best-effort: mọi lỗi chỉ log.
func (s *ProgressService) notifyMilestone(ctx context.Context, userID primitive.ObjectID) {
	completedCount, err := s.countCompleted(ctx, userID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID.Hex(), "error": err.Error()}).Warn("notifyMilestone: Lỗi đếm số video hoàn thành")
		return
	}

	if completedCount != MilestoneFirstVideo && completedCount != MilestoneTenVideos {
		return
	}

	user, err := s.userService.FindOneById(ctx, userID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID.Hex(), "error": err.Error()}).Warn("notifyMilestone: Không đọc được thông tin người dùng")
		return
	}

	if err := s.notifier.SendMilestoneNotification(user.Email, user.FullName, int(completedCount)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID.Hex(), "milestone": completedCount, "error": err.Error()}).Warn("notifyMilestone: Lỗi gửi thông báo milestone")
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": userID.Hex(), "milestone": completedCount}).Info("notifyMilestone: Đã gửi thông báo milestone")
}

// SubmitQuiz chấm bài quiz và ghi lại lần làm bài.
// Điểm = số câu đúng / tổng số câu của quiz * 100; câu trả lời thừa bị bỏ qua.
func (s *ProgressService) SubmitQuiz(ctx context.Context, userID, videoID primitive.ObjectID, input *progressdto.QuizSubmitInput) (*models.QuizResult, error) {
	video, err := s.videoService.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if len(video.Quiz) == 0 {
		return nil, common.NewError(common.ErrCodeBusinessState, "Video chưa có quiz", common.StatusBadRequest, nil)
	}

	score, totalQuestions, correctAnswers := scoreQuiz(video.Quiz, input.Answers)

	progress, err := s.getOrCreate(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	attempt := models.QuizAttempt{
		Score:             score,
		QuestionsAnswered: totalQuestions,
		CorrectAnswers:    correctAnswers,
		Timestamp:         time.Now().UnixMilli(),
	}
	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, progress.ID, &basesvc.UpdateData{
		Push: map[string]interface{}{"quizAttempts": attempt},
	})
	if err != nil {
		return nil, err
	}

	return &models.QuizResult{
		Score:          score,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correctAnswers,
		Progress:       &updated,
	}, nil
}

// scoreQuiz chấm điểm theo thang 100, đối chiếu từng câu trả lời với đáp án đúng.
// Câu trả lời vượt quá số câu hỏi của quiz không được tính.
func scoreQuiz(quiz []videomodels.QuizQuestion, answers []int) (score float64, totalQuestions, correctAnswers int) {
	totalQuestions = len(quiz)
	if totalQuestions == 0 {
		return 0, 0, 0
	}
	for i, answer := range answers {
		if i < totalQuestions && answer == quiz[i].CorrectAnswer {
			correctAnswers++
		}
	}
	score = float64(correctAnswers) / float64(totalQuestions) * 100
	return score, totalQuestions, correctAnswers
}

// AddNote thêm ghi chú của người học vào bản ghi tiến độ (append-only)
func (s *ProgressService) AddNote(ctx context.Context, userID, videoID primitive.ObjectID, input *progressdto.NoteAddInput) (*models.Progress, error) {
	if _, err := s.videoService.FindOneById(ctx, videoID); err != nil {
		return nil, err
	}

	progress, err := s.getOrCreate(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	note := models.Note{
		Content:      input.Content,
		ChapterIndex: input.ChapterIndex,
		Timestamp:    time.Now().UnixMilli(),
	}
	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, progress.ID, &basesvc.UpdateData{
		Push: map[string]interface{}{"notes": note},
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddBookmark thêm đánh dấu của người học vào bản ghi tiến độ (append-only)
func (s *ProgressService) AddBookmark(ctx context.Context, userID, videoID primitive.ObjectID, input *progressdto.BookmarkAddInput) (*models.Progress, error) {
	if _, err := s.videoService.FindOneById(ctx, videoID); err != nil {
		return nil, err
	}

	progress, err := s.getOrCreate(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	bookmark := models.Bookmark{
		Title:       input.Title,
		TimeInVideo: input.TimeInVideo,
		Note:        input.Note,
		Timestamp:   time.Now().UnixMilli(),
	}
	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, progress.ID, &basesvc.UpdateData{
		Push: map[string]interface{}{"bookmarks": bookmark},
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetUserProgress trả về danh sách tiến độ học của người dùng (toàn bộ hoặc theo một video),
// kèm thông tin video và thống kê tổng hợp. Sắp xếp theo lần xem gần nhất.
func (s *ProgressService) GetUserProgress(ctx context.Context, userID primitive.ObjectID, videoID *primitive.ObjectID) ([]models.ProgressListItem, *models.ProgressStats, error) {
	match := bson.M{"user": userID}
	if videoID != nil {
		match["video"] = *videoID
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{"lastWatched": -1}},
		{"$lookup": bson.M{
			"from":         global.MongoDB_ColNames.Videos,
			"localField":   "video",
			"foreignField": "_id",
			"as":           "videoDetail",
			"pipeline": []bson.M{
				{"$project": bson.M{"title": 1, "duration": 1, "category": 1, "difficulty": 1}},
			},
		}},
		{"$unwind": bson.M{"path": "$videoDetail", "preserveNullAndEmptyArrays": true}},
	}

	cursor, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.ProgressListItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, nil, common.ConvertMongoError(err)
	}

	stats := &models.ProgressStats{}
	totalScore := 0
	for i := range items {
		item := &items[i]
		item.CompletionPercentage = item.Progress.CompletionPercentage(item.VideoDetail.Duration)
		item.AverageScore = item.Progress.AverageQuizScore()

		if item.Completed {
			stats.TotalVideosWatched++
		}
		stats.TotalWatchTime += item.WatchTime
		stats.TotalNotes += len(item.Notes)
		stats.TotalBookmarks += len(item.Bookmarks)
		totalScore += item.AverageScore
	}
	if len(items) > 0 {
		stats.AverageQuizScore = int(math.Round(float64(totalScore) / float64(len(items))))
	}

	return items, stats, nil
}

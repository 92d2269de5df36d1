// Package videosvc - service quản lý video bài giảng.
package videosvc

import (
	"context"
	"errors"
	"fmt"

	basemodels "edu_tube/internal/api/base/models"
	basesvc "edu_tube/internal/api/base/service"
	videodto "edu_tube/internal/api/video/dto"
	models "edu_tube/internal/api/video/models"
	"edu_tube/internal/common"
	"edu_tube/internal/global"

	"github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressPurgeFunc xóa toàn bộ bản ghi tiến độ học của một video.
// Được progresssvc đăng ký khi khởi tạo để tránh import vòng giữa hai package.
type ProgressPurgeFunc func(ctx context.Context, videoID primitive.ObjectID) (int64, error)

// VideoService là cấu trúc chứa các phương thức liên quan đến video
type VideoService struct {
	*basesvc.BaseServiceMongoImpl[models.Video]

	progressPurge ProgressPurgeFunc
}

// NewVideoService tạo mới VideoService
func NewVideoService() (*VideoService, error) {
	videoCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Videos)
	if !exist {
		return nil, fmt.Errorf("failed to get videos collection: %v", common.ErrNotFound)
	}

	return &VideoService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Video](videoCollection),
	}, nil
}

// SetProgressPurgeFunc đăng ký hàm xóa tiến độ học khi video bị xóa
func (s *VideoService) SetProgressPurgeFunc(fn ProgressPurgeFunc) {
	s.progressPurge = fn
}

// Publish đăng một video mới. Các trường nội dung AI khởi tạo rỗng,
// trạng thái xử lý AI của cả bốn trường đặt là pending.
func (s *VideoService) Publish(ctx context.Context, ownerID primitive.ObjectID, input *videodto.VideoCreateInput) (*models.Video, error) {
	video := models.Video{
		VideoFile:          input.VideoFile,
		Thumbnail:          input.Thumbnail,
		Title:              input.Title,
		Description:        input.Description,
		Duration:           input.Duration,
		Category:           input.Category,
		Difficulty:         input.Difficulty,
		Owner:              ownerID,
		ViewedBy:           []primitive.ObjectID{},
		Chapters:           []models.Chapter{},
		Quiz:               []models.QuizQuestion{},
		Keywords:           []string{},
		LearningObjectives: []string{},
		IsPublished:        true,
		AIProcessingStatus: models.DefaultAIProcessingStatus(),
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, video)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"video_id": created.ID.Hex(), "owner_id": ownerID.Hex(), "title": created.Title}).Info("Publish: Đăng video thành công")
	return &created, nil
}

// List trả về danh sách video phân trang, kèm thông tin rút gọn của chủ sở hữu.
// Hỗ trợ tìm kiếm theo từ khóa (title/description/keywords), lọc theo category,
// difficulty, chủ sở hữu và sắp xếp theo trường tùy chọn.
func (s *VideoService) List(ctx context.Context, input *videodto.VideoListInput) (*basemodels.PaginateResult[models.VideoListItem], error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	match := bson.M{}
	if input.Query != "" {
		regex := bson.M{"$regex": input.Query, "$options": "i"}
		match["$or"] = []bson.M{
			{"title": regex},
			{"description": regex},
			{"keywords": regex},
		}
	}
	if input.Category != "" {
		match["category"] = input.Category
	}
	if input.Difficulty != "" {
		match["difficulty"] = input.Difficulty
	}
	if input.OwnerID != "" {
		ownerID, err := primitive.ObjectIDFromHex(input.OwnerID)
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "ownerId không hợp lệ", common.StatusBadRequest, err)
		}
		match["owner"] = ownerID
	}

	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	sortOrder := -1
	if input.SortType == "asc" {
		sortOrder = 1
	}

	total, err := s.BaseServiceMongoImpl.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{sortBy: sortOrder}},
		{"$skip": (page - 1) * limit},
		{"$limit": limit},
		{"$lookup": bson.M{
			"from":         global.MongoDB_ColNames.Users,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner",
			"pipeline": []bson.M{
				{"$project": bson.M{"username": 1, "fullName": 1, "avatarUrl": 1}},
			},
		}},
		{"$unwind": "$owner"},
	}

	cursor, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.VideoListItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	totalPage := (total + limit - 1) / limit
	return &basemodels.PaginateResult[models.VideoListItem]{
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Items:     items,
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// Update cập nhật thông tin video. Chỉ chủ sở hữu mới được phép cập nhật.
func (s *VideoService) Update(ctx context.Context, videoID, requesterID primitive.ObjectID, input *videodto.VideoUpdateInput) (*models.Video, error) {
	video, err := s.BaseServiceMongoImpl.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if video.Owner != requesterID {
		return nil, common.NewError(common.ErrCodeAuthOwnership, "Không có quyền cập nhật video này", common.StatusForbidden, nil)
	}

	set := map[string]interface{}{}
	if input.Title != "" {
		set["title"] = input.Title
	}
	if input.Description != "" {
		set["description"] = input.Description
	}
	if input.Category != "" {
		set["category"] = input.Category
	}
	if input.Difficulty != "" {
		set["difficulty"] = input.Difficulty
	}
	if input.Thumbnail != "" {
		set["thumbnail"] = input.Thumbnail
	}
	if input.IsPublished != nil {
		set["isPublished"] = *input.IsPublished
	}
	if len(set) == 0 {
		return &video, nil
	}

	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, videoID, &basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// TogglePublish đảo trạng thái xuất bản của video. Chỉ chủ sở hữu mới được phép.
func (s *VideoService) TogglePublish(ctx context.Context, videoID, requesterID primitive.ObjectID) (bool, error) {
	video, err := s.BaseServiceMongoImpl.FindOneById(ctx, videoID)
	if err != nil {
		return false, err
	}

	if video.Owner != requesterID {
		return false, common.NewError(common.ErrCodeAuthOwnership, "Không có quyền cập nhật video này", common.StatusForbidden, nil)
	}

	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, videoID, &basesvc.UpdateData{
		Set: map[string]interface{}{"isPublished": !video.IsPublished},
	})
	if err != nil {
		return false, err
	}
	return updated.IsPublished, nil
}

// Delete xóa video. Chỉ chủ sở hữu mới được phép.
// Sau khi xóa video, toàn bộ bản ghi tiến độ học của video cũng bị xóa theo;
// lỗi xóa tiến độ chỉ log, không làm fail thao tác xóa video.
func (s *VideoService) Delete(ctx context.Context, videoID, requesterID primitive.ObjectID) error {
	video, err := s.BaseServiceMongoImpl.FindOneById(ctx, videoID)
	if err != nil {
		return err
	}

	if video.Owner != requesterID {
		return common.NewError(common.ErrCodeAuthOwnership, "Không có quyền xóa video này", common.StatusForbidden, nil)
	}

	if err := s.BaseServiceMongoImpl.DeleteById(ctx, videoID); err != nil {
		return err
	}

	if s.progressPurge != nil {
		deleted, purgeErr := s.progressPurge(ctx, videoID)
		if purgeErr != nil {
			logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "error": purgeErr.Error()}).Error("Delete: Lỗi xóa tiến độ học của video")
		} else if deleted > 0 {
			logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "deleted": deleted}).Info("Delete: Đã xóa tiến độ học của video")
		}
	}

	logrus.WithFields(logrus.Fields{"video_id": videoID.Hex(), "owner_id": requesterID.Hex()}).Info("Delete: Xóa video thành công")
	return nil
}

// RecordView ghi nhận lượt xem của một người dùng.
// Mỗi người dùng chỉ được tính một lượt xem cho mỗi video: filter với $ne trên viewedBy
// đảm bảo $inc chỉ chạy lần đầu, các lần xem lại không thay đổi gì.
func (s *VideoService) RecordView(ctx context.Context, videoID, userID primitive.ObjectID) (int64, error) {
	updated, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx,
		bson.M{"_id": videoID, "viewedBy": bson.M{"$ne": userID}},
		&basesvc.UpdateData{
			Inc:      map[string]interface{}{"views": 1},
			AddToSet: map[string]interface{}{"viewedBy": userID},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err == nil {
		return updated.Views, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, err
	}

	// Không match: video không tồn tại hoặc người dùng đã xem rồi
	video, findErr := s.BaseServiceMongoImpl.FindOneById(ctx, videoID)
	if findErr != nil {
		return 0, findErr
	}
	return video.Views, nil
}

// UpdateMetrics cập nhật chỉ số phân tích của video theo trung bình cộng dồn
// trên số lượt xem hiện tại.
func (s *VideoService) UpdateMetrics(ctx context.Context, videoID primitive.ObjectID, input *videodto.VideoMetricsInput) (*models.Video, error) {
	video, err := s.BaseServiceMongoImpl.FindOneById(ctx, videoID)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	views := float64(video.Views)
	if input.WatchTime > 0 {
		set["averageWatchTime"] = (video.AverageWatchTime*views + input.WatchTime) / (views + 1)
	}
	if input.Completed {
		set["completionRate"] = (video.CompletionRate*views + 1) / (views + 1)
	}
	if len(set) == 0 {
		return &video, nil
	}

	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, videoID, &basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ChannelStats trả về thống kê kênh (tổng video, tổng lượt xem, tổng thời lượng)
// của một chủ sở hữu
func (s *VideoService) ChannelStats(ctx context.Context, ownerID primitive.ObjectID) (*models.ChannelStats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"owner": ownerID}},
		{"$group": bson.M{
			"_id":           nil,
			"totalViews":    bson.M{"$sum": "$views"},
			"totalVideos":   bson.M{"$count": bson.M{}},
			"totalDuration": bson.M{"$sum": "$duration"},
		}},
	}

	cursor, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	stats := &models.ChannelStats{}
	var results []models.ChannelStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if len(results) > 0 {
		stats = &results[0]
	}
	return stats, nil
}

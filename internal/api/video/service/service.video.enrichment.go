package videosvc

import (
	"context"
	"errors"

	basesvc "edu_tube/internal/api/base/service"
	models "edu_tube/internal/api/video/models"
	"edu_tube/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClaimForEnrichment giành quyền xử lý AI cho một video bằng CAS trên aiProcessingStatus:
// chỉ match khi không có trường nào đang processing, đồng thời set transcript=processing
// và các trường còn lại về pending trong cùng một thao tác atomic. Hai request enrich
// đồng thời thì chỉ một request claim được, request kia nhận lỗi conflict.
func (s *VideoService) ClaimForEnrichment(ctx context.Context, videoID primitive.ObjectID) (*models.Video, error) {
	nor := make([]bson.M, 0, len(models.AIFields))
	for _, f := range models.AIFields {
		nor = append(nor, bson.M{"aiProcessingStatus." + f: models.AIStatusProcessing})
	}

	set := map[string]interface{}{
		"aiProcessingStatus." + models.AIFieldTranscript: models.AIStatusProcessing,
	}
	for _, f := range models.AIFields[1:] {
		set["aiProcessingStatus."+f] = models.AIStatusPending
	}

	claimed, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx,
		bson.M{"_id": videoID, "$nor": nor},
		&basesvc.UpdateData{Set: set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err == nil {
		return &claimed, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	// Không match: video không tồn tại hoặc đang có phiên xử lý khác
	exists, existsErr := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"_id": videoID})
	if existsErr != nil {
		return nil, existsErr
	}
	if !exists {
		return nil, common.ErrNotFound
	}
	return nil, common.NewError(common.ErrCodeBusinessState, "Video đang được xử lý AI bởi một phiên khác", common.StatusConflict, nil)
}

// ApplyEnrichmentUpdate ghi kết quả một bước xử lý AI vào video.
// set chứa các cặp field/giá trị cần cập nhật (nội dung lẫn aiProcessingStatus.*).
func (s *VideoService) ApplyEnrichmentUpdate(ctx context.Context, videoID primitive.ObjectID, set map[string]interface{}) (*models.Video, error) {
	updated, err := s.BaseServiceMongoImpl.UpdateById(ctx, videoID, &basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindStaleProcessing trả về các video có ít nhất một trường đang processing
// nhưng không được cập nhật từ sau mốc thời gian cutoff (unix milli).
// Đây là các phiên xử lý bị bỏ dở (process chết giữa chừng) cần được reconcile.
func (s *VideoService) FindStaleProcessing(ctx context.Context, cutoffMilli int64) ([]models.Video, error) {
	or := make([]bson.M, 0, len(models.AIFields))
	for _, f := range models.AIFields {
		or = append(or, bson.M{"aiProcessingStatus." + f: models.AIStatusProcessing})
	}

	return s.BaseServiceMongoImpl.Find(ctx, bson.M{
		"$or":       or,
		"updatedAt": bson.M{"$lt": cutoffMilli},
	}, nil)
}

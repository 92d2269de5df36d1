// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	authdto "edu_tube/internal/api/auth/dto"
	models "edu_tube/internal/api/auth/models"
	basesvc "edu_tube/internal/api/base/service"
	"edu_tube/internal/common"
	"edu_tube/internal/global"
	"edu_tube/internal/notification"
	"edu_tube/internal/utility"

	"github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// Register đăng ký người dùng mới.
// Kiểm tra trùng username/email, hash mật khẩu bằng bcrypt rồi tạo user.
// Email chào mừng được gửi sau khi tạo thành công, lỗi gửi email không làm fail đăng ký.
func (s *UserService) Register(ctx context.Context, input *authdto.UserRegisterInput) (*models.User, error) {
	// Kiểm tra trùng username
	exists, err := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"username": input.Username})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.ErrCodeDatabaseQuery, "Username đã được sử dụng", common.StatusConflict, nil)
	}

	// Kiểm tra trùng email
	exists, err = s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"email": input.Email})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.ErrCodeDatabaseQuery, "Email đã được sử dụng", common.StatusConflict, nil)
	}

	hashed, err := utility.HashPassword(input.Password)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Lỗi hash mật khẩu", common.StatusInternalServerError, err)
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Password: hashed,
		Tokens:   []models.Token{},
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, user)
	if err != nil {
		// Unique index có thể bắt trường hợp race giữa hai lần đăng ký cùng lúc
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.NewError(common.ErrCodeDatabaseQuery, "Username hoặc email đã được sử dụng", common.StatusConflict, err)
		}
		return nil, err
	}

	// Gửi email chào mừng, lỗi chỉ log
	if sendErr := notification.GetNotifier().SendWelcomeEmail(created.Email, created.FullName); sendErr != nil {
		logrus.WithFields(logrus.Fields{"user_id": created.ID.Hex(), "error": sendErr.Error()}).Warn("Register: Lỗi gửi email chào mừng, không fail đăng ký")
	}

	logrus.WithFields(logrus.Fields{"user_id": created.ID.Hex(), "username": created.Username}).Info("Register: Đăng ký thành công")
	return &created, nil
}

// Login đăng nhập bằng email + mật khẩu.
// Tạo JWT token mới, lưu vào field token (token mới nhất) và vào mảng tokens theo hwid.
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utility.ComparePassword(user.Password, input.Password) {
		return nil, common.ErrInvalidCredentials
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuth, "Tài khoản đã bị khóa: "+user.BlockNote, common.StatusForbidden, nil)
	}

	rdNumber := rand.Intn(100)
	currentTime := time.Now().Unix()
	tokenMap, err := utility.CreateToken(global.MongoDB_ServerConfig.JwtSecret, user.ID.Hex(), strconv.FormatInt(currentTime, 16), strconv.Itoa(rdNumber))
	if err != nil {
		return nil, err
	}

	user.Token = tokenMap["token"]
	var idTokenExist int = -1
	for i, _token := range user.Tokens {
		if _token.Hwid == input.Hwid {
			idTokenExist = i
			break
		}
	}
	if idTokenExist == -1 {
		user.Tokens = append(user.Tokens, models.Token{Hwid: input.Hwid, JwtToken: tokenMap["token"]})
	} else {
		user.Tokens[idTokenExist].JwtToken = tokenMap["token"]
	}

	tokenUpdateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":  user.Token,
			"tokens": user.Tokens,
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, tokenUpdateData)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": updatedUser.ID.Hex(), "email": updatedUser.Email}).Info("Login: Đăng nhập thành công")
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token theo hwid)
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID, input *authdto.UserLogoutInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}
	newTokens := make([]models.Token, 0)
	for _, t := range user.Tokens {
		if t.Hwid != input.Hwid {
			newTokens = append(newTokens, t)
		}
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"tokens": newTokens,
			"token":  "",
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// ChangePassword đổi mật khẩu người dùng.
// Xác thực mật khẩu cũ trước, sau đó hash mật khẩu mới và thu hồi toàn bộ token hiện có.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangePasswordInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	if !utility.ComparePassword(user.Password, input.OldPassword) {
		return common.NewError(common.ErrCodeAuthCredentials, "Mật khẩu cũ không đúng", common.StatusUnauthorized, nil)
	}

	hashed, err := utility.HashPassword(input.NewPassword)
	if err != nil {
		return common.NewError(common.ErrCodeInternalServer, "Lỗi hash mật khẩu", common.StatusInternalServerError, err)
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"password": hashed,
			"tokens":   []models.Token{},
			"token":    "",
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

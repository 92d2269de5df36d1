package authhdl

import (
	"fmt"

	authdto "edu_tube/internal/api/auth/dto"
	models "edu_tube/internal/api/auth/models"
	authsvc "edu_tube/internal/api/auth/service"
	basehdl "edu_tube/internal/api/base/handler"
	basesvc "edu_tube/internal/api/base/service"
	"edu_tube/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler xử lý các request xác thực và quản lý người dùng
type UserHandler struct {
	*basehdl.BaseHandler[models.User, authdto.UserCreateInput, authdto.UserChangeInfoInput]
	userService *authsvc.UserService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.User, authdto.UserCreateInput, authdto.UserChangeInfoInput](userService)
	return &UserHandler{
		BaseHandler: baseHandler,
		userService: userService,
	}, nil
}

// requireUserID lấy userID đã được AuthMiddleware lưu vào context.
func (h *UserHandler) requireUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := c.Locals("user_id")
	if userID == nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil)
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err)
	}
	return objID, nil
}

// HandleRegister xử lý đăng ký người dùng mới
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserRegisterInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.Register(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user.Password = ""
		user.Tokens = nil
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleLogin xử lý đăng nhập người dùng
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserLoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.Login(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user.Password = ""
		user.Tokens = nil
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleLogout xử lý đăng xuất người dùng
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		objID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserLogoutInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err = h.userService.Logout(c.Context(), objID, &input)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleGetProfile lấy thông tin profile của người dùng
func (h *UserHandler) HandleGetProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		objID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.BaseServiceMongoImpl.FindOneById(c.Context(), objID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user.Password = ""
		user.Tokens = nil
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleUpdateProfile cập nhật thông tin profile
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		objID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserChangeInfoInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		update := &basesvc.UpdateData{Set: map[string]interface{}{}}
		if input.FullName != "" {
			update.Set["fullName"] = input.FullName
		}
		if input.AvatarURL != "" {
			update.Set["avatarUrl"] = input.AvatarURL
		}
		if input.CoverURL != "" {
			update.Set["coverUrl"] = input.CoverURL
		}
		updatedUser, err := h.userService.BaseServiceMongoImpl.UpdateById(c.Context(), objID, update)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		updatedUser.Password = ""
		updatedUser.Tokens = nil
		h.HandleResponse(c, updatedUser, nil)
		return nil
	})
}

// HandleChangePassword đổi mật khẩu người dùng
func (h *UserHandler) HandleChangePassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		objID, err := h.requireUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserChangePasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err = h.userService.ChangePassword(c.Context(), objID, &input)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

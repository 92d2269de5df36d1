package global

import (
	"edu_tube/config"
	"edu_tube/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users    string // Tên collection cho người dùng
	Videos   string // Tên collection cho video bài giảng
	Progress string // Tên collection cho tiến độ học tập của người dùng
}

// Các biến toàn cục
var Validate *validator.Validate                                            // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                           // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                              // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName)  // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases

// InitColNames gán tên các collection mặc định
func InitColNames() {
	MongoDB_ColNames.Users = "auth_users"
	MongoDB_ColNames.Videos = "videos"
	MongoDB_ColNames.Progress = "video_progress"
}

package utility

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// JwtClaims chứa data được mã hóa trong JWT token.
type JwtClaims struct {
	UserID       string `json:"userId"`
	Time         string `json:"time"`
	RandomNumber string `json:"randomNumber"`
	jwt.StandardClaims
}

// CreateToken tạo JWT token mới với secret và thông tin user.
// Trả về map chứa key "token" để caller lưu vào document user.
func CreateToken(secret string, userID string, t string, randomNumber string) (map[string]string, error) {
	claims := JwtClaims{
		UserID:       userID,
		Time:         t,
		RandomNumber: randomNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("không thể ký JWT token: %w", err)
	}

	result := map[string]string{
		"token": tokenString,
	}
	return result, nil
}

// ParseToken giải mã JWT token và trả về claims.
// Trả về lỗi nếu token không hợp lệ hoặc sai secret.
func ParseToken(secret string, tokenString string) (*JwtClaims, error) {
	claims := &JwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("phương thức ký không hợp lệ: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token không hợp lệ")
	}
	return claims, nil
}

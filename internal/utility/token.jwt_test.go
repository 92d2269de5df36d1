package utility

import "testing"

func TestCreateTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	tokenMap, err := CreateToken(secret, "66f0a1b2c3d4e5f6a7b8c9d0", "18f2", "42")
	if err != nil {
		t.Fatalf("CreateToken trả về lỗi không mong đợi: %v", err)
	}

	// Giá trị token gán thẳng vào trường string của user/token document
	var jwtToken string = tokenMap["token"]
	if jwtToken == "" {
		t.Fatal("Map kết quả phải chứa key 'token' với giá trị khác rỗng")
	}

	claims, err := ParseToken(secret, jwtToken)
	if err != nil {
		t.Fatalf("ParseToken trả về lỗi không mong đợi: %v", err)
	}
	if claims.UserID != "66f0a1b2c3d4e5f6a7b8c9d0" {
		t.Errorf("UserID trong claims sai: %q", claims.UserID)
	}
	if claims.Time != "18f2" || claims.RandomNumber != "42" {
		t.Errorf("Claims không khớp dữ liệu đã ký: %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokenMap, err := CreateToken("secret-a", "66f0a1b2c3d4e5f6a7b8c9d0", "18f2", "7")
	if err != nil {
		t.Fatalf("CreateToken trả về lỗi không mong đợi: %v", err)
	}

	if _, err := ParseToken("secret-b", tokenMap["token"]); err == nil {
		t.Error("Token ký bằng secret khác phải bị từ chối")
	}
}

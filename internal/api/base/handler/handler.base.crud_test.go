package basehdl

import "testing"

func TestNewCountResult(t *testing.T) {
	result := newCountResult(25, 10)
	if result.TotalCount != 25 || result.Limit != 10 {
		t.Errorf("Kết quả đếm phải giữ nguyên count và limit, nhận được %+v", result)
	}
	if result.TotalPage != 3 {
		t.Errorf("25 mục với limit 10 phải là 3 trang, nhận được %d", result.TotalPage)
	}

	// Không có limit thì chỉ trả về tổng số
	result = newCountResult(25, 0)
	if result.TotalCount != 25 || result.Limit != 0 || result.TotalPage != 0 {
		t.Errorf("Không có limit thì không tính tổng số trang, nhận được %+v", result)
	}

	result = newCountResult(0, 10)
	if result.TotalPage != 0 {
		t.Errorf("Không có mục nào thì tổng số trang là 0, nhận được %d", result.TotalPage)
	}
}

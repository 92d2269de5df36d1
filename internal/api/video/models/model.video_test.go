package models

import "testing"

func TestDefaultAIProcessingStatus(t *testing.T) {
	status := DefaultAIProcessingStatus()

	if len(status) != len(AIFields) {
		t.Fatalf("Map trạng thái mặc định phải có đủ %d trường, nhận được %d", len(AIFields), len(status))
	}
	for _, field := range AIFields {
		if status[field] != AIStatusPending {
			t.Errorf("Trạng thái mặc định của %q phải là pending, nhận được %q", field, status[field])
		}
	}

	// Mỗi lần gọi phải trả về map độc lập
	status[AIFieldTranscript] = AIStatusProcessing
	fresh := DefaultAIProcessingStatus()
	if fresh[AIFieldTranscript] != AIStatusPending {
		t.Error("Thay đổi map trả về không được ảnh hưởng tới lần gọi sau")
	}
}

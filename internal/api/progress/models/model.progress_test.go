package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageQuizScore(t *testing.T) {
	p := &Progress{}
	assert.Equal(t, 0, p.AverageQuizScore(), "Chưa làm quiz lần nào thì điểm trung bình là 0")

	p.QuizAttempts = []QuizAttempt{{Score: 80}, {Score: 90}, {Score: 95}}
	assert.Equal(t, 88, p.AverageQuizScore(), "Điểm trung bình phải được làm tròn")

	p.QuizAttempts = []QuizAttempt{{Score: 33.4}}
	assert.Equal(t, 33, p.AverageQuizScore())
}

func TestCompletionPercentage(t *testing.T) {
	p := &Progress{WatchTime: 45}

	assert.Equal(t, 50, p.CompletionPercentage(90))
	assert.Equal(t, 0, p.CompletionPercentage(0), "Thời lượng 0 không được chia cho 0")
	assert.Equal(t, 0, p.CompletionPercentage(-10), "Thời lượng âm coi như không hợp lệ")

	// Watch time vượt thời lượng (tua đi tua lại) vẫn chặn trên ở 100
	p.WatchTime = 240
	assert.Equal(t, 100, p.CompletionPercentage(90))

	p.WatchTime = 89.6
	assert.Equal(t, 100, p.CompletionPercentage(90), "Làm tròn lên sát 100 vẫn hợp lệ")
}

// Package aidto định nghĩa các DTO cho domain ai.
package aidto

// AskQuestionInput câu hỏi của người học về nội dung video
type AskQuestionInput struct {
	Question string `json:"question" validate:"required,no_xss" maxLength:"1000"`
}

package channels

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender cấu hình SMTP của kênh email
type EmailSender struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// SendEmail gửi email với nội dung HTML
func SendEmail(sender *EmailSender, recipient string, subject string, htmlContent string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", sender.FromName, sender.FromEmail))
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlContent)

	dialer := gomail.NewDialer(sender.SMTPHost, sender.SMTPPort, sender.SMTPUsername, sender.SMTPPassword)
	return dialer.DialAndSend(msg)
}

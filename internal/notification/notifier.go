// Package notification - gửi thông báo qua các kênh email/telegram.
// Lỗi gửi thông báo chỉ được log ở phía caller, không bao giờ làm fail thao tác nghiệp vụ.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"edu_tube/internal/global"
	"edu_tube/internal/logger"
	"edu_tube/internal/notification/channels"

	"github.com/sirupsen/logrus"
)

// Notifier định tuyến thông báo tới các kênh đã được cấu hình.
// Kênh chưa cấu hình (thiếu SMTP host / bot token) sẽ được bỏ qua.
type Notifier struct {
	emailSender     *channels.EmailSender
	telegramToken   string
	telegramChatIDs []string
}

var (
	notifierInstance *Notifier
	notifierOnce     sync.Once
)

// GetNotifier trả về instance duy nhất của Notifier (singleton pattern)
func GetNotifier() *Notifier {
	notifierOnce.Do(func() {
		notifierInstance = newNotifier()
	})
	return notifierInstance
}

// newNotifier khởi tạo Notifier từ cấu hình server
func newNotifier() *Notifier {
	n := &Notifier{}
	cfg := global.MongoDB_ServerConfig
	if cfg == nil {
		return n
	}

	if cfg.SMTPHost != "" && cfg.SMTPFromEmail != "" {
		n.emailSender = &channels.EmailSender{
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPUsername: cfg.SMTPUsername,
			SMTPPassword: cfg.SMTPPassword,
			FromName:     cfg.SMTPFromName,
			FromEmail:    cfg.SMTPFromEmail,
		}
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatIDs != "" {
		n.telegramToken = cfg.TelegramBotToken
		for _, chatID := range strings.Split(cfg.TelegramChatIDs, ",") {
			chatID = strings.TrimSpace(chatID)
			if chatID != "" {
				n.telegramChatIDs = append(n.telegramChatIDs, chatID)
			}
		}
	}

	return n
}

// SendWelcomeEmail gửi email chào mừng sau khi đăng ký thành công
func (n *Notifier) SendWelcomeEmail(to string, name string) error {
	if n.emailSender == nil {
		return nil // Kênh email chưa được cấu hình
	}

	frontendURL := "http://localhost:3000"
	if global.MongoDB_ServerConfig != nil {
		frontendURL = global.MongoDB_ServerConfig.FrontendURL
	}

	subject := "Chào mừng bạn đến với EduTube AI"
	htmlContent := fmt.Sprintf(`
		<h2>Xin chào %s,</h2>
		<p>Tài khoản của bạn đã được tạo thành công. Bắt đầu học ngay hôm nay!</p>
		<p><a href="%s" style="display:inline-block;padding:10px 20px;text-decoration:none;border-radius:5px;background-color:#007bff;color:#fff;">Vào trang học</a></p>
	`, name, frontendURL)

	return channels.SendEmail(n.emailSender, to, subject, htmlContent)
}

// SendMilestoneNotification gửi thông báo khi người dùng đạt mốc số video hoàn thành.
// Gửi email cho người dùng và broadcast lên các kênh telegram đã cấu hình.
func (n *Notifier) SendMilestoneNotification(to string, name string, completedCount int) error {
	var firstErr error

	if n.emailSender != nil {
		subject := fmt.Sprintf("Chúc mừng! Bạn đã hoàn thành %d video", completedCount)
		htmlContent := fmt.Sprintf(`
			<h2>Chúc mừng %s!</h2>
			<p>Bạn vừa hoàn thành video thứ %d. Tiếp tục phát huy nhé!</p>
		`, name, completedCount)
		if err := channels.SendEmail(n.emailSender, to, subject, htmlContent); err != nil {
			firstErr = err
		}
	}

	if n.telegramToken != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		text := fmt.Sprintf("🎓 %s vừa đạt mốc %d video hoàn thành", name, completedCount)
		for _, chatID := range n.telegramChatIDs {
			if err := channels.SendTelegram(ctx, n.telegramToken, chatID, text); err != nil {
				logger.GetAppLogger().WithFields(logrus.Fields{
					"chatID": chatID,
					"error":  err.Error(),
				}).Warn("[NOTIFY] Lỗi gửi milestone lên telegram")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	return firstErr
}

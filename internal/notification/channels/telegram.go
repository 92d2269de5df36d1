package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"edu_tube/internal/logger"
)

// SendTelegram gửi telegram message tới một chat
func SendTelegram(ctx context.Context, botToken string, chatID string, text string) error {
	log := logger.GetAppLogger()

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken)

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"chatID": chatID,
		}).Error("[TELEGRAM] Lỗi khi gọi Telegram API")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Đọc response body để xem lỗi chi tiết
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.WithFields(map[string]interface{}{
			"chatID":     chatID,
			"statusCode": resp.StatusCode,
			"response":   string(bodyBytes),
		}).Error("[TELEGRAM] Telegram API trả về lỗi")
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

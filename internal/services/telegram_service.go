package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService pushes operational notifications to the platform's admin
// chat: new storefront orders and withdrawal requests.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatSAR formats a SAR amount with thousand separators.
func FormatSAR(amount float64) string {
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	fraction := amount - float64(intAmount)
	if fraction >= 0.005 {
		result.WriteString(fmt.Sprintf(".%02d", int(fraction*100+0.5)))
	}

	return result.String() + " ر.س"
}

// NewOrderNotification carries the fields shown in the admin chat for a new
// storefront order.
type NewOrderNotification struct {
	StoreName    string
	OrderNumber  string
	CustomerName string
	ProductTitle string
	Quantity     int
	TotalSAR     float64
}

// NotifyNewOrder sends notification about a new storefront order.
func (s *TelegramService) NotifyNewOrder(order NewOrderNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>🛒 طلب جديد</b>
<b>المتجر:</b> %s
<b>رقم الطلب:</b> %s
<b>العميل:</b> %s
<b>المنتج:</b> %s × %d
<b>الإجمالي:</b> %s`,
		order.StoreName,
		order.OrderNumber,
		order.CustomerName,
		order.ProductTitle,
		order.Quantity,
		FormatSAR(order.TotalSAR),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// WithdrawalNotification carries the fields shown in the admin chat for a
// withdrawal request.
type WithdrawalNotification struct {
	StoreName     string
	RequestNumber string
	RequesterName string
	AmountSAR     float64
	Method        string
}

// NotifyWithdrawalRequest sends notification about a new withdrawal request.
func (s *TelegramService) NotifyWithdrawalRequest(w WithdrawalNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>💸 طلب سحب جديد</b>
<b>المتجر:</b> %s
<b>رقم الطلب:</b> %s
<b>مقدم الطلب:</b> %s
<b>المبلغ:</b> %s
<b>الطريقة:</b> %s`,
		w.StoreName,
		w.RequestNumber,
		w.RequesterName,
		FormatSAR(w.AmountSAR),
		w.Method,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

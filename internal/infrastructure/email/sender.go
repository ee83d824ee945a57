package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lmsplatform/internal/domain"
)

type EmailSender struct {
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
}

func NewEmailSender(apiKey, senderEmail string) *EmailSender {
	return &EmailSender{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  "LMS Platform",
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
type sgRequest struct {
	Personalizations []struct {
		To []sgEmail `json:"to"`
	} `json:"personalizations"`
	From    sgEmail     `json:"from"`
	Subject string      `json:"subject"`
	Content []sgContent `json:"content"`
}

// SendQuestionReply шлет письмо автору вопроса, когда ответил кто-то другой
func (s *EmailSender) SendQuestionReply(toEmail, name, contentTitle string) error {
	html := fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; background-color: #f4f6f8; padding: 30px;">
		<div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 30px; border-radius: 8px;">
			<h3>Hello %s,</h3>
			<p>You have a new reply to your question in <b>%s</b>.</p>
			<p>Open the course to read the answer.</p>
			<p style="font-size: 12px; color: #888;">If this wasn't your question, just ignore this email.</p>
		</div>
	</body>
	</html>
	`, name, contentTitle)

	return s.send(toEmail, "Question Reply", html)
}

// SendOrderConfirmation шлет чек после оплаты курса
func (s *EmailSender) SendOrderConfirmation(toEmail string, receipt domain.OrderReceipt) error {
	html := fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; background-color: #f4f6f8; padding: 30px;">
		<div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 30px; border-radius: 8px;">
			<h3>Order Confirmation</h3>
			<p>Thank you for your purchase!</p>
			<table style="width: 100%%; font-size: 14px;">
				<tr><td>Order ID</td><td>%s</td></tr>
				<tr><td>Course</td><td>%s</td></tr>
				<tr><td>Price</td><td>$%.2f</td></tr>
				<tr><td>Date</td><td>%s</td></tr>
			</table>
		</div>
	</body>
	</html>
	`, receipt.OrderID, receipt.CourseName, receipt.Price, receipt.Date.Format("January 2, 2006"))

	return s.send(toEmail, "Order Confirmation", html)
}

func (s *EmailSender) send(toEmail, subject, html string) error {
	body := sgRequest{
		Personalizations: []struct {
			To []sgEmail `json:"to"`
		}{
			{To: []sgEmail{{Email: toEmail}}},
		},
		From: sgEmail{
			Email: s.senderEmail,
			Name:  s.senderName,
		},
		Subject: subject,
		Content: []sgContent{{Type: "text/html", Value: html}},
	}

	bodyBytes, _ := json.Marshal(body)

	req, err := http.NewRequest(
		"POST",
		"https://api.sendgrid.com/v3/mail/send",
		bytes.NewBuffer(bodyBytes),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SendGrid возвращает 202 при успехе
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, respBody)
	}

	return nil
}

package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// MailSender delivers one HTML email. Implementations must return an
// error on failure rather than panic; callers treat delivery as
// best-effort with bounded retry.
type MailSender interface {
	Send(to, subject, html string) error
}

// HTTPMailSender posts messages to a transactional mail HTTP API.
// Configuration via MAIL_API_URL, MAIL_API_KEY and MAIL_FROM. The short
// client timeout keeps a slow mail provider from stalling a sweep.
type HTTPMailSender struct {
	Endpoint string
	APIKey   string
	From     string
	Client   *http.Client
}

func NewHTTPMailSender() *HTTPMailSender {
	return &HTTPMailSender{
		Endpoint: os.Getenv("MAIL_API_URL"),
		APIKey:   os.Getenv("MAIL_API_KEY"),
		From:     os.Getenv("MAIL_FROM"),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type mailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *HTTPMailSender) Send(to, subject, html string) error {
	if m.Endpoint == "" || m.APIKey == "" {
		log.Println("mail: MAIL_API_URL/MAIL_API_KEY not set, skipping send")
		return fmt.Errorf("mail sender not configured")
	}

	body, err := json.Marshal(mailPayload{
		From:    m.From,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	res, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", res.StatusCode)
	}
	return nil
}

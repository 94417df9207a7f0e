package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

// SendGridClient delivers messages through the SendGrid v3 mail API.
type SendGridClient struct {
	BaseURL   string
	FromEmail string
	FromName  string
	HTTP      *http.Client
}

func NewSendGridClient(baseURL, fromEmail, fromName string) *SendGridClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.sendgrid.com"
	}
	return &SendGridClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		FromEmail: fromEmail,
		FromName:  fromName,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMessage struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
	CustomArgs       map[string]string   `json:"custom_args,omitempty"`
}

// SendError is a non-2xx SendGrid response.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sendgrid: status %d: %s", e.Status, e.Body)
}

// Send posts msg with apiKey. Text content must precede HTML per the API.
func (c *SendGridClient) Send(ctx context.Context, apiKey string, msg domain.OutboxMessage) error {
	payload := sgMessage{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: msg.Recipient, Name: msg.RecipientName}}}},
		From:             sgAddress{Email: c.FromEmail, Name: c.FromName},
		Subject:          msg.Subject,
		CustomArgs:       map[string]string{"outbox_id": msg.ID, "kind": string(msg.Kind)},
	}
	if strings.TrimSpace(msg.BodyText) != "" {
		payload.Content = append(payload.Content, sgContent{Type: "text/plain", Value: msg.BodyText})
	}
	payload.Content = append(payload.Content, sgContent{Type: "text/html", Value: msg.BodyHTML})

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &SendError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

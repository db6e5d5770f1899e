package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ignite/newsletter/internal/config"
)

// SparkPost sends email through the SparkPost transmissions API.
type SparkPost struct {
	apiKey     string
	baseURL    string
	fromEmail  string
	fromName   string
	replyTo    string
	httpClient *http.Client
}

// NewSparkPost creates a SparkPost mailer.
func NewSparkPost(cfg config.SparkPostConfig, from config.MailerConfig) *SparkPost {
	return &SparkPost{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		fromEmail:  from.FromEmail,
		fromName:   from.FromName,
		replyTo:    from.ReplyTo,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Send delivers one email via a SparkPost transmission.
func (sp *SparkPost) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload := map[string]interface{}{
		"recipients": []map[string]interface{}{
			{"address": map[string]string{"email": to}},
		},
		"content": map[string]interface{}{
			"from": map[string]string{
				"email": sp.fromEmail,
				"name":  sp.fromName,
			},
			"subject": subject,
			"html":    htmlBody,
			"text":    textBody,
		},
		"options": map[string]interface{}{
			"open_tracking":  false,
			"click_tracking": false,
		},
	}
	if sp.replyTo != "" {
		payload["content"].(map[string]interface{})["reply_to"] = sp.replyTo
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal transmission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sp.baseURL+"/transmissions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transmission request: %w", err)
	}
	req.Header.Set("Authorization", sp.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := sp.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SparkPost API error: %w", err)
	}
	defer resp.Body.Close()

	var spResp struct {
		Results struct {
			TotalAcceptedRecipients int    `json:"total_accepted_recipients"`
			ID                      string `json:"id"`
		} `json:"results"`
		Errors []struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&spResp)

	if resp.StatusCode != http.StatusOK || len(spResp.Errors) > 0 {
		if len(spResp.Errors) > 0 {
			return fmt.Errorf("SparkPost rejected transmission (status %d): %s", resp.StatusCode, spResp.Errors[0].Message)
		}
		return fmt.Errorf("SparkPost rejected transmission (status %d)", resp.StatusCode)
	}
	return nil
}

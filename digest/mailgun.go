package digest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// MailgunClient sends the digest through the Mailgun messages API.
type MailgunClient struct {
	baseURL   string
	apiKey    string
	domain    string
	recipient string
	client    *http.Client
}

func NewMailgunClient(apiKey, domain, recipient string) *MailgunClient {
	return &MailgunClient{
		baseURL:   "https://api.mailgun.net/v3",
		apiKey:    apiKey,
		domain:    domain,
		recipient: recipient,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts a multipart message with the chart attached.
func (m *MailgunClient) Send(ctx context.Context, subject, text string, chartPNG []byte) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"from":    fmt.Sprintf("Financial Digest <mailgun@%s>", m.domain),
		"to":      m.recipient,
		"subject": subject,
		"text":    text,
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}

	if len(chartPNG) > 0 {
		part, err := form.CreateFormFile("attachment", "btc_price_chart.png")
		if err != nil {
			return err
		}
		if _, err := part.Write(chartPNG); err != nil {
			return err
		}
	}

	if err := form.Close(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailgun: HTTP %d: %s", resp.StatusCode, detail)
	}
	return nil
}

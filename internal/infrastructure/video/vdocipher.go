package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OTPClient выдает короткоживущий токен воспроизведения через VdoCipher
type OTPClient struct {
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewOTPClient(apiSecret string) *OTPClient {
	return &OTPClient{
		apiSecret: apiSecret,
		baseURL:   "https://dev.vdocipher.com/api",
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *OTPClient) GenerateOTP(ctx context.Context, videoID string) (map[string]interface{}, error) {
	payload, _ := json.Marshal(map[string]int{"ttl": 300})

	url := fmt.Sprintf("%s/videos/%s/otp", c.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Apisecret "+c.apiSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("vdocipher error: status=%d body=%s", resp.StatusCode, body)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

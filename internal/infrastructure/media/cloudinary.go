package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"lmsplatform/internal/domain"
)

// ImageHost ходит в Cloudinary: загрузка и удаление картинок (обложки, аватарки)
type ImageHost struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewImageHost(cloudName, apiKey, apiSecret string) *ImageHost {
	return &ImageHost{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload принимает data-URI или base64 и возвращает {public_id, url}
func (h *ImageHost) Upload(ctx context.Context, folder, file string) (domain.Thumbnail, error) {
	ts := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Set("file", file)
	form.Set("api_key", h.apiKey)
	form.Set("timestamp", ts)
	form.Set("folder", folder)
	form.Set("signature", h.sign(map[string]string{"folder": folder, "timestamp": ts}))

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", h.cloudName)
	res, err := h.postForm(ctx, endpoint, form)
	if err != nil {
		return domain.Thumbnail{}, err
	}
	if res.Error != nil {
		return domain.Thumbnail{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return domain.Thumbnail{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

func (h *ImageHost) Destroy(ctx context.Context, publicID string) error {
	ts := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("api_key", h.apiKey)
	form.Set("timestamp", ts)
	form.Set("signature", h.sign(map[string]string{"public_id": publicID, "timestamp": ts}))

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", h.cloudName)
	res, err := h.postForm(ctx, endpoint, form)
	if err != nil {
		return err
	}
	if res.Error != nil {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}

// sign считает подпись по правилам Cloudinary: параметры в алфавитном порядке + секрет
func (h *ImageHost) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(h.apiSecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func (h *ImageHost) postForm(ctx context.Context, endpoint string, form url.Values) (*uploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("cloudinary: unexpected response: %s", body)
	}
	if resp.StatusCode >= 400 && out.Error == nil {
		return nil, fmt.Errorf("cloudinary: status=%d body=%s", resp.StatusCode, body)
	}
	return &out, nil
}

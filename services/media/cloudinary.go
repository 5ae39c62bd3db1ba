package mediasvc

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

const cloudinaryAPI = "https://api.cloudinary.com/v1_1"

type (
	// cloudinaryStore uploads media to Cloudinary using their REST API.
	cloudinaryStore struct {
		cloudName string
		apiKey    string
		apiSecret string
		folder    string
		baseURL   string
		http      *http.Client
	}

	uploadResult struct {
		PublicID  string `json:"public_id"`
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
)

var _ upload.MediaStore = (*cloudinaryStore)(nil)

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) upload.MediaStore {
	return &cloudinaryStore{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		baseURL:   cloudinaryAPI,
		http:      &http.Client{Timeout: 2 * time.Minute},
	}
}

// resourceType is the Cloudinary resource type of a content type; PDFs are stored as images.
func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "image/"), contentType == upload.MimePDF:
		return "image"
	default:
		return "raw"
	}
}

func (s *cloudinaryStore) Save(ctx context.Context, folder string, f upload.File) (string, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(core.NowFunc().Unix(), 10),
		"api_key":   s.apiKey,
	}
	if dir := path.Join(s.folder, folder); dir != "" {
		params["folder"] = dir
	}
	params["signature"] = s.sign(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return "", errors.Wrap(err, "cloudinary: creating form file")
	}
	if _, err = io.Copy(part, f.Content); err != nil {
		return "", errors.Wrap(err, "cloudinary: writing file")
	}
	_ = w.Close()

	url := fmt.Sprintf("%s/%s/%s/upload", s.baseURL, s.cloudName, resourceType(f.MediaType()))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", errors.Wrap(err, "cloudinary: creating request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "cloudinary: request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", errors.Errorf("cloudinary: upload failed (%d): %s", resp.StatusCode, string(body))
	}

	var result uploadResult
	if err = json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "cloudinary: decoding response")
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return result.URL, nil
}

// sign computes the API signature of params; api_key, file & resource_type are not signed.
func (s *cloudinaryStore) sign(params map[string]string) string {
	exclude := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !exclude[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	h := sha1.New()
	h.Write([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return fmt.Sprintf("%x", h.Sum(nil))
}

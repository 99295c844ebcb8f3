package filestoresvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
)

const serviceName = "filestore"

type (
	httpService struct {
		baseURL string
		bucket  string
		apiKey  string
		client  *http.Client
	}

	uploadResponse struct {
		URL string `json:"url"`
	}
)

var _ core.FileStore = (*httpService)(nil)

func NewHTTPService(conf *core.Config) *httpService {
	return &httpService{
		baseURL: conf.Filestore.BaseURL,
		bucket:  conf.Filestore.Bucket,
		apiKey:  conf.Filestore.ApiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (svc httpService) Store(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	if err := checkUpload(contentType, size); err != nil {
		return "", err
	}

	url := svc.baseURL + "/object/" + svc.bucket + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return "", errors.Wrap(err, "building upload request")
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return "", core.NewUpstreamError(serviceName, "unreachable", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return "", core.NewUpstreamError(serviceName, "invalid_credentials", errors.Errorf("status %d", res.StatusCode))
	case res.StatusCode >= http.StatusBadRequest:
		return "", core.NewUpstreamError(serviceName, "upload_failed", errors.Errorf("status %d", res.StatusCode))
	}

	var body uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", core.NewUpstreamError(serviceName, "bad_response", err)
	}
	if body.URL == "" {
		// the endpoint omits the URL for buckets served off a fixed public path
		return svc.baseURL + "/public/" + svc.bucket + "/" + name, nil
	}
	return body.URL, nil
}

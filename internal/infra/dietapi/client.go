package dietapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

const (
	defaultEndpoint  = "http://localhost:8080/api/diet"
	accessTokenField = "accessToken"
)

// Client posts meal photos to the diet analysis backend.
type Client struct {
	endpoint   string
	httpClient *resty.Client
}

// NewClient builds an API client. Retries stay disabled: every call is a single attempt.
func NewClient(endpoint string, timeout time.Duration) *Client {
	url := strings.TrimSpace(endpoint)
	if url == "" {
		url = defaultEndpoint
	}
	httpClient := resty.New().
		SetDebug(false).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{endpoint: url, httpClient: httpClient}
}

// Analyze uploads the envelope as multipart/form-data.
func (c *Client) Analyze(ctx context.Context, accessToken string, env analysis.Envelope) (analysis.Response, error) {
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader(accessTokenField, accessToken).
		SetFileReader("image", env.Filename, bytes.NewReader(env.Image)).
		SetFormData(map[string]string{
			"type": env.Type,
			"date": env.Date,
		}).
		Post(c.endpoint)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return analysis.Response{}, err
		}
		return analysis.Response{}, &analysis.UpstreamError{Err: err}
	}

	var body analysis.Response
	decodeErr := json.Unmarshal(res.Body(), &body)

	if res.IsError() {
		upstream := &analysis.UpstreamError{StatusCode: res.StatusCode()}
		if decodeErr == nil {
			upstream.Message = strings.TrimSpace(body.Msg)
		}
		return analysis.Response{}, upstream
	}
	if decodeErr != nil {
		return analysis.Response{}, apperrors.Wrap("upstream_error", fmt.Sprintf("decode diet api response (status %d)", res.StatusCode()), decodeErr)
	}
	return body, nil
}

var _ analysis.Client = (*Client)(nil)

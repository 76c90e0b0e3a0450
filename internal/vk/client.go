package vk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the VK API method endpoint.
const DefaultBaseURL = "https://api.vk.com/method"

// maxErrorBody caps how much of a non-2xx body is kept in an error.
const maxErrorBody = 512

// Client defines the calls needed to publish a photo on a community wall.
// Each call corresponds to one Stage; any failure is a *PlatformError.
type Client interface {
	// GetWallUploadServer requests a one-time upload target for the group.
	GetWallUploadServer(ctx context.Context, creds Credentials) (UploadTarget, error)

	// UploadPhoto transfers the image bytes to the upload target.
	UploadPhoto(ctx context.Context, target UploadTarget, filename string, photo io.Reader) (UploadReceipt, error)

	// SaveWallPhoto registers an uploaded photo with the group.
	SaveWallPhoto(ctx context.Context, creds Credentials, receipt UploadReceipt) (RegisteredAsset, error)

	// PostToWall creates a wall post from the group with the photo attached.
	PostToWall(ctx context.Context, creds Credentials, asset RegisteredAsset, message string) (PublishedPost, error)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// HTTPClient is the HTTP implementation of the VK Client interface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for API methods.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = strings.TrimRight(url, "/")
	}
}

// NewClient creates a new VK HTTP client.
func NewClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetWallUploadServer calls photos.getWallUploadServer.
func (c *HTTPClient) GetWallUploadServer(ctx context.Context, creds Credentials) (UploadTarget, error) {
	params := c.baseParams(creds)
	params.Set("group_id", strconv.Itoa(creds.GroupID))

	var target UploadTarget
	if err := c.callMethod(ctx, StageUploadTarget, http.MethodGet, params, &target); err != nil {
		return UploadTarget{}, err
	}
	if target.UploadURL == "" {
		return UploadTarget{}, stageError(StageUploadTarget, 0, "response has no upload_url", nil)
	}
	return target, nil
}

// UploadPhoto posts the image as multipart field "photo" to the upload target.
func (c *HTTPClient) UploadPhoto(ctx context.Context, target UploadTarget, filename string, photo io.Reader) (UploadReceipt, error) {
	if target.UploadURL == "" {
		return UploadReceipt{}, stageError(StageTransfer, 0, "no upload target", ErrUploadURLRequired)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return UploadReceipt{}, stageError(StageTransfer, 0, "build multipart body", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return UploadReceipt{}, stageError(StageTransfer, 0, "read local image", err)
	}
	if err := mw.Close(); err != nil {
		return UploadReceipt{}, stageError(StageTransfer, 0, "build multipart body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, &body)
	if err != nil {
		return UploadReceipt{}, stageError(StageTransfer, 0, "create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(StageTransfer, req)
	if err != nil {
		return UploadReceipt{}, err
	}

	var resp uploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return UploadReceipt{}, stageError(StageTransfer, 0, "unmarshal response", err)
	}
	if hasValue(resp.Error) {
		return UploadReceipt{}, stageError(StageTransfer, 0, uploadErrorDetail(resp), nil)
	}
	if resp.Photo == "" || resp.Photo == "[]" || resp.Hash == "" {
		return UploadReceipt{}, stageError(StageTransfer, 0, "upload server accepted no photo", nil)
	}

	return resp.UploadReceipt, nil
}

// SaveWallPhoto calls photos.saveWallPhoto with the receipt fields unchanged.
func (c *HTTPClient) SaveWallPhoto(ctx context.Context, creds Credentials, receipt UploadReceipt) (RegisteredAsset, error) {
	params := c.baseParams(creds)
	params.Set("group_id", strconv.Itoa(creds.GroupID))
	params.Set("photo", receipt.Photo)
	params.Set("server", strconv.Itoa(receipt.Server))
	params.Set("hash", receipt.Hash)

	var saved []RegisteredAsset
	if err := c.callMethod(ctx, StageRegister, http.MethodPost, params, &saved); err != nil {
		return RegisteredAsset{}, err
	}
	if len(saved) == 0 {
		return RegisteredAsset{}, stageError(StageRegister, 0, "response has no saved photo", nil)
	}
	asset := saved[0]
	if asset.ID == 0 || asset.OwnerID == 0 {
		return RegisteredAsset{}, stageError(StageRegister, 0, "saved photo has no id or owner_id", nil)
	}
	return asset, nil
}

// PostToWall calls wall.post on behalf of the group.
func (c *HTTPClient) PostToWall(ctx context.Context, creds Credentials, asset RegisteredAsset, message string) (PublishedPost, error) {
	params := c.baseParams(creds)
	params.Set("owner_id", strconv.Itoa(OwnerID(creds.GroupID)))
	params.Set("from_group", "1")
	params.Set("attachments", asset.Attachment())
	params.Set("message", message)

	var post PublishedPost
	if err := c.callMethod(ctx, StagePost, http.MethodPost, params, &post); err != nil {
		return PublishedPost{}, err
	}
	return post, nil
}

func (c *HTTPClient) baseParams(creds Credentials) url.Values {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("v", creds.Version())
	return params
}

// callMethod invokes an API method and decodes its response field into
// result. The error envelope is checked before result is touched.
func (c *HTTPClient) callMethod(ctx context.Context, stage Stage, method string, params url.Values, result any) error {
	endpoint := c.baseURL + "/" + stage.Method()

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return stageError(stage, 0, "create request", err)
	}

	respBody, err := c.do(stage, req)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return stageError(stage, 0, "unmarshal response", err)
	}
	if env.Error != nil {
		return stageError(stage, env.Error.Code, env.Error.Msg, nil)
	}
	if !hasValue(env.Response) {
		return stageError(stage, 0, "response field is missing", nil)
	}
	if err := json.Unmarshal(env.Response, result); err != nil {
		return stageError(stage, 0, "unmarshal response field", err)
	}
	return nil
}

// do performs a single HTTP request and returns the body of a 2xx response.
func (c *HTTPClient) do(stage Stage, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, stageError(stage, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stageError(stage, 0, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, stageError(stage, 0, fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(respBody, maxErrorBody)), nil)
	}
	return respBody, nil
}

func truncate(body []byte, limit int) string {
	body = bytes.TrimSpace(body)
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "...(truncated)"
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// uploadErrorDetail renders the upload server's error, which is either a
// plain string or an arbitrary JSON value.
func uploadErrorDetail(resp uploadResponse) string {
	var msg string
	if err := json.Unmarshal(resp.Error, &msg); err != nil {
		msg = string(bytes.TrimSpace(resp.Error))
	}
	for _, extra := range []string{resp.ErrorDescr, resp.ErrorReason} {
		if extra != "" {
			msg += ": " + extra
		}
	}
	return msg
}

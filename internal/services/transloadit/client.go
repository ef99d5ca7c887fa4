package transloadit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultUserAgent = "gotransloadit"

// Client represents a Transloadit assemblies API client
type Client struct {
	service    string
	userAgent  string
	httpClient *http.Client
}

var _ ClientAPI = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for all requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient creates a new client for the given service endpoint
func NewClient(service string, opts ...Option) (*Client, error) {
	service = strings.TrimRight(strings.TrimSpace(service), "/")
	if service == "" {
		return nil, fmt.Errorf("service endpoint is required")
	}

	c := &Client{
		service:    service,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Service returns the configured service endpoint.
func (c *Client) Service() string {
	return c.service
}

// CreateAssembly creates a new assembly
func (c *Client) CreateAssembly(ctx context.Context, opts AssemblyOptions) (*Assembly, error) {
	if opts.ExpectedFiles < 0 {
		return nil, ErrInvalidExpectedFiles
	}

	params, err := encodeParams(opts.Params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("params", params)
	if opts.Signature != "" {
		_ = writer.WriteField("signature", opts.Signature)
	}

	keys := make([]string, 0, len(opts.Fields))
	for key := range opts.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		_ = writer.WriteField(key, opts.Fields[key])
	}

	_ = writer.WriteField("num_expected_upload_files", strconv.Itoa(opts.ExpectedFiles))
	writer.Close()

	reqURL := c.service + "/assemblies"
	body, status, err := c.doRequest(ctx, http.MethodPost, reqURL, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	// The error field wins over the HTTP status.
	if gjson.ValidBytes(body) {
		if code := Response(body).ErrorCode(); code != "" {
			return nil, &AssemblyCreationError{
				Message:  code,
				Reason:   gjson.GetBytes(body, "reason"),
				Response: Response(body),
			}
		}
	}

	resp, err := checkResponse(http.MethodPost, reqURL, status, body)
	if err != nil {
		return nil, err
	}

	return &Assembly{Response: resp}, nil
}

// ReserveFile reserves resources for a file in an assembly
func (c *Client) ReserveFile(ctx context.Context, assembly AssemblyRef, file FileRef) (Response, error) {
	if assembly.SSLURL == "" {
		return nil, ErrMissingAssemblyURL
	}
	if file.Size < 0 {
		return nil, ErrInvalidFileSize
	}

	reqURL := fmt.Sprintf("%s/reserve_file?size=%s", assembly.SSLURL,
		escapeComponent(strconv.FormatInt(file.Size, 10)))
	return c.call(ctx, http.MethodPost, reqURL)
}

// AddFile imports a remote file into an assembly
func (c *Client) AddFile(ctx context.Context, assembly AssemblyRef, file FileRef) (Response, error) {
	if file.UploadURL == "" {
		return nil, ErrMissingUploadURL
	}
	if assembly.SSLURL == "" {
		return nil, ErrMissingAssemblyURL
	}
	if file.Size < 0 {
		return nil, ErrInvalidFileSize
	}

	// The service expects the parameters in this order.
	qs := "size=" + escapeComponent(strconv.FormatInt(file.Size, 10)) +
		"&filename=" + escapeComponent(file.Name) +
		"&fieldname=file" +
		"&s3Url=" + escapeComponent(file.UploadURL)

	return c.call(ctx, http.MethodPost, assembly.SSLURL+"/add_file?"+qs)
}

// CancelAssembly cancels a running assembly
func (c *Client) CancelAssembly(ctx context.Context, assembly AssemblyRef) (Response, error) {
	if assembly.SSLURL == "" {
		return nil, ErrMissingAssemblyURL
	}
	return c.call(ctx, http.MethodDelete, assembly.SSLURL)
}

// GetAssemblyStatus returns the current status of an assembly
func (c *Client) GetAssemblyStatus(ctx context.Context, statusURL string) (Response, error) {
	if statusURL == "" {
		return nil, ErrMissingStatusURL
	}
	return c.call(ctx, http.MethodGet, statusURL)
}

// call issues a bodyless request and returns the JSON body unmodified.
func (c *Client) call(ctx context.Context, method, reqURL string) (Response, error) {
	body, status, err := c.doRequest(ctx, method, reqURL, nil, "")
	if err != nil {
		return nil, err
	}
	return checkResponse(method, reqURL, status, body)
}

// doRequest executes an HTTP request and reads the whole body
func (c *Client) doRequest(ctx context.Context, method, reqURL string, body io.Reader, contentType string) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, &TransportError{Method: method, URL: reqURL, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Method: method, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Method: method, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	return data, resp.StatusCode, nil
}

func checkResponse(method, reqURL string, status int, body []byte) (Response, error) {
	if status < 200 || status > 299 {
		return nil, &TransportError{Method: method, URL: reqURL, StatusCode: status, Body: body}
	}
	if !gjson.ValidBytes(body) {
		return nil, &TransportError{Method: method, URL: reqURL, StatusCode: status, Body: body, Err: ErrInvalidJSON}
	}
	return Response(body), nil
}

// escapeComponent escapes a query value with spaces as %20 rather than '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func encodeParams(params any) (string, error) {
	switch p := params.(type) {
	case string:
		return p, nil
	case json.RawMessage:
		return string(p), nil
	case []byte:
		return string(p), nil
	}

	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return string(data), nil
}

// Package billapi is the HTTP client of the bill backend. It implements port.BillStore.
package billapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/resilience"
)

// Config configures the bill API client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
	Burst     int
	Policy    resilience.Policy
}

// Client talks to the bill backend on behalf of one session
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
	logger     *zap.Logger
	token      string
}

// envelope is the JSON body every backend endpoint answers with
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// New creates a client without credentials
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		exec:       resilience.NewExecutor(cfg.Policy, logger),
		logger:     logger,
	}
}

// WithToken returns a client sending token as bearer credentials.
// The copy shares the transport, limiter and breakers of c.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Signup registers an account and returns its session
func (c *Client) Signup(ctx context.Context, email, password, userType string) (*entity.Session, error) {
	body := map[string]string{"email": email, "password": password, "type": userType}
	var session entity.Session
	if err := c.doJSON(ctx, "auth.signup", http.MethodPost, "/auth/signup", body, &session, classifyWrite); err != nil {
		return nil, err
	}
	return &session, nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session entity.Session
	if err := c.doJSON(ctx, "auth.login", http.MethodPost, "/auth/login", body, &session, classify); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns the bills visible to the session
func (c *Client) List(ctx context.Context) ([]*entity.Bill, error) {
	bills := []*entity.Bill{}
	if err := c.doJSON(ctx, "bills.list", http.MethodGet, "/bills", nil, &bills, classify); err != nil {
		return nil, err
	}
	return bills, nil
}

// Create uploads a new bill as multipart form data.
// The multipart writer sets the Content-Type header, boundary included.
func (c *Client) Create(ctx context.Context, payload *entity.BillPayload) (*entity.CreatedBill, error) {
	body, contentType, err := encodeMultipart(payload)
	if err != nil {
		return nil, fmt.Errorf("encode bill: %w", err)
	}

	var created entity.CreatedBill
	if err := c.do(ctx, "bills.create", http.MethodPost, "/bills", body, contentType, &created, classifyWrite); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends the whole bill to PATCH /bills/{id}
func (c *Client) Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error) {
	if bill == nil || bill.ID == "" {
		return nil, fmt.Errorf("%w: bill id is required", port.ErrBadRequest)
	}

	var updated entity.Bill
	if err := c.doJSON(ctx, "bills.update", http.MethodPatch, "/bills/"+url.PathEscape(bill.ID), bill, &updated, classifyWrite); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Export downloads the admin spreadsheet into w
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	var buf bytes.Buffer
	err := c.exec.Execute(ctx, "bills.export", func(ctx context.Context) error {
		buf.Reset()
		resp, err := c.send(ctx, "bills.export", http.MethodGet, "/bills/export", nil, "")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, err = io.Copy(&buf, resp.Body)
		return err
	}, classify)
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, in, out interface{}, classifier resilience.Classifier) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		contentType = "application/json"
	}
	return c.do(ctx, operation, method, path, body, contentType, out, classifier)
}

// do sends one logical request through the limiter, retries and breaker and decodes data into out.
// Writes pass classifyWrite so they are attempted once.
func (c *Client) do(ctx context.Context, operation, method, path string, body []byte, contentType string, out interface{}, classifier resilience.Classifier) error {
	err := c.exec.Execute(ctx, operation, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		resp, err := c.send(ctx, operation, method, path, reader, contentType)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("decode %s data: %w", operation, err)
			}
		}
		return nil
	}, classifier)
	if err != nil {
		c.logger.Debug("Bill API call failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// send issues a single HTTP attempt; non-2xx answers become *HTTPStatusError
func (c *Client) send(ctx context.Context, operation, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bill api %s request: %w", operation, err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(operation, resp)
	}
	return resp, nil
}

func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

	msg := strings.TrimSpace(string(raw))
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		msg = env.Error
	}

	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    msg,
	}
}

// encodeMultipart writes the payload fields in order, then the receipt under "file"
func encodeMultipart(payload *entity.BillPayload) ([]byte, string, error) {
	if payload == nil {
		return nil, "", fmt.Errorf("%w: empty payload", port.ErrBadRequest)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, field := range payload.Fields {
		if err := mw.WriteField(field.Key, field.Value); err != nil {
			return nil, "", err
		}
	}

	if payload.File != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, payload.File.Name))
		contentType := payload.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(payload.File.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

var _ port.BillStore = (*Client)(nil)

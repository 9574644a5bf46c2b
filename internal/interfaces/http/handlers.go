package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

var errPayloadTooLarge = errors.New("receipt upload too large")

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CredentialsRequest is the body of signup and login
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Type     string `json:"type"`
}

// UpdateBillRequest is the body of PATCH /bills/:id.
// Clients send the whole bill; only status and commentAdmin are applied.
type UpdateBillRequest struct {
	Status       entity.BillStatus `json:"status"`
	CommentAdmin *string           `json:"commentAdmin"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Signup handles POST /auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", port.ErrBadRequest, err))
		return
	}

	session, err := h.services.Auth.Signup(c.Request.Context(), req.Email, req.Password, req.Type)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: session})
}

// Login handles POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", port.ErrBadRequest, err))
		return
	}

	session, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ListBills handles GET /bills
func (h *Handlers) ListBills(c *gin.Context) {
	list, err := h.services.Bills.List(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// GetBill handles GET /bills/:id
func (h *Handlers) GetBill(c *gin.Context) {
	bill, err := h.services.Bills.Get(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// CreateBill handles POST /bills as multipart form data.
// The email and status fields sent by the client are ignored.
func (h *Handlers) CreateBill(c *gin.Context) {
	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.fail(c, fmt.Errorf("%w: limit is %d bytes", errPayloadTooLarge, tooLarge.Limit))
		return
	}
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %s", service.ErrInvalidFile, strings.TrimSpace(bills.InvalidFormBadFileMessage)))
		return
	}
	if !bills.IsValidFileName(header.Filename) {
		h.fail(c, fmt.Errorf("%w: %s", service.ErrInvalidFile, strings.TrimSpace(bills.InvalidExtensionMessage)))
		return
	}

	receipt, err := readReceipt(header)
	if err != nil {
		h.fail(c, err)
		return
	}

	form := entity.BillForm{
		Type:       c.PostForm("type"),
		Name:       c.PostForm("name"),
		Date:       c.PostForm("date"),
		Amount:     c.PostForm("amount"),
		VAT:        c.PostForm("vat"),
		Pct:        c.PostForm("pct"),
		Commentary: c.PostForm("commentary"),
	}

	created, err := h.services.Bills.Create(c.Request.Context(), sessionFrom(c), form, receipt)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// UpdateBill handles PATCH /bills/:id
func (h *Handlers) UpdateBill(c *gin.Context) {
	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", port.ErrBadRequest, err))
		return
	}
	if req.Status != "" && !req.Status.IsValid() {
		h.fail(c, fmt.Errorf("%w: unknown status %q", port.ErrBadRequest, req.Status))
		return
	}

	bill, err := h.services.Bills.Update(c.Request.Context(), sessionFrom(c), c.Param("id"), service.BillUpdate{
		Status:       req.Status,
		CommentAdmin: req.CommentAdmin,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// ExportBills handles GET /bills/export
func (h *Handlers) ExportBills(c *gin.Context) {
	// built in memory so a failure can still be answered as JSON
	var buf bytes.Buffer
	if err := h.services.Export.WriteWorkbook(c.Request.Context(), sessionFrom(c), &buf); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bills.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// GetFile handles GET /files/:name
func (h *Handlers) GetFile(c *gin.Context) {
	name := c.Param("name")

	content, err := h.services.Files.Read(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, contentTypeFor(name), content)
}

// fail maps an application error to its status code and logs server-side failures
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.JSON(status, Response{Success: false, Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, port.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, port.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, port.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, port.ErrBadRequest),
		errors.Is(err, service.ErrInvalidFile),
		errors.Is(err, service.ErrInvalidBill):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func readReceipt(header *multipart.FileHeader) (*entity.ReceiptFile, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &entity.ReceiptFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(bills.Extension(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

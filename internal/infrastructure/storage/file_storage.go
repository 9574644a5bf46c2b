package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// ReceiptStorage keeps uploaded receipts flat under one directory
type ReceiptStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewReceiptStorage creates the receipt directory and returns a port.FileStorage on it
func NewReceiptStorage(baseDir string, logger *zap.Logger) (port.FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return &ReceiptStorage{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save writes a receipt
func (s *ReceiptStorage) Save(ctx context.Context, name string, content []byte) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		s.logger.Error("Failed to write receipt", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt saved", zap.String("path", fullPath), zap.Int("size", len(content)))
	return nil
}

// Read returns a receipt; a missing file yields port.ErrNotFound
func (s *ReceiptStorage) Read(ctx context.Context, name string) ([]byte, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("receipt %s: %w", name, port.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to read receipt", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	return content, nil
}

// Delete removes a receipt. Deleting a missing receipt is not an error.
func (s *ReceiptStorage) Delete(ctx context.Context, name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Failed to delete receipt", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

// resolve rejects names that would leave the receipt directory
func (s *ReceiptStorage) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid receipt name %q", port.ErrBadRequest, name)
	}

	fullPath := filepath.Join(s.baseDir, name)
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes receipts directory: %s", port.ErrBadRequest, name)
	}
	return fullPath, nil
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/pkg/utils"
)

// BillUpdate holds the fields an administrator may change on a bill
type BillUpdate struct {
	Status       entity.BillStatus
	CommentAdmin *string
}

// BillService manages bills on the backend
type BillService interface {
	Create(ctx context.Context, session entity.Session, form entity.BillForm, file *entity.ReceiptFile) (*entity.CreatedBill, error)
	Get(ctx context.Context, session entity.Session, id string) (*entity.Bill, error)
	List(ctx context.Context, session entity.Session) ([]*entity.Bill, error)
	Update(ctx context.Context, session entity.Session, id string, update BillUpdate) (*entity.Bill, error)
}

// BillServiceConfig configures receipt URLs and event publishing
type BillServiceConfig struct {
	PublicURL string                // base URL receipts are served from, e.g. http://localhost:8080
	Events    dispatcher.Dispatcher // optional, receives bill lifecycle events
}

type billServiceImpl struct {
	billRepo  port.BillRepository
	files     port.FileStorage
	txManager port.TransactionManager
	config    BillServiceConfig
	logger    Logger
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo port.BillRepository,
	files port.FileStorage,
	txManager port.TransactionManager,
	config BillServiceConfig,
	logger Logger,
) BillService {
	config.PublicURL = strings.TrimRight(config.PublicURL, "/")
	return &billServiceImpl{
		billRepo:  billRepo,
		files:     files,
		txManager: txManager,
		config:    config,
		logger:    logger,
	}
}

// Create stores the receipt and records a pending bill owned by the session user
func (s *billServiceImpl) Create(ctx context.Context, session entity.Session, form entity.BillForm, file *entity.ReceiptFile) (*entity.CreatedBill, error) {
	if file == nil || !bills.IsValidFileName(file.Name) {
		return nil, ErrInvalidFile
	}

	bill, err := billFromForm(form)
	if err != nil {
		return nil, err
	}

	bill.ID = uuid.NewString()
	bill.Status = entity.StatusPending
	bill.Email = session.Email
	bill.FileName = file.Name

	storedName := bill.ID + strings.ToLower(bills.Extension(file.Name))
	bill.FileURL = s.config.PublicURL + "/files/" + storedName

	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	if err := s.files.Save(ctx, storedName, file.Content); err != nil {
		s.logger.Error("Failed to store receipt", "file_name", file.Name, "error", err)
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.billRepo.Create(txCtx, bill)
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, storedName); delErr != nil {
			s.logger.Warn("Failed to remove orphan receipt", "path", storedName, "error", delErr)
		}
		s.logger.Error("Failed to create bill", "email", session.Email, "error", err)
		return nil, fmt.Errorf("create bill: %w", err)
	}

	s.logger.Info("Bill created", "id", bill.ID, "email", bill.Email)
	s.publish(ctx, event.NewEvent(event.TypeBillCreated, bill.ID, session.Email, map[string]interface{}{
		"type":   bill.Type,
		"amount": bill.Amount,
	}))
	return &entity.CreatedBill{ID: bill.ID, FileURL: bill.FileURL, FileName: bill.FileName}, nil
}

// Get returns one bill visible to the session
func (s *billServiceImpl) Get(ctx context.Context, session entity.Session, id string) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil || (!session.IsAdmin() && bill.Email != session.Email) {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	return bill, nil
}

// List returns every bill for administrators and the user's own bills otherwise
func (s *billServiceImpl) List(ctx context.Context, session entity.Session) ([]*entity.Bill, error) {
	if session.IsAdmin() {
		return s.billRepo.List(ctx)
	}
	return s.billRepo.ListByEmail(ctx, session.Email)
}

// Update applies a review decision. Only pending bills can change status.
func (s *billServiceImpl) Update(ctx context.Context, session entity.Session, id string, update BillUpdate) (*entity.Bill, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	var (
		updated  *entity.Bill
		reviewed bool
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		bill, err := s.billRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if bill == nil {
			return fmt.Errorf("%w: %s", ErrBillNotFound, id)
		}

		if update.Status != "" && update.Status != bill.Status {
			if err := checkTransition(txCtx, bill.Status, update.Status); err != nil {
				return fmt.Errorf("%w: %v", port.ErrConflict, err)
			}
			bill.Status = update.Status
			reviewed = true
		}
		if update.CommentAdmin != nil {
			bill.CommentAdmin = *update.CommentAdmin
		}
		bill.UpdatedAt = time.Now()

		if err := s.billRepo.Update(txCtx, bill); err != nil {
			return err
		}
		updated = bill
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update bill", "id", id, "status", update.Status, "error", err)
		return nil, err
	}

	s.logger.Info("Bill updated", "id", id, "status", updated.Status, "by", session.Email)
	if eventType, ok := event.TypeForStatus(updated.Status); ok && reviewed {
		s.publish(ctx, event.NewEvent(eventType, updated.ID, session.Email, map[string]interface{}{
			"type":   updated.Type,
			"amount": updated.Amount,
			"owner":  updated.Email,
		}))
	}
	return updated, nil
}

// publish hands an event to the subscribers once the change is committed.
// Subscriber failures are logged and never undo the change.
func (s *billServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.config.Events == nil {
		return
	}
	if err := s.config.Events.Dispatch(ctx, evt); err != nil {
		s.logger.Warn("Bill event not fully handled", "event_type", evt.Type, "id", evt.BillID, "error", err)
	}
}

// billFromForm parses the text fields of a creation request
func billFromForm(form entity.BillForm) (*entity.Bill, error) {
	if !entity.IsExpenseType(form.Type) {
		return nil, fmt.Errorf("%w: unknown expense type %q", ErrInvalidBill, form.Type)
	}
	if strings.TrimSpace(form.Date) == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidBill)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidBill, form.Amount)
	}

	pct := entity.DefaultPct
	if p := strings.TrimSpace(form.Pct); p != "" {
		pct, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: pct %q", ErrInvalidBill, form.Pct)
		}
	}

	return &entity.Bill{
		Type:       form.Type,
		Name:       utils.SanitizeString(form.Name),
		Date:       form.Date,
		Amount:     amount,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: utils.SanitizeString(form.Commentary),
	}, nil
}

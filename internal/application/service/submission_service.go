package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/workflow"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
	domainwf "github.com/garyjia/billed/internal/domain/workflow"
)

// BillSubmission drives one new bill form from editing to creation.
// It owns its draft and is not safe for concurrent use.
type BillSubmission struct {
	store     port.BillStore
	session   entity.Session
	notifier  port.Notifier
	navigator port.Navigator
	logger    Logger

	machine domainwf.StateMachine
	draft   entity.SubmissionDraft
	result  *entity.CreatedBill
}

// NewBillSubmission creates a submission in the editing state
func NewBillSubmission(
	store port.BillStore,
	session entity.Session,
	notifier port.Notifier,
	navigator port.Navigator,
	logger Logger,
) *BillSubmission {
	return &BillSubmission{
		store:     store,
		session:   session,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
		machine:   workflow.BuildSubmissionStateMachine(),
	}
}

// State returns the current submission state
func (s *BillSubmission) State() domainwf.State {
	return s.machine.State()
}

// Draft returns a copy of the current draft
func (s *BillSubmission) Draft() entity.SubmissionDraft {
	return s.draft
}

// Result returns the created bill once the submission succeeded
func (s *BillSubmission) Result() *entity.CreatedBill {
	return s.result
}

// Fill replaces the form values of the draft
func (s *BillSubmission) Fill(form entity.BillForm) error {
	if s.machine.State().IsTerminal() {
		return ErrSubmissionClosed
	}
	s.draft.Form = form
	return nil
}

// SelectFile attaches a receipt to the draft and reports whether its extension is valid.
// An invalid file stays selected: the user is alerted and Submit checks it again.
func (s *BillSubmission) SelectFile(file *entity.ReceiptFile) (bool, error) {
	if s.machine.State().IsTerminal() {
		return false, ErrSubmissionClosed
	}

	s.draft.File = file
	if !validReceipt(file) {
		s.notifier.Alert(bills.InvalidExtensionMessage)
		return false, nil
	}
	return true, nil
}

// Submit validates the draft and sends it to the bill store.
// On success the user is sent to the bills list.
func (s *BillSubmission) Submit(ctx context.Context) error {
	if s.machine.State().IsTerminal() {
		return ErrSubmissionClosed
	}

	if err := s.machine.Fire(ctx, domainwf.TriggerSubmit); err != nil {
		return err
	}

	if !validReceipt(s.draft.File) {
		s.notifier.Alert(bills.InvalidFormBadFileMessage)
		if err := s.machine.Fire(ctx, domainwf.TriggerReject); err != nil {
			return err
		}
		return ErrInvalidFile
	}

	payload := BuildBillPayload(s.draft, s.session)
	if err := s.machine.Fire(ctx, domainwf.TriggerSend); err != nil {
		return err
	}

	created, err := s.store.Create(ctx, payload)
	s.draft = entity.SubmissionDraft{}
	if err != nil {
		s.logger.Error("Failed to create bill", "email", s.session.Email, "error", err)
		if fireErr := s.machine.Fire(ctx, domainwf.TriggerFail); fireErr != nil {
			return fireErr
		}
		return fmt.Errorf("create bill: %w", err)
	}

	s.result = created
	if err := s.machine.Fire(ctx, domainwf.TriggerComplete); err != nil {
		return err
	}

	s.logger.Info("Bill created", "id", created.ID, "file_name", created.FileName)
	s.navigator.Navigate(port.RouteBills)
	return nil
}

// BuildBillPayload maps a draft to the creation payload.
// Fields are copied verbatim except email, taken from the session, and status,
// always pending. A blank pct gets entity.DefaultPct.
func BuildBillPayload(draft entity.SubmissionDraft, session entity.Session) *entity.BillPayload {
	form := draft.Form

	pct := strings.TrimSpace(form.Pct)
	if pct == "" {
		pct = strconv.Itoa(entity.DefaultPct)
	}

	return &entity.BillPayload{
		Fields: []entity.FormField{
			{Key: "type", Value: form.Type},
			{Key: "name", Value: form.Name},
			{Key: "date", Value: form.Date},
			{Key: "amount", Value: form.Amount},
			{Key: "vat", Value: form.VAT},
			{Key: "pct", Value: pct},
			{Key: "commentary", Value: form.Commentary},
			{Key: "email", Value: session.Email},
			{Key: "status", Value: string(entity.StatusPending)},
		},
		File:          draft.File,
		NoContentType: true,
	}
}

func validReceipt(file *entity.ReceiptFile) bool {
	return file != nil && bills.IsValidFileName(file.Name)
}

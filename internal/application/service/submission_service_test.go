package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
	domainwf "github.com/garyjia/billed/internal/domain/workflow"
)

var employee = entity.Session{Type: entity.UserTypeEmployee, Email: "employee@test.tld"}

func sampleForm() entity.BillForm {
	return entity.BillForm{
		Type:       "Transports",
		Name:       "Vol Paris Londres",
		Date:       "2022-02-15",
		Amount:     "348",
		VAT:        "70",
		Pct:        "20",
		Commentary: "séminaire",
		Email:      "someone-else@test.tld",
		Status:     "accepted",
	}
}

func newSubmission(store *mockBillStore) (*BillSubmission, *mockNotifier, *mockNavigator, *mockLogger) {
	notifier := &mockNotifier{}
	navigator := &mockNavigator{}
	logger := &mockLogger{}
	return NewBillSubmission(store, employee, notifier, navigator, logger), notifier, navigator, logger
}

func TestBillSubmission_SelectFile(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		wantValid bool
	}{
		{"jpg", "receipt.jpg", true},
		{"jpeg", "receipt.jpeg", true},
		{"png", "receipt.png", true},
		{"pdf", "receipt.pdf", false},
		{"upper case", "receipt.PNG", true},
		{"no extension", "receipt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, notifier, _, _ := newSubmission(&mockBillStore{})

			valid, err := sub.SelectFile(&entity.ReceiptFile{Name: tt.fileName})
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, valid)

			if tt.wantValid {
				assert.Empty(t, notifier.alerts)
			} else {
				assert.Equal(t, []string{bills.InvalidExtensionMessage}, notifier.alerts)
			}
			assert.Equal(t, tt.fileName, sub.Draft().File.Name)
			assert.Equal(t, domainwf.StateEditing, sub.State())
		})
	}
}

func TestBillSubmission_SubmitInvalidFile(t *testing.T) {
	store := &mockBillStore{}
	sub, notifier, navigator, _ := newSubmission(store)

	require.NoError(t, sub.Fill(sampleForm()))
	_, err := sub.SelectFile(&entity.ReceiptFile{Name: "receipt.gif"})
	require.NoError(t, err)

	err = sub.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidFile)

	assert.Empty(t, store.created, "no create call for an invalid file")
	assert.Empty(t, navigator.routes)
	require.Len(t, notifier.alerts, 2)
	assert.Equal(t, bills.InvalidFormBadFileMessage, notifier.alerts[1])
	assert.Equal(t, domainwf.StateEditing, sub.State(), "the user can fix the file and retry")

	valid, err := sub.SelectFile(&entity.ReceiptFile{Name: "receipt.png"})
	require.NoError(t, err)
	require.True(t, valid)
	require.NoError(t, sub.Submit(context.Background()))
	assert.Len(t, store.created, 1)
}

func TestBillSubmission_SubmitWithoutFile(t *testing.T) {
	store := &mockBillStore{}
	sub, notifier, _, _ := newSubmission(store)

	require.NoError(t, sub.Fill(sampleForm()))
	assert.ErrorIs(t, sub.Submit(context.Background()), ErrInvalidFile)
	assert.Equal(t, []string{bills.InvalidFormBadFileMessage}, notifier.alerts)
	assert.Empty(t, store.created)
}

func TestBillSubmission_SubmitSuccess(t *testing.T) {
	store := &mockBillStore{}
	sub, notifier, navigator, _ := newSubmission(store)

	require.NoError(t, sub.Fill(sampleForm()))
	_, err := sub.SelectFile(&entity.ReceiptFile{Name: "receipt.jpg", Content: []byte("img")})
	require.NoError(t, err)

	require.NoError(t, sub.Submit(context.Background()))

	assert.Empty(t, notifier.alerts)
	assert.Equal(t, []string{port.RouteBills}, navigator.routes)
	assert.Equal(t, domainwf.StateSucceeded, sub.State())
	require.NotNil(t, sub.Result())
	assert.Equal(t, "1234", sub.Result().ID)
	assert.Equal(t, entity.SubmissionDraft{}, sub.Draft(), "draft is discarded after the create call")

	require.Len(t, store.created, 1)
	payload := store.created[0]
	assert.True(t, payload.NoContentType)
	require.NotNil(t, payload.File)
	assert.Equal(t, "receipt.jpg", payload.File.Name)

	email, _ := payload.Get("email")
	assert.Equal(t, employee.Email, email, "email comes from the session")
	status, _ := payload.Get("status")
	assert.Equal(t, "pending", status, "status is always pending")

	assert.ErrorIs(t, sub.Submit(context.Background()), ErrSubmissionClosed)
	assert.ErrorIs(t, sub.Fill(sampleForm()), ErrSubmissionClosed)
}

func TestBillSubmission_SubmitStoreFailure(t *testing.T) {
	storeErr := errors.New("boom")
	store := &mockBillStore{
		createFunc: func(ctx context.Context, payload *entity.BillPayload) (*entity.CreatedBill, error) {
			return nil, storeErr
		},
	}
	sub, notifier, navigator, logger := newSubmission(store)

	require.NoError(t, sub.Fill(sampleForm()))
	_, err := sub.SelectFile(&entity.ReceiptFile{Name: "receipt.png"})
	require.NoError(t, err)

	err = sub.Submit(context.Background())
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, domainwf.StateFailed, sub.State())
	assert.Nil(t, sub.Result())
	assert.Empty(t, navigator.routes)
	assert.Empty(t, notifier.alerts)
	assert.Equal(t, 1, logger.count("error"))
}

func TestBuildBillPayload(t *testing.T) {
	draft := entity.SubmissionDraft{
		Form: sampleForm(),
		File: &entity.ReceiptFile{Name: "receipt.png"},
	}

	payload := BuildBillPayload(draft, employee)

	keys := make([]string, 0, len(payload.Fields))
	for _, f := range payload.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"type", "name", "date", "amount", "vat", "pct", "commentary", "email", "status"}, keys)

	for key, want := range map[string]string{
		"type":       "Transports",
		"name":       "Vol Paris Londres",
		"date":       "2022-02-15",
		"amount":     "348",
		"vat":        "70",
		"pct":        "20",
		"commentary": "séminaire",
		"email":      employee.Email,
		"status":     "pending",
	} {
		got, ok := payload.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	draft.Form.Pct = "  "
	pct, _ := BuildBillPayload(draft, employee).Get("pct")
	assert.Equal(t, "20", pct)
}

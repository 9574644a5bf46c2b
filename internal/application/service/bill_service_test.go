package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
)

var admin = entity.Session{Type: entity.UserTypeAdmin, Email: "admin@test.tld"}

func newBillService(repo *mockBillRepo, files *mockFileStorage) BillService {
	return NewBillService(repo, files, &mockTxManager{}, BillServiceConfig{PublicURL: "http://localhost:8080/"}, &mockLogger{})
}

func TestBillService_Create(t *testing.T) {
	var stored *entity.Bill
	repo := &mockBillRepo{
		createFunc: func(ctx context.Context, bill *entity.Bill) error {
			stored = bill
			return nil
		},
	}
	files := &mockFileStorage{}
	svc := newBillService(repo, files)

	form := sampleForm()
	form.Pct = ""

	created, err := svc.Create(context.Background(), employee, form, &entity.ReceiptFile{Name: "ticket.JPG.png", Content: []byte("png")})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, entity.StatusPending, stored.Status, "status is forced to pending")
	assert.Equal(t, employee.Email, stored.Email, "owner comes from the session")
	assert.Equal(t, 348.0, stored.Amount)
	assert.Equal(t, entity.DefaultPct, stored.Pct)
	assert.Equal(t, "ticket.JPG.png", created.FileName)
	assert.True(t, strings.HasPrefix(created.FileURL, "http://localhost:8080/files/"))
	assert.True(t, strings.HasSuffix(created.FileURL, ".png"))

	require.Len(t, files.files, 1)
	for name, content := range files.files {
		assert.Equal(t, created.ID+".png", name)
		assert.Equal(t, []byte("png"), content)
	}
}

func TestBillService_CreateRejects(t *testing.T) {
	tests := []struct {
		name    string
		form    func() entity.BillForm
		file    *entity.ReceiptFile
		wantErr error
	}{
		{"bad extension", sampleForm, &entity.ReceiptFile{Name: "ticket.pdf"}, ErrInvalidFile},
		{"no file", sampleForm, nil, ErrInvalidFile},
		{"unknown type", func() entity.BillForm { f := sampleForm(); f.Type = "Cadeaux"; return f }, &entity.ReceiptFile{Name: "a.jpg"}, ErrInvalidBill},
		{"bad amount", func() entity.BillForm { f := sampleForm(); f.Amount = "abc"; return f }, &entity.ReceiptFile{Name: "a.jpg"}, ErrInvalidBill},
		{"bad pct", func() entity.BillForm { f := sampleForm(); f.Pct = "x"; return f }, &entity.ReceiptFile{Name: "a.jpg"}, ErrInvalidBill},
		{"no date", func() entity.BillForm { f := sampleForm(); f.Date = " "; return f }, &entity.ReceiptFile{Name: "a.jpg"}, ErrInvalidBill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := &mockFileStorage{}
			svc := newBillService(&mockBillRepo{}, files)

			_, err := svc.Create(context.Background(), employee, tt.form(), tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, files.files)
		})
	}
}

func TestBillService_CreateRemovesReceiptOnFailure(t *testing.T) {
	repo := &mockBillRepo{
		createFunc: func(ctx context.Context, bill *entity.Bill) error {
			return assert.AnError
		},
	}
	files := &mockFileStorage{}
	svc := newBillService(repo, files)

	_, err := svc.Create(context.Background(), employee, sampleForm(), &entity.ReceiptFile{Name: "a.jpg"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, files.files)
}

func TestBillService_List(t *testing.T) {
	var byEmail string
	repo := &mockBillRepo{
		listFunc: func(ctx context.Context) ([]*entity.Bill, error) {
			return fixtureBills(), nil
		},
		listByEmailFunc: func(ctx context.Context, email string) ([]*entity.Bill, error) {
			byEmail = email
			return fixtureBills()[:1], nil
		},
	}
	svc := newBillService(repo, &mockFileStorage{})

	all, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	own, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	assert.Equal(t, employee.Email, byEmail)
}

func TestBillService_Get(t *testing.T) {
	repo := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			for _, b := range fixtureBills() {
				if b.ID == id {
					return b, nil
				}
			}
			return nil, nil
		},
	}
	svc := newBillService(repo, &mockFileStorage{})

	bill, err := svc.Get(context.Background(), admin, "47qAXb6fIm2zOKkLzMro")
	require.NoError(t, err)
	assert.Equal(t, "encore", bill.Name)

	_, err = svc.Get(context.Background(), employee, "47qAXb6fIm2zOKkLzMro")
	assert.ErrorIs(t, err, port.ErrNotFound, "other users' bills are hidden")

	_, err = svc.Get(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestBillService_Update(t *testing.T) {
	comment := "ok pour moi"
	tests := []struct {
		name    string
		session entity.Session
		id      string
		update  BillUpdate
		wantErr error
		want    entity.BillStatus
	}{
		{"accept pending", admin, "47qAXb6fIm2zOKkLzMro", BillUpdate{Status: entity.StatusAccepted, CommentAdmin: &comment}, nil, entity.StatusAccepted},
		{"refuse pending", admin, "47qAXb6fIm2zOKkLzMro", BillUpdate{Status: entity.StatusRefused}, nil, entity.StatusRefused},
		{"comment only", admin, "UIUZtnPQvnbFnB0ozvJh", BillUpdate{Status: entity.StatusAccepted, CommentAdmin: &comment}, nil, entity.StatusAccepted},
		{"employee", employee, "47qAXb6fIm2zOKkLzMro", BillUpdate{Status: entity.StatusAccepted}, port.ErrForbidden, ""},
		{"unknown id", admin, "missing", BillUpdate{Status: entity.StatusAccepted}, port.ErrNotFound, ""},
		{"accepted to refused", admin, "UIUZtnPQvnbFnB0ozvJh", BillUpdate{Status: entity.StatusRefused}, port.ErrConflict, ""},
		{"back to pending", admin, "BeKy5Mo4jkmdfPGYpTxZ", BillUpdate{Status: entity.StatusPending}, port.ErrConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *entity.Bill
			repo := &mockBillRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
					for _, b := range fixtureBills() {
						if b.ID == id {
							return b, nil
						}
					}
					return nil, nil
				},
				updateFunc: func(ctx context.Context, bill *entity.Bill) error {
					saved = bill
					return nil
				},
			}
			svc := newBillService(repo, &mockFileStorage{})

			updated, err := svc.Update(context.Background(), tt.session, tt.id, tt.update)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, saved)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, tt.want, updated.Status)
			if tt.update.CommentAdmin != nil {
				assert.Equal(t, comment, updated.CommentAdmin)
			}
		})
	}
}

func TestBillService_PublishesEvents(t *testing.T) {
	events := dispatcher.NewDispatcher()
	var got []*event.Event
	record := func(ctx context.Context, evt *event.Event) error {
		got = append(got, evt)
		return nil
	}
	for _, typ := range []event.Type{event.TypeBillCreated, event.TypeBillAccepted, event.TypeBillRefused} {
		events.Subscribe(typ, record)
	}
	events.SubscribeNamed(event.TypeBillAccepted, "broken", func(ctx context.Context, evt *event.Event) error {
		return assert.AnError
	})

	repo := &mockBillRepo{
		createFunc: func(ctx context.Context, bill *entity.Bill) error { return nil },
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			for _, b := range fixtureBills() {
				if b.ID == id {
					return b, nil
				}
			}
			return nil, nil
		},
		updateFunc: func(ctx context.Context, bill *entity.Bill) error { return nil },
	}
	logger := &mockLogger{}
	svc := NewBillService(repo, &mockFileStorage{}, &mockTxManager{},
		BillServiceConfig{PublicURL: "http://localhost:8080", Events: events}, logger)

	created, err := svc.Create(context.Background(), employee, sampleForm(), &entity.ReceiptFile{Name: "ticket.png"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event.TypeBillCreated, got[0].Type)
	assert.Equal(t, created.ID, got[0].BillID)
	assert.Equal(t, "Transports", got[0].GetPayloadString("type"))

	_, err = svc.Update(context.Background(), admin, "47qAXb6fIm2zOKkLzMro", BillUpdate{Status: entity.StatusAccepted})
	require.NoError(t, err, "a failing subscriber does not fail the update")
	require.Len(t, got, 2)
	assert.Equal(t, event.TypeBillAccepted, got[1].Type)
	assert.Equal(t, admin.Email, got[1].Email)
	assert.Equal(t, 1, logger.count("warn"))

	comment := "vu"
	_, err = svc.Update(context.Background(), admin, "UIUZtnPQvnbFnB0ozvJh", BillUpdate{Status: entity.StatusAccepted, CommentAdmin: &comment})
	require.NoError(t, err)
	assert.Len(t, got, 2, "a comment-only update is not a review")
}

func TestExportService_WriteWorkbook(t *testing.T) {
	repo := &mockBillRepo{
		listFunc: func(ctx context.Context) ([]*entity.Bill, error) {
			return fixtureBills(), nil
		},
	}
	export := NewExportService(newBillService(repo, &mockFileStorage{}), &mockLogger{})

	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(context.Background(), admin, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"En attente", "Accepté", "Refusé"}, f.GetSheetList())

	rows, err := f.GetRows("Refusé")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2002-02-02", rows[1][0])
	assert.Equal(t, "2001-01-01", rows[2][0])

	assert.ErrorIs(t, export.WriteWorkbook(context.Background(), employee, &buf), port.ErrForbidden)
}

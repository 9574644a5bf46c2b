package service

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
)

type mockBillStore struct {
	listFunc   func(ctx context.Context) ([]*entity.Bill, error)
	createFunc func(ctx context.Context, payload *entity.BillPayload) (*entity.CreatedBill, error)
	updateFunc func(ctx context.Context, bill *entity.Bill) (*entity.Bill, error)

	mu      sync.Mutex
	created []*entity.BillPayload
	updated []*entity.Bill
}

func (m *mockBillStore) List(ctx context.Context) ([]*entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.Bill{}, nil
}

func (m *mockBillStore) Create(ctx context.Context, payload *entity.BillPayload) (*entity.CreatedBill, error) {
	m.mu.Lock()
	m.created = append(m.created, payload)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, payload)
	}
	return &entity.CreatedBill{ID: "1234", FileURL: "https://localhost:3456/images/test.jpg", FileName: "test.jpg"}, nil
}

func (m *mockBillStore) Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error) {
	m.mu.Lock()
	cp := *bill
	m.updated = append(m.updated, &cp)
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(ctx, bill)
	}
	return bill, nil
}

type mockNotifier struct {
	alerts []string
}

func (m *mockNotifier) Alert(message string) {
	m.alerts = append(m.alerts, message)
}

type mockNavigator struct {
	routes []string
}

func (m *mockNavigator) Navigate(route string) {
	m.routes = append(m.routes, route)
}

type mockBillRepo struct {
	createFunc      func(ctx context.Context, bill *entity.Bill) error
	getByIDFunc     func(ctx context.Context, id string) (*entity.Bill, error)
	listFunc        func(ctx context.Context) ([]*entity.Bill, error)
	listByEmailFunc func(ctx context.Context, email string) ([]*entity.Bill, error)
	updateFunc      func(ctx context.Context, bill *entity.Bill) error
}

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bill)
	}
	return nil
}

func (m *mockBillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBillRepo) List(ctx context.Context) ([]*entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.Bill{}, nil
}

func (m *mockBillRepo) ListByEmail(ctx context.Context, email string) ([]*entity.Bill, error) {
	if m.listByEmailFunc != nil {
		return m.listByEmailFunc(ctx, email)
	}
	return []*entity.Bill{}, nil
}

func (m *mockBillRepo) Update(ctx context.Context, bill *entity.Bill) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, bill)
	}
	return nil
}

type mockUserRepo struct {
	users map[string]*entity.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.users == nil {
		m.users = make(map[string]*entity.User)
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.users[email], nil
}

type mockFileStorage struct {
	files map[string][]byte
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type logEntry struct {
	level         string
	msg           string
	keysAndValues []interface{}
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.log("info", msg, keysAndValues)
}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.log("warn", msg, keysAndValues)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.log("error", msg, keysAndValues)
}

func (m *mockLogger) log(level, msg string, keysAndValues []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: level, msg: msg, keysAndValues: keysAndValues})
}

func (m *mockLogger) count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// fixtureBills mirrors the four-bill data set used across the dashboard tests:
// one pending, one accepted and two refused.
func fixtureBills() []*entity.Bill {
	return []*entity.Bill{
		{
			ID:         "47qAXb6fIm2zOKkLzMro",
			Status:     entity.StatusPending,
			Date:       "2004-04-04",
			Amount:     400,
			VAT:        "80",
			Pct:        20,
			Type:       "Hôtel et logement",
			Name:       "encore",
			Commentary: "séminaire billed",
			FileURL:    "https://test.storage.tld/v0/b/billable.jpg",
			FileName:   "preview-facture-free-201801-pdf-1.jpg",
			Email:      "a@a",
		},
		{
			ID:           "BeKy5Mo4jkmdfPGYpTxZ",
			Status:       entity.StatusRefused,
			Date:         "2001-01-01",
			Amount:       100,
			VAT:          "",
			Pct:          20,
			Type:         "Hôtel et logement",
			Name:         "test1",
			Commentary:   "plop",
			CommentAdmin: "ok",
			FileName:     "1592770761.jpeg",
			Email:        "a@a",
		},
		{
			ID:           "UIUZtnPQvnbFnB0ozvJh",
			Status:       entity.StatusAccepted,
			Date:         "2003-03-03",
			Amount:       300,
			VAT:          "60",
			Pct:          20,
			Type:         "Services en ligne",
			Name:         "test3",
			Commentary:   "",
			CommentAdmin: "bon bah d'accord",
			FileName:     "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			Email:        "a@a",
		},
		{
			ID:           "qcCK3SzECmaZAGRrHjaC",
			Status:       entity.StatusRefused,
			Date:         "2002-02-02",
			Amount:       200,
			VAT:          "40",
			Pct:          20,
			Type:         "Restaurants et bars",
			Name:         "test2",
			Commentary:   "test2",
			CommentAdmin: "pas la bonne facture",
			FileName:     "preview-facture-free-201801-pdf-1.jpg",
			Email:        "a@a",
		},
	}
}

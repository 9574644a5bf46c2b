package entity

import "time"

// Bill represents one expense report submitted by an employee
type Bill struct {
	ID           string     `json:"id"`
	Status       BillStatus `json:"status"`
	Date         string     `json:"date"` // free-form, usually YYYY-MM-DD
	Amount       float64    `json:"amount"`
	VAT          string     `json:"vat"`
	Pct          int        `json:"pct"`
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	Commentary   string     `json:"commentary"`
	CommentAdmin string     `json:"commentAdmin"`
	FileURL      string     `json:"fileUrl"`
	FileName     string     `json:"fileName"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// BillForm holds the text values of the new bill form
type BillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
	Email      string
	Status     string
}

// ReceiptFile is the receipt selected in the new bill form
type ReceiptFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// SubmissionDraft is the in-progress new bill: form values plus at most one file
type SubmissionDraft struct {
	Form BillForm
	File *ReceiptFile
}

// FormField is a single key/value of a bill creation payload
type FormField struct {
	Key   string
	Value string
}

// BillPayload is the multipart payload sent to the bill store on creation.
// NoContentType asks the transport to leave Content-Type to the multipart writer.
type BillPayload struct {
	Fields        []FormField
	File          *ReceiptFile
	NoContentType bool
}

// Get returns the value of a payload field
func (p *BillPayload) Get(key string) (string, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// CreatedBill is returned by the bill store after a successful creation
type CreatedBill struct {
	ID       string `json:"id"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

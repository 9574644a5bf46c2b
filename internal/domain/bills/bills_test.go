package bills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
)

func datesOf(bills []*entity.Bill) []string {
	dates := make([]string, 0, len(bills))
	for _, b := range bills {
		dates = append(dates, b.Date)
	}
	return dates
}

func TestSortByDate(t *testing.T) {
	t.Run("orders bills from the latest to the earliest", func(t *testing.T) {
		bills := []*entity.Bill{
			{Date: "2020-12-31"},
			{Date: "2022-01-01"},
			{Date: "2018-04-30"},
			{Date: "2022-04-18"},
			{Date: "2023-10-06"},
		}

		SortByDate(bills)

		assert.Equal(t, []string{"2023-10-06", "2022-04-18", "2022-01-01", "2020-12-31", "2018-04-30"}, datesOf(bills))
	})

	t.Run("adjacent pairs are non-increasing as strings", func(t *testing.T) {
		bills := []*entity.Bill{
			{Date: "2004-04-04"},
			{Date: "2002-02-02-bad-date-format"},
			{Date: "2001-01-01"},
			{Date: "2004-04-04"},
			{Date: "not a date"},
			{Date: ""},
		}

		SortByDate(bills)

		for i := 0; i+1 < len(bills); i++ {
			assert.GreaterOrEqual(t, bills[i].Date, bills[i+1].Date)
		}
	})

	t.Run("compares raw text, not calendar dates", func(t *testing.T) {
		bills := []*entity.Bill{{Date: "2022-9-01"}, {Date: "2022-10-01"}}

		SortByDate(bills)

		assert.Equal(t, []string{"2022-9-01", "2022-10-01"}, datesOf(bills))
	})

	t.Run("nil entries sink to the end", func(t *testing.T) {
		bills := []*entity.Bill{{Date: "2001-01-01"}, nil, {Date: "2003-03-03"}, nil}

		require.NotPanics(t, func() { SortByDate(bills) })

		assert.Equal(t, "2003-03-03", bills[0].Date)
		assert.Equal(t, "2001-01-01", bills[1].Date)
		assert.Nil(t, bills[2])
		assert.Nil(t, bills[3])
	})

	t.Run("nil and empty are no-ops", func(t *testing.T) {
		assert.NotPanics(t, func() { SortByDate(nil) })

		empty := []*entity.Bill{}
		SortByDate(empty)
		assert.Empty(t, empty)
	})
}

func fixtureBills() []*entity.Bill {
	return []*entity.Bill{
		{ID: "47qAXb6fIm2zOKkLzMro", Status: entity.StatusPending, Date: "2004-04-04"},
		{ID: "BeKy5Mo4jkmdfPGYpTxZ", Status: entity.StatusRefused, Date: "2001-01-01"},
		{ID: "UIUZtnPQvnbFnB0ozvJh", Status: entity.StatusAccepted, Date: "2003-03-03"},
		{ID: "qcCK3SzECmaZAGRrHjaC", Status: entity.StatusRefused, Date: "2002-02-02"},
	}
}

func TestFilterByStatus(t *testing.T) {
	bills := fixtureBills()

	tests := []struct {
		status entity.BillStatus
		want   []string
	}{
		{entity.StatusPending, []string{"47qAXb6fIm2zOKkLzMro"}},
		{entity.StatusAccepted, []string{"UIUZtnPQvnbFnB0ozvJh"}},
		{entity.StatusRefused, []string{"BeKy5Mo4jkmdfPGYpTxZ", "qcCK3SzECmaZAGRrHjaC"}},
		{entity.BillStatus("archived"), []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := FilterByStatus(bills, tt.status)
			ids := make([]string, 0, len(got))
			for _, b := range got {
				assert.Equal(t, tt.status, b.Status)
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("nil input returns empty slice", func(t *testing.T) {
		got := FilterByStatus(nil, entity.StatusPending)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus(fixtureBills())

	assert.Equal(t, 1, counts[entity.StatusPending])
	assert.Equal(t, 1, counts[entity.StatusAccepted])
	assert.Equal(t, 2, counts[entity.StatusRefused])
}

func TestIsValidFileName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     bool
	}{
		{"webp", "picture.webp", false},
		{"pdf", "picture.pdf", false},
		{"jpg", "picture.jpg", true},
		{"jpeg", "picture.jpeg", true},
		{"png", "picture.png", true},
		{"no extension", "picture", false},
		{"extension only", ".jpg", true},
		{"empty", "", false},
		{"upper case", "PICTURE.PNG", true},
		{"last dot wins", "archive.png.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidFileName(tt.fileName))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "", Extension(""))
	assert.Equal(t, "", Extension("picture"))
	assert.Equal(t, ".JPG", Extension("picture.JPG"))
	assert.Equal(t, ".gz", Extension("bundle.tar.gz"))
	assert.Equal(t, ".", Extension("picture."))
}

func TestFormatDate(t *testing.T) {
	got, err := FormatDate("2004-04-04")
	require.NoError(t, err)
	assert.Equal(t, "4 Avr. 04", got)

	got, err = FormatDate("2022-12-31")
	require.NoError(t, err)
	assert.Equal(t, "31 Déc. 22", got)

	_, err = FormatDate("2002-02-02-bad-date-format")
	assert.Error(t, err)
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "En attente", FormatStatus(entity.StatusPending))
	assert.Equal(t, "Accepté", FormatStatus(entity.StatusAccepted))
	assert.Equal(t, "Refusé", FormatStatus(entity.StatusRefused))
	assert.Equal(t, "other", FormatStatus(entity.BillStatus("other")))
}

package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

var exportHeader = []interface{}{
	"Date", "Type", "Nom", "Montant TTC", "TVA", "%", "Email", "Commentaire", "Commentaire admin", "Justificatif",
}

// ExportService renders bills as a spreadsheet
type ExportService interface {
	WriteWorkbook(ctx context.Context, session entity.Session, w io.Writer) error
}

type exportServiceImpl struct {
	bills  BillService
	logger Logger
}

// NewExportService creates a new ExportService
func NewExportService(billService BillService, logger Logger) ExportService {
	return &exportServiceImpl{bills: billService, logger: logger}
}

// WriteWorkbook writes an xlsx workbook with one sheet per status, latest bills first
func (s *exportServiceImpl) WriteWorkbook(ctx context.Context, session entity.Session, w io.Writer) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}

	list, err := s.bills.List(ctx, session)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, status := range entity.BillStatuses {
		sheet := bills.FormatStatus(status)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		rows := bills.FilterByStatus(list, status)
		bills.SortByDate(rows)
		if err := fillSheet(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		s.logger.Error("Failed to write workbook", "error", err)
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Bills exported", "count", len(list), "by", session.Email)
	return nil
}

func fillSheet(f *excelize.File, sheet string, rows []*entity.Bill) error {
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, bill := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			bill.Date, bill.Type, bill.Name, bill.Amount, bill.VAT, bill.Pct,
			bill.Email, bill.Commentary, bill.CommentAdmin, bill.FileURL,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

package spreadsheet

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractFlattensRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.xlsx")
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	_ = book.SetCellValue(sheet, "A1", "Scheme")
	_ = book.SetCellValue(sheet, "B1", "Rate")
	_ = book.SetCellValue(sheet, "A2", "PPF")
	_ = book.SetCellValue(sheet, "B2", "7.1%")
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = book.Close()

	text, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Sheet: " + sheet + "\nScheme | Rate\nPPF | 7.1%"
	if text != want {
		t.Fatalf("unexpected text:\n%s\nwant:\n%s", text, want)
	}
}

func TestExtractInvalidWorkbook(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	if err == nil || !strings.Contains(err.Error(), "open workbook") {
		t.Fatalf("expected open error, got %v", err)
	}
}

package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nailbot/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Заявки"

var exportHeaders = []string{
	"№", "Создана", "Услуга", "Цена", "Длительность", "Дата", "Время",
	"Имя", "Телефон", "Username", "Комментарий", "Статус",
}

var statusFills = map[string]string{
	models.StatusPending:   "#FFEB9C",
	models.StatusConfirmed: "#C6EFCE",
	models.StatusCancelled: "#FFC7CE",
}

// exportToExcel создает Excel файл с заявками, созданными за период
func (b *Bot) exportToExcel(ctx context.Context, startDate, endDate time.Time) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := b.bookings.ListBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Заголовок периода
	_ = f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Период: %s - %s",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout)))
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	_ = f.MergeCell(exportSheet, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)

	b.writeExportHeaders(f)
	b.writeExportRows(f, bookings)

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", lastCol, 18)
	_ = f.SetColWidth(exportSheet, "C", "C", 32)
	_ = f.SetColWidth(exportSheet, "K", "K", 30)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func (b *Bot) writeExportHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, style)
	}
}

func (b *Bot) writeExportRows(f *excelize.File, bookings []*models.Booking) {
	styles := make(map[string]int, len(statusFills))
	for status, color := range statusFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}

	for i, booking := range bookings {
		row := i + 3
		values := []interface{}{
			booking.ID,
			booking.CreatedAt.Format("02.01.2006 15:04"),
			booking.Service,
			booking.Price,
			booking.DurationMin,
			booking.DateText,
			booking.TimeText,
			booking.Name,
			booking.Phone,
			booking.Username,
			booking.Comment,
			booking.Status,
		}

		start, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(exportSheet, start, &values)

		if style, ok := styles[booking.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), row)
			_ = f.SetCellStyle(exportSheet, statusCell, statusCell, style)
		}
	}
}

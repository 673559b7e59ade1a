package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/Spok95/school-words/internal/models"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

var usersHeader = []string{"ID", "Логин", "Имя", "Фамилия", "Класс", "Активен", "Гость", "Создан"}

// UsersSheet: лист со всеми пользователями в порядке, в котором их вернуло хранилище.
func UsersSheet(title string, users []models.User) SheetSpec {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.FirstName,
			u.LastName,
			strconv.Itoa(u.Grade),
			yesNo(u.IsActive),
			yesNo(u.IsGuest),
			created,
		})
	}
	return SheetSpec{Title: title, Header: usersHeader, Rows: rows}
}

func NewWorkbook(sheets ...SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			// первый лист переименовываем: удалить единственный лист excelize не даст
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := fillSheet(f, name, s, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func fillSheet(f *excelize.File, name string, s SheetSpec, headerStyle int) error {
	if err := f.SetSheetRow(name, "A1", &s.Header); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	for r, row := range s.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", r+2, err)
		}
	}
	if len(s.Header) == 0 {
		return nil
	}

	// жирная шапка + автофильтр
	end, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
	_ = f.SetCellStyle(name, "A1", end, headerStyle)
	_ = f.AutoFilter(name, "A1:"+end, nil)

	// ширина по длине шапки и первых строк
	for c := range s.Header {
		w := visualLen(s.Header[c]) + 2
		for r := 0; r < min(50, len(s.Rows)); r++ {
			if c < len(s.Rows[r]) {
				if l := visualLen(s.Rows[r][c]); l > w {
					w = l
				}
			}
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(name, col, col, clampWidth(float64(w)*1.1))
	}
	return nil
}

// UsersXLSX собирает выгрузку пользователей и возвращает готовый файл.
func UsersXLSX(users []models.User) ([]byte, error) {
	f, err := NewWorkbook(UsersSheet("Пользователи", users))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func UsersFilename(now time.Time) string {
	return fmt.Sprintf("users_%s.xlsx", now.Format("2006-01-02"))
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

func clampWidth(w float64) float64 {
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemorySheets is an in-process SheetsBackend. The server falls back to it
// when no spreadsheet id is configured.
type MemorySheets struct {
	mu     sync.Mutex
	order  []string
	sheets map[string]*memorySheet
}

type memorySheet struct {
	rows            [][]string
	headerFormatted int
}

func NewMemorySheets() *MemorySheets {
	return &MemorySheets{sheets: make(map[string]*memorySheet)}
}

func (m *MemorySheets) SheetTitles(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...), nil
}

func (m *MemorySheets) AddSheet(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[title]; ok {
		return fmt.Errorf("sheet %q already exists", title)
	}
	m.sheets[title] = &memorySheet{}
	m.order = append(m.order, title)
	return nil
}

func (m *MemorySheets) WriteHeader(ctx context.Context, title string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return err
	}
	header := append([]string(nil), headers...)
	if len(s.rows) == 0 {
		s.rows = append(s.rows, header)
	} else {
		s.rows[0] = header
	}
	return nil
}

func (m *MemorySheets) FormatHeader(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return err
	}
	s.headerFormatted++
	return nil
}

func (m *MemorySheets) AppendRow(ctx context.Context, title string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return err
	}
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

func (m *MemorySheets) ReadRows(ctx context.Context, title string, width int) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(s.rows))
	for i, r := range s.rows {
		if len(r) > width {
			r = r[:width]
		}
		rows[i] = append([]string(nil), r...)
	}
	return rows, nil
}

func (m *MemorySheets) UpdateCell(ctx context.Context, title string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("row %d out of range in %q", row, title)
	}
	for len(s.rows[row]) <= col {
		s.rows[row] = append(s.rows[row], "")
	}
	s.rows[row][col] = value
	return nil
}

func (m *MemorySheets) DeleteRow(ctx context.Context, title string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sheet(title)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("row %d out of range in %q", row, title)
	}
	s.rows = append(s.rows[:row], s.rows[row+1:]...)
	return nil
}

// Rows returns a copy of every row of a sheet, header included.
func (m *MemorySheets) Rows(title string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sheets[title]
	if !ok {
		return nil
	}
	rows := make([][]string, len(s.rows))
	for i, r := range s.rows {
		rows[i] = append([]string(nil), r...)
	}
	return rows
}

// HeaderFormatCount reports how many times the header of a sheet was formatted.
func (m *MemorySheets) HeaderFormatCount(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sheets[title]; ok {
		return s.headerFormatted
	}
	return 0
}

func (m *MemorySheets) sheet(title string) (*memorySheet, error) {
	s, ok := m.sheets[title]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", title)
	}
	return s, nil
}

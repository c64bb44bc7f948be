package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsBackend is the remote tabular service behind the sheet repository.
// Row and column indexes are zero-based; row 0 is the header row.
type SheetsBackend interface {
	SheetTitles(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, title string) error
	WriteHeader(ctx context.Context, title string, headers []string) error
	FormatHeader(ctx context.Context, title string) error
	AppendRow(ctx context.Context, title string, row []string) error
	ReadRows(ctx context.Context, title string, width int) ([][]string, error)
	UpdateCell(ctx context.Context, title string, row, col int, value string) error
	DeleteRow(ctx context.Context, title string, row int) error
}

type googleSheets struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewGoogleSheetsBackend authenticates with a service-account credentials file
// when present and falls back to an API key otherwise.
func NewGoogleSheetsBackend(ctx context.Context, spreadsheetID, credentialsFile, apiKey string) (SheetsBackend, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is empty", ErrAuthentication)
	}

	var opt option.ClientOption
	if data, err := os.ReadFile(credentialsFile); err == nil {
		creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
		if err != nil {
			slog.Error("invalid google credentials", "file", credentialsFile, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		opt = option.WithCredentials(creds)
	} else if apiKey != "" {
		opt = option.WithAPIKey(apiKey)
	} else {
		return nil, fmt.Errorf("%w: no credentials file at %q and no api key", ErrAuthentication, credentialsFile)
	}

	svc, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	return &googleSheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (g *googleSheets) SheetTitles(ctx context.Context) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		titles = append(titles, s.Properties.Title)
		g.sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}
	return titles, nil
}

func (g *googleSheets) AddSheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		g.mu.Lock()
		g.sheetIDs[title] = resp.Replies[0].AddSheet.Properties.SheetId
		g.mu.Unlock()
	}
	return nil
}

func (g *googleSheets) WriteHeader(ctx context.Context, title string, headers []string) error {
	rng := fmt.Sprintf("%s!A1:%s1", title, columnLetter(len(headers)-1))
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(headers)}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *googleSheets) FormatHeader(ctx context.Context, title string) error {
	sheetID, err := g.sheetID(ctx, title)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{Red: 0.2, Green: 0.6, Blue: 0.9},
						TextFormat: &sheets.TextFormat{
							Bold:            true,
							ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}
	_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *googleSheets) AppendRow(ctx context.Context, title string, row []string) error {
	rng := fmt.Sprintf("%s!A:%s", title, columnLetter(len(row)-1))
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *googleSheets) ReadRows(ctx context.Context, title string, width int) ([][]string, error) {
	rng := fmt.Sprintf("%s!A:%s", title, columnLetter(width-1))
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows, nil
}

func (g *googleSheets) UpdateCell(ctx context.Context, title string, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", title, columnLetter(col), row+1)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *googleSheets) DeleteRow(ctx context.Context, title string, row int) error {
	sheetID, err := g.sheetID(ctx, title)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row),
					EndIndex:   int64(row + 1),
				},
			},
		}},
	}
	_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *googleSheets) sheetID(ctx context.Context, title string) (int64, error) {
	g.mu.Lock()
	id, ok := g.sheetIDs[title]
	g.mu.Unlock()
	if ok {
		return id, nil
	}

	if _, err := g.SheetTitles(ctx); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok = g.sheetIDs[title]
	if !ok {
		return 0, errors.New("sheet " + title + " not found")
	}
	return id, nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

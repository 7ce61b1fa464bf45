package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"roomdesk/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsMirror appends submitted carts to a spreadsheet so admins can
// follow submissions without touching the backend.
type SheetsMirror struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsMirror(credentialsFile, spreadsheetID string) (*SheetsMirror, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsMirror{
		service:       srv,
		spreadsheetID: spreadsheetID,
	}, nil
}

// TestConnection пробует прочитать первую ячейку листа
func (m *SheetsMirror) TestConnection(ctx context.Context) error {
	_, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, "Submissions!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// AppendSubmission appends one row per journaled submission.
func (m *SheetsMirror) AppendSubmission(ctx context.Context, rec models.SubmissionRecord) error {
	row := []interface{}{
		rec.CreatedAt.Format(time.RFC3339),
		rec.SessionID,
		rec.CustomerID,
		rec.GroupCount,
		rec.Accepted,
		rec.Failed,
		rec.Outcome,
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := m.service.Spreadsheets.Values.
		Append(m.spreadsheetID, "Submissions!A:G", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append submission row: %w", err)
	}
	return nil
}

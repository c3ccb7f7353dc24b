package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
)

const DefaultSheetName = "Transactions"

// Client mirrors the transaction collection into one tab of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.Mirror = (*Client)(nil)

// New creates a client for spreadsheetID. Callers pass credentials or
// endpoint overrides as client options.
func New(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	opts = append([]goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromEnv creates a client from GOOGLE_SPREADSHEET_ID and GOOGLE_SHEET_NAME,
// authenticating with the service account credentials found by
// CredentialsFromEnv.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := CredentialsFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(ctx, spreadsheetID, os.Getenv("GOOGLE_SHEET_NAME"), creds)
}

// CredentialsFromEnv reads service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func CredentialsFromEnv(ctx context.Context) (goption.ClientOption, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return Credentials(ctx, os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"), file)
}

// Credentials prefers inline JSON over a credentials file.
func Credentials(ctx context.Context, inlineJSON, file string) (goption.ClientOption, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)

	switch {
	case inlineJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials",
			applog.FieldComponent, applog.ComponentSheets,
			"json_length", len(inlineJSON))
		return goption.WithCredentialsJSON([]byte(inlineJSON)), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials file",
			applog.FieldComponent, applog.ComponentSheets,
			"path", file,
			"size", len(data))
		return goption.WithCredentialsJSON(data), nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Mirror clears the tab and writes the header plus one row per record.
// Values are written RAW so descriptions are never evaluated as formulas.
func (c *Client) Mirror(ctx context.Context, records []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range(c.sheetName, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	rows := sheets.Rows(records)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range(c.sheetName, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	ref := a1Range(c.sheetName, fmt.Sprintf("A1:%s%d", lastColumn(), len(rows)))
	slog.InfoContext(ctx, "Mirrored transactions to sheet",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldOperation, applog.OpMirror,
		applog.FieldCount, len(records),
		"range", ref)
	return ref, nil
}

// a1Range quotes the sheet name so names with spaces or quotes stay valid.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

func lastColumn() string {
	return string(rune('A' + len(sheets.Header) - 1))
}

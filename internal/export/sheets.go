// Package export appends ledger transactions to a Google Sheets spreadsheet
// for out-of-band reporting. The exporter is optional; a nil *SheetsExporter
// is a no-op so callers without a spreadsheet configured need no guards.
package export

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const dateLayout = "2006-01-02"

// SheetsExporter writes transaction rows to a single sheet of a spreadsheet.
type SheetsExporter struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewSheetsExporter builds an exporter authenticated with a service account
// credentials file.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName, credentialsFile string, logger *log.Logger) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if credentialsFile == "" {
		return nil, errors.New("missing credentials file")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

// AppendTransaction appends one transaction as a row. Rows carry the date,
// account, description, category, decimal amount and state.
func (e *SheetsExporter) AppendTransaction(ctx context.Context, tr core.Transaction) error {
	if e == nil {
		return nil
	}

	row := []any{
		tr.TransactionDate.Format(dateLayout),
		tr.AccountNameOwner,
		tr.Description,
		tr.Category,
		tr.Amount.String(),
		string(tr.State),
		tr.GUID,
	}
	values := &sheets.ValueRange{Values: [][]any{row}}

	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append transaction row: %w", err)
	}

	e.logger.InfoContext(ctx, "transaction exported",
		log.FieldOperation, log.OpExport,
		log.FieldGUID, tr.GUID,
		log.FieldAccount, tr.AccountNameOwner)
	return nil
}

package sheet

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"staffregister/internal/register"
)

// imageFormula matches the only formula this service writes itself.
var imageFormula = regexp.MustCompile(`^=IMAGE\("https?://[^"()]*"\)$`)

// GoogleSheet appends to and reads from one tab of a Google spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	tab           string
	valueInput    string
	timeout       time.Duration
}

// GoogleOptions configures a GoogleSheet.
type GoogleOptions struct {
	SpreadsheetID   string
	Tab             string
	CredentialsFile string
	Timeout         time.Duration
	// UserEntered makes the API parse cells as if typed, which is required
	// for =IMAGE formulas. Every other cell is then written with a leading
	// apostrophe so it stays literal text.
	UserEntered bool
}

// NewGoogleSheet authenticates with a service account file unless extra
// client options are given.
func NewGoogleSheet(ctx context.Context, o GoogleOptions, opts ...option.ClientOption) (*GoogleSheet, error) {
	if o.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheet: spreadsheet id is empty")
	}
	if o.Tab == "" {
		o.Tab = "Sheet1"
	}
	if len(opts) == 0 {
		if o.CredentialsFile == "" {
			return nil, fmt.Errorf("sheet: credentials file is empty")
		}
		opts = []option.ClientOption{
			option.WithCredentialsFile(o.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheet: create sheets service: %w", err)
	}
	input := "RAW"
	if o.UserEntered {
		input = "USER_ENTERED"
	}
	return &GoogleSheet{
		svc:           svc,
		spreadsheetID: o.SpreadsheetID,
		tab:           o.Tab,
		valueInput:    input,
		timeout:       o.Timeout,
	}, nil
}

// InlineImages reports that cells can render =IMAGE formulas.
func (g *GoogleSheet) InlineImages() bool { return true }

func (g *GoogleSheet) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Rows returns the formatted values of every populated row in the tab.
func (g *GoogleSheet) Rows(ctx context.Context) ([][]string, error) {
	ctx, cancel := g.opContext(ctx)
	defer cancel()

	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", g.tab, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, vals := range resp.Values {
		row := make([]string, len(vals))
		for i, v := range vals {
			if v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// AppendRow inserts a row after the last populated row of the tab.
func (g *GoogleSheet) AppendRow(ctx context.Context, row []string) error {
	ctx, cancel := g.opContext(ctx)
	defer cancel()

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = g.cell(i, v)
	}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.tab, &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption(g.valueInput).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheet: append to %s: %w", g.tab, err)
	}
	return nil
}

// cell returns the value sent for column i. Under USER_ENTERED a leading
// apostrophe keeps Sheets from turning "007" into 7 or evaluating "=..."
// typed into a form field; the apostrophe is not part of the stored value.
func (g *GoogleSheet) cell(i int, v string) string {
	if g.valueInput != "USER_ENTERED" || v == "" {
		return v
	}
	if i == register.SignatureColumn && imageFormula.MatchString(v) {
		return v
	}
	return "'" + v
}

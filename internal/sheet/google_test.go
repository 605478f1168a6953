package sheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"staffregister/internal/register"
)

// fakeSheetsAPI serves the two values endpoints used by GoogleSheet.
type fakeSheetsAPI struct {
	mu         sync.Mutex
	values     [][]interface{}
	sent       [][]interface{}
	inputOpts  []string
	failStatus int
}

// userEntered mimics how Sheets parses a typed cell: a leading apostrophe
// forces text, numbers lose their formatting.
func userEntered(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.HasPrefix(s, "'") {
		return s[1:]
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": f.failStatus, "message": "backend unavailable"}})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-123/values/"):
		json.NewEncoder(w).Encode(map[string]any{"range": "Sheet1!A1:M10", "majorDimension": "ROWS", "values": f.values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		opt := r.URL.Query().Get("valueInputOption")
		for _, row := range body.Values {
			f.sent = append(f.sent, row)
			stored := make([]interface{}, len(row))
			for i, v := range row {
				stored[i] = v
				if opt == "USER_ENTERED" {
					stored[i] = userEntered(v)
				}
			}
			f.values = append(f.values, stored)
		}
		f.inputOpts = append(f.inputOpts, opt)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-123", "updates": map[string]any{"updatedRows": 1}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestGoogleSheet(t *testing.T, api *fakeSheetsAPI, userEntered bool) *GoogleSheet {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	g, err := NewGoogleSheet(context.Background(),
		GoogleOptions{SpreadsheetID: "sheet-123", UserEntered: userEntered},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestGoogleSheet_ReadAndAppend(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]interface{}{{"title", "first_name"}, {"Mr.", "John", nil}}}
	g := newTestGoogleSheet(t, api, false)
	ctx := context.Background()

	rows, err := g.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"title", "first_name"}, {"Mr.", "John", ""}}, rows)

	require.NoError(t, g.AppendRow(ctx, []string{"Dr.", "Ann"}))
	rows, err = g.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr.", "Ann"}, rows[2])
	assert.Equal(t, []string{"RAW"}, api.inputOpts)
}

func formRow(identifier, surname, signature string) []string {
	rec := register.Record{
		Title: "Mr.", FirstName: "John", Surname: surname, Identifier: identifier,
		Designation: "Clerk", Organization: "Treasury", Gender: "Male", DisabilityStatus: "No",
		Date: "2026-10-16", Time: "09:30", SignatureReference: signature,
	}
	return rec.Row()
}

func TestGoogleSheet_UserEnteredForFormulas(t *testing.T) {
	api := &fakeSheetsAPI{}
	g := newTestGoogleSheet(t, api, true)
	sig := `=IMAGE("http://localhost:8000/static/signatures/a.png")`

	require.NoError(t, g.AppendRow(context.Background(), formRow("007", `=HYPERLINK("http://evil.test","x")`, sig)))
	assert.Equal(t, []string{"USER_ENTERED"}, api.inputOpts)
	assert.True(t, g.InlineImages())

	sent := api.sent[0]
	assert.Equal(t, "'007", sent[register.IdentifierColumn])
	assert.Equal(t, `'=HYPERLINK("http://evil.test","x")`, sent[2])
	assert.Equal(t, sig, sent[register.SignatureColumn])
	assert.Equal(t, "", sent[3], "empty cells stay empty")
}

func TestGoogleSheet_UserEnteredOnlyTrustsImageFormula(t *testing.T) {
	api := &fakeSheetsAPI{}
	g := newTestGoogleSheet(t, api, true)

	require.NoError(t, g.AppendRow(context.Background(), formRow("1", "Doe", `=IMAGE("x") & HYPERLINK("y")`)))
	assert.Equal(t, `'=IMAGE("x") & HYPERLINK("y")`, api.sent[0][register.SignatureColumn])
}

func TestGoogleSheet_LeadingZerosSurviveRoundTrip(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]interface{}{toCells(register.Header())}}
	g := newTestGoogleSheet(t, api, true)
	ctx := context.Background()

	require.NoError(t, g.AppendRow(ctx, formRow("007", "Doe", "")))
	rows, err := g.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "007", rows[1][register.IdentifierColumn])
	assert.True(t, register.HasIdentifier(rows, "007"))
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func TestGoogleSheet_APIError(t *testing.T) {
	api := &fakeSheetsAPI{failStatus: http.StatusBadRequest}
	g := newTestGoogleSheet(t, api, false)

	_, err := g.Rows(context.Background())
	assert.ErrorContains(t, err, "backend unavailable")
	assert.Error(t, g.AppendRow(context.Background(), []string{"x"}))
}

func TestNewGoogleSheet_RequiresSpreadsheet(t *testing.T) {
	_, err := NewGoogleSheet(context.Background(), GoogleOptions{})
	assert.Error(t, err)
	_, err = NewGoogleSheet(context.Background(), GoogleOptions{SpreadsheetID: "x"})
	assert.ErrorContains(t, err, "credentials")
}

package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasIdentifier(t *testing.T) {
	header := Header()
	row := func(id string) []string {
		r := validRecord(id).Row()
		return r
	}

	tests := []struct {
		name string
		rows [][]string
		id   string
		want bool
	}{
		{name: "empty store", rows: nil, id: "P1", want: false},
		{name: "header only", rows: [][]string{header}, id: "P1", want: false},
		{name: "match", rows: [][]string{header, row("P0"), row("P1")}, id: "P1", want: true},
		{name: "no match", rows: [][]string{header, row("P0")}, id: "P1", want: false},
		{name: "case sensitive", rows: [][]string{header, row("ab1")}, id: "AB1", want: false},
		{name: "short rows skipped", rows: [][]string{header, {"Mr.", "John"}, {}}, id: "", want: false},
		{name: "header is not data", rows: [][]string{header}, id: "identifier", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasIdentifier(tt.rows, tt.id))
		})
	}
}

func validRecord(id string) Record {
	return Record{
		Title:      "Ms.",
		FirstName:  "Jane",
		Surname:    "Doe",
		Identifier: id,
	}
}

func TestRecordRowOrder(t *testing.T) {
	rec := Record{
		Title: "a", FirstName: "b", Surname: "c", OtherNames: "d", Identifier: "e",
		Designation: "f", Organization: "g", Gender: "h", DisabilityStatus: "i",
		DisabilityCategory: "j", Date: "k", Time: "l", SignatureReference: "m",
	}
	row := rec.Row()
	assert.Len(t, row, len(Columns))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m"}, row)
	assert.Equal(t, "e", row[IdentifierColumn])
	assert.Equal(t, "identifier", Columns[IdentifierColumn])
	assert.Equal(t, rec, RecordFromRow(row))
}

package register

// Columns is the fixed column order of the register. The store's header row
// must match it exactly.
var Columns = [...]string{
	"title",
	"first_name",
	"surname",
	"other_names",
	"identifier",
	"designation",
	"organization",
	"gender",
	"disability_status",
	"disability_category",
	"date",
	"time",
	"signature_reference",
}

// IdentifierColumn is the zero-based position of the identifier in a row.
const IdentifierColumn = 4

// SignatureColumn is the position of the signature reference.
const SignatureColumn = len(Columns) - 1

// Record is one accepted attendance registration.
type Record struct {
	Title              string `json:"title"`
	FirstName          string `json:"first_name"`
	Surname            string `json:"surname"`
	OtherNames         string `json:"other_names"`
	Identifier         string `json:"identifier"`
	Designation        string `json:"designation"`
	Organization       string `json:"organization"`
	Gender             string `json:"gender"`
	DisabilityStatus   string `json:"disability_status"`
	DisabilityCategory string `json:"disability_category"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	SignatureReference string `json:"signature_reference"`
}

// Header returns a fresh copy of the canonical header row.
func Header() []string {
	out := make([]string, len(Columns))
	copy(out, Columns[:])
	return out
}

// Row serializes the record in column order.
func (r Record) Row() []string {
	return []string{
		r.Title,
		r.FirstName,
		r.Surname,
		r.OtherNames,
		r.Identifier,
		r.Designation,
		r.Organization,
		r.Gender,
		r.DisabilityStatus,
		r.DisabilityCategory,
		r.Date,
		r.Time,
		r.SignatureReference,
	}
}

// RecordFromRow maps a stored row back onto a Record. Missing trailing cells
// are left empty.
func RecordFromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		Title:              cell(0),
		FirstName:          cell(1),
		Surname:            cell(2),
		OtherNames:         cell(3),
		Identifier:         cell(IdentifierColumn),
		Designation:        cell(5),
		Organization:       cell(6),
		Gender:             cell(7),
		DisabilityStatus:   cell(8),
		DisabilityCategory: cell(9),
		Date:               cell(10),
		Time:               cell(11),
		SignatureReference: cell(12),
	}
}

func sameHeader(row []string) bool {
	if len(row) != len(Columns) {
		return false
	}
	for i, c := range Columns {
		if row[i] != c {
			return false
		}
	}
	return true
}

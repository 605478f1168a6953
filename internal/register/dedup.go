package register

// HasIdentifier reports whether any data row (every row after the header)
// carries identifier in the identifier column. Short rows never match.
func HasIdentifier(rows [][]string, identifier string) bool {
	if len(rows) < 2 {
		return false
	}
	for _, row := range rows[1:] {
		if len(row) <= IdentifierColumn {
			continue
		}
		if row[IdentifierColumn] == identifier {
			return true
		}
	}
	return false
}

package register

import (
	"context"
	"sync"
)

type fakeTable struct {
	mu        sync.Mutex
	rows      [][]string
	readErr   error
	appendErr error
}

func newFakeTable(rows ...[]string) *fakeTable {
	return &fakeTable{rows: rows}
}

func (f *fakeTable) Rows(ctx context.Context) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]string, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeTable) AppendRow(ctx context.Context, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

func (f *fakeTable) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeTable) last() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[len(f.rows)-1]
}

type fakeArtifacts struct {
	mu     sync.Mutex
	writes map[string][]byte
	ref    func(rel string) string
	err    error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{writes: map[string][]byte{}}
}

func (f *fakeArtifacts) Write(ctx context.Context, rel string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.writes[rel] = data
	if f.ref != nil {
		return f.ref(rel), nil
	}
	return rel, nil
}

func (f *fakeArtifacts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// validSubmission returns a complete form post for identifier.
func validSubmission(identifier string) Submission {
	return Submission{
		Title:            "Mr.",
		FirstName:        "John",
		Surname:          "Kamau",
		OtherNames:       "Mwangi",
		Identifier:       identifier,
		Designation:      "Clerk",
		Organization:     "County Public Service Board",
		Gender:           "Male",
		DisabilityStatus: "No",
		Date:             "2026-10-16",
		Time:             "09:30",
		Signature:        "data:image/png;base64,iVBORw0KGgo=",
		Declaration:      "yes",
	}
}

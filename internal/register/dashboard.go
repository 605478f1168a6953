package register

import (
	"context"
	"log"

	"staffregister/internal/metrics"
)

// Snapshot is every stored row as read, split into header and data rows.
type Snapshot struct {
	Header []string
	Rows   [][]string
}

// Records maps each data row onto the header. Short rows yield empty cells.
func (s Snapshot) Records() []map[string]string {
	out := make([]map[string]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		m := make(map[string]string, len(s.Header))
		for i, col := range s.Header {
			if i < len(row) {
				m[col] = row[i]
			} else {
				m[col] = ""
			}
		}
		out = append(out, m)
	}
	return out
}

// Dashboard is the read-only view over the table.
type Dashboard struct {
	table Table
}

func NewDashboard(t Table) *Dashboard {
	return &Dashboard{table: t}
}

// Snapshot never fails: a read error is logged and an empty snapshot with
// the canonical header is returned.
func (d *Dashboard) Snapshot(ctx context.Context) Snapshot {
	rows, err := d.table.Rows(ctx)
	if err != nil {
		log.Printf("dashboard: read rows failed: %v", err)
		metrics.DashboardReadFailures.Inc()
		return Snapshot{Header: Header(), Rows: [][]string{}}
	}
	if len(rows) == 0 {
		return Snapshot{Header: Header(), Rows: [][]string{}}
	}
	return Snapshot{Header: rows[0], Rows: rows[1:]}
}

package remote

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// Row is one table row as column -> value
type Row = map[string]interface{}

// Rows normalizes an insert/upsert payload (struct, map, or slice of either) to rows
func Rows(payload interface{}) ([]Row, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var rows []Row
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode payload rows: %w", err)
		}
		return rows, nil
	}

	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode payload row: %w", err)
	}
	return []Row{row}, nil
}

// Decode copies src into dest through its JSON form
func Decode(src interface{}, dest interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// DecodeResult writes rows into dest honoring the query cardinality.
// A single-row destination with zero rows yields the no-rows error.
func DecodeResult(q *Query, rows []Row, dest interface{}) error {
	if dest == nil {
		return nil
	}
	if IsSliceDest(dest) {
		if rows == nil {
			rows = []Row{}
		}
		return Decode(rows, dest)
	}
	if len(rows) == 0 {
		return NoRows(q.Table)
	}
	return Decode(rows[0], dest)
}

package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV serializes a CSV file as one line per record with field values
// joined by ", ". The first record is treated as a header and is not
// emitted; row order is preserved.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var lines []string
	header := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("csv parse: %w", err)
		}
		if header {
			header = false
			continue
		}
		lines = append(lines, strings.Join(record, ", "))
	}

	return strings.Join(lines, "\n"), nil
}

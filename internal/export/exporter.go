package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// WriteCSV exports flattened call-log records to a CSV file. Every record is
// expected to carry the full header key set; missing keys come out empty.
func WriteCSV(path string, header []string, records []map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = record[key]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// WriteJSON exports raw call-log rows to a JSON file
func WriteJSON(path string, rows []map[string]interface{}) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

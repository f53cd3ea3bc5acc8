package eventcert

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ReadCSV reads and parses a CSV file, returning the data as a slice of string slices.
// Each inner slice represents a row of the CSV.
func ReadCSV(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	return ReadCSVFrom(file)
}

func ReadCSVFrom(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	return records, nil
}

// Returns the data as a slice of maps.
// The first row is assumed to be the header, and its values are used as keys.
func ParseCSVToMap(records [][]string) ([]map[string]string, error) {
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	headers := make([]string, len(records[0]))
	copy(headers, records[0])
	headerCount := make(map[string]int)

	// Check for duplicate headers and rename them
	for i, header := range headers {
		if count, exists := headerCount[header]; exists {
			headerCount[header]++
			headers[i] = fmt.Sprintf("%s_%d", header, count+1)
		} else {
			headerCount[header] = 0
		}
	}

	result := make([]map[string]string, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		row := make(map[string]string)
		for j := 0; j < len(headers); j++ {
			if j < len(records[i]) {
				row[headers[j]] = records[i][j]
			} else {
				// Handle missing values
				row[headers[j]] = ""
			}
		}
		result = append(result, row)
	}

	return result, nil
}

// ParticipantsFromCSV maps rows with name, email and registration_number columns (any case) to participants.
// Rows without a name are skipped. Every participant is treated as attended at verifiedAt.
func ParticipantsFromCSV(rows []map[string]string, verifiedAt time.Time) []Participant {
	out := make([]Participant, 0, len(rows))
	for i, row := range rows {
		get := func(key string) string {
			for k, v := range row {
				if strings.EqualFold(strings.TrimSpace(k), key) {
					return strings.TrimSpace(v)
				}
			}
			return ""
		}

		name := get("name")
		if name == "" {
			continue
		}
		id := get("id")
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		t := verifiedAt
		out = append(out, Participant{
			ID:                   id,
			Name:                 name,
			Email:                get("email"),
			RegistrationNumber:   get("registration_number"),
			AttendanceVerifiedAt: &t,
		})
	}
	return out
}

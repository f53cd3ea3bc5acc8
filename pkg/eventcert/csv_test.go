package eventcert

import (
	"archive/zip"
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseCSVToMap(t *testing.T) {
	tests := []struct {
		name     string
		records  [][]string
		expected []map[string]string
	}{
		{
			name: "Basic CSV",
			records: [][]string{
				{"header1", "header2"},
				{"value1", "value2"},
				{"value3", "value4"},
			},
			expected: []map[string]string{
				{"header1": "value1", "header2": "value2"},
				{"header1": "value3", "header2": "value4"},
			},
		},
		{
			name:     "Empty CSV",
			records:  [][]string{},
			expected: []map[string]string{},
		},
		{
			name: "Missing Values",
			records: [][]string{
				{"header1", "header2"},
				{"value1"},
				{"value3", "value4"},
			},
			expected: []map[string]string{
				{"header1": "value1", "header2": ""},
				{"header1": "value3", "header2": "value4"},
			},
		},
		{
			name: "Extra Values",
			records: [][]string{
				{"header1", "header2"},
				{"value1", "value2", "extra"},
			},
			expected: []map[string]string{
				{"header1": "value1", "header2": "value2"},
			},
		},
		{
			name: "Duplicate Headers",
			records: [][]string{
				{"name", "name"},
				{"a", "b"},
			},
			expected: []map[string]string{
				{"name": "a", "name_1": "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSVToMap(tt.records)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestParticipantsFromCSV(t *testing.T) {
	records, err := ReadCSVFrom(strings.NewReader("Name,Email,registration_number\nJane Doe,jane@example.com,REG-1\n,nobody@example.com,REG-2\nJohn Roe,john@example.com\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := ParseCSVToMap(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verified := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	got := ParticipantsFromCSV(rows, verified)
	expected := []Participant{
		{ID: "row-1", Name: "Jane Doe", Email: "jane@example.com", RegistrationNumber: "REG-1", AttendanceVerifiedAt: &verified},
		{ID: "row-3", Name: "John Roe", Email: "john@example.com", AttendanceVerifiedAt: &verified},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	entries := []ZipEntry{
		{Name: "jane.pdf", Data: []byte("one")},
		{Name: "jane.pdf", Data: []byte("two")},
		{Name: "john.png", Data: []byte("three")},
	}
	if err := WriteZip(&buf, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}

	got := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(data)
	}

	expected := map[string]string{"jane.pdf": "one", "jane_1.pdf": "two", "john.png": "three"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "No duplicates", input: []string{"a.pdf", "b.pdf"}, expected: []string{"a.pdf", "b.pdf"}},
		{name: "Repeated", input: []string{"a.pdf", "a.pdf", "a.pdf"}, expected: []string{"a.pdf", "a_1.pdf", "a_2.pdf"}},
		{name: "Suffix already taken", input: []string{"a.pdf", "a.pdf", "a_2.pdf"}, expected: []string{"a.pdf", "a_1.pdf", "a_2.pdf"}},
		{name: "Suffix taken first", input: []string{"a_1.pdf", "a.pdf", "a.pdf"}, expected: []string{"a_1.pdf", "a.pdf", "a_2.pdf"}},
		{name: "Later collision", input: []string{"a.pdf", "a.pdf", "a_1.pdf"}, expected: []string{"a.pdf", "a_1.pdf", "a_1_1.pdf"}},
		{name: "No extension", input: []string{"cert", "cert"}, expected: []string{"cert", "cert_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := make(map[string]bool)
			got := make([]string, len(tt.input))
			for i, name := range tt.input {
				got[i] = UniqueName(used, name)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWriteZipNeverRepeatsNames(t *testing.T) {
	var buf bytes.Buffer
	entries := []ZipEntry{
		{Name: "a.pdf", Data: []byte("one")},
		{Name: "a.pdf", Data: []byte("two")},
		{Name: "a_2.pdf", Data: []byte("three")},
		{Name: "a.pdf", Data: []byte("four")},
	}
	if err := WriteZip(&buf, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if len(zr.File) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(zr.File))
	}

	seen := make(map[string]bool)
	for _, f := range zr.File {
		if seen[f.Name] {
			t.Errorf("duplicate entry %s", f.Name)
		}
		seen[f.Name] = true
	}
	for _, name := range []string{"a.pdf", "a_1.pdf", "a_2.pdf", "a_3.pdf"} {
		if !seen[name] {
			t.Errorf("expected entry %s, got %v", name, seen)
		}
	}
}

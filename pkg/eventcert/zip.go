package eventcert

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ZipEntry is one file of an archive built in memory.
type ZipEntry struct {
	Name     string
	Data     []byte
	Modified time.Time
}

// UniqueName returns name, or name with the first free numeric suffix when name is taken.
// The returned name is recorded in used.
func UniqueName(used map[string]bool, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	unique := name
	for n := 1; used[unique]; n++ {
		unique = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	used[unique] = true
	return unique
}

// WriteZip streams entries into w. Duplicate names get a numeric suffix.
func WriteZip(w io.Writer, entries []ZipEntry) error {
	archive := zip.NewWriter(w)

	used := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := UniqueName(used, e.Name)

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: e.Modified,
		}

		writer, err := archive.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := writer.Write(e.Data); err != nil {
			return err
		}
	}

	return archive.Close()
}

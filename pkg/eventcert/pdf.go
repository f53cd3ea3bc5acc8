package eventcert

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func PDFPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}

// Apply a pdf watermark to a PDF file,
// if array of selected pages is provided, will apply to those pages
// otherwise apply to all pages
func ApplyWatermarkToPdf(inFile string, outFile string, selectedPages []string, watermarkFile string, posX, posY float64) error {
	if ext := filepath.Ext(watermarkFile); ext != ".pdf" {
		return fmt.Errorf("unsupported watermark file type: %s", ext)
	}

	// In pdfcpu, y is inverted
	// pos: tl means the anchor is at top-left corner, the same anchor the canvas is authored in
	// As for scale, 1 abs means 100% of the watermark size
	description := fmt.Sprintf("pos: tl, off:%.1f %.1f, scale:1 abs, rotation:0", posX, posY*-1)
	onTop := true

	return api.AddPDFWatermarksFile(inFile, outFile, selectedPages, onTop, watermarkFile, description, nil)
}

// StampPDF keeps the first page of background and draws overlay on top of it, anchored top-left.
// Intermediate files are written beneath tmpDir and removed before returning.
func StampPDF(tmpDir string, background, overlay []byte) ([]byte, error) {
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tmp directory: %w", err)
	}

	dir, err := os.MkdirTemp(tmpDir, "eventcert_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	bgFile := filepath.Join(dir, "background.pdf")
	firstPageFile := filepath.Join(dir, "first_page.pdf")
	overlayFile := filepath.Join(dir, "overlay.pdf")
	outFile := filepath.Join(dir, "out.pdf")

	if err := os.WriteFile(bgFile, background, 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(overlayFile, overlay, 0644); err != nil {
		return nil, err
	}

	if err := api.TrimFile(bgFile, firstPageFile, []string{"1"}, nil); err != nil {
		return nil, fmt.Errorf("failed to read background pdf: %w", err)
	}

	if err := ApplyWatermarkToPdf(firstPageFile, outFile, []string{"1"}, overlayFile, 0, 0); err != nil {
		return nil, fmt.Errorf("failed to stamp fields on background pdf: %w", err)
	}

	out, err := os.ReadFile(outFile)
	if err != nil {
		return nil, err
	}
	return CanonicalPDF(out)
}

/*
CanonicalPDF rewrites a document so equal content gives equal bytes. pdfcpu numbers migrated
objects and writes them while ranging over dict maps, so two stamps of the same input differ.

Objects reachable from the catalog and the info dict are renumbered in the order a walk with
sorted dict keys first meets them, then written in that order behind a classic xref table.
Unreachable objects and the file identifier are dropped.
*/
func CanonicalPDF(data []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if ctx.Root == nil {
		return nil, errors.New("pdf has no catalog")
	}

	renumbered := make(map[int]int)
	var order []types.Object

	var walk func(o types.Object)
	walk = func(o types.Object) {
		switch o := o.(type) {
		case types.IndirectRef:
			nr := o.ObjectNumber.Value()
			if _, ok := renumbered[nr]; ok {
				return
			}
			entry, found := ctx.Find(nr)
			if !found || entry.Free || entry.Object == nil {
				return
			}
			order = append(order, entry.Object)
			renumbered[nr] = len(order)
			walk(entry.Object)
		case types.Dict:
			for _, k := range sortedKeys(o) {
				walk(o[k])
			}
		case types.StreamDict:
			for _, k := range sortedKeys(o.Dict) {
				walk(o.Dict[k])
			}
		case types.Array:
			for _, v := range o {
				walk(v)
			}
		}
	}
	walk(*ctx.Root)
	if ctx.Info != nil {
		walk(*ctx.Info)
	}

	// refs to missing objects become null
	var rewrite func(o types.Object) types.Object
	rewrite = func(o types.Object) types.Object {
		switch o := o.(type) {
		case types.IndirectRef:
			nr, ok := renumbered[o.ObjectNumber.Value()]
			if !ok {
				return nil
			}
			return *types.NewIndirectRef(nr, 0)
		case types.Dict:
			for k, v := range o {
				o[k] = rewrite(v)
			}
		case types.StreamDict:
			for k, v := range o.Dict {
				o.Dict[k] = rewrite(v)
			}
		case types.Array:
			for i, v := range o {
				o[i] = rewrite(v)
			}
		}
		return o
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(order))
	for i, o := range order {
		o = rewrite(o)
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		if sd, ok := o.(types.StreamDict); ok {
			sd.Dict["Length"] = types.Integer(len(sd.Raw))
			buf.WriteString(sd.Dict.PDFString())
			buf.WriteString("\nstream\n")
			buf.Write(sd.Raw)
			buf.WriteString("\nendstream")
		} else if o != nil {
			buf.WriteString(o.PDFString())
		} else {
			buf.WriteString("null")
		}
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(order)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := types.Dict{
		"Size": types.Integer(len(order) + 1),
		"Root": rewrite(*ctx.Root),
	}
	if ctx.Info != nil {
		if info := rewrite(*ctx.Info); info != nil {
			trailer["Info"] = info
		}
	}
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer.PDFString(), xref)

	return buf.Bytes(), nil
}

func sortedKeys(d types.Dict) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var pdfDateEntry = regexp.MustCompile(`/(?:CreationDate|ModDate)\s*\(D:(\d{14})([^)]*)\)`)

// PinPDFMetadata replaces the wall clock dates both pdf writers stamp into the info dict with
// at, expressed in UTC. Replacements keep their length so the xref offsets stay valid.
func PinPDFMetadata(data []byte, at time.Time) []byte {
	out := bytes.Clone(data)

	stamp := at.UTC().Format("20060102150405")
	for _, m := range pdfDateEntry.FindAllSubmatchIndex(out, -1) {
		copy(out[m[2]:m[3]], stamp)
		// zone suffix such as Z, +0700 or -07'00'
		for i := m[4]; i < m[5]; i++ {
			switch c := out[i]; {
			case c >= '0' && c <= '9':
				out[i] = '0'
			case c == '-':
				out[i] = '+'
			}
		}
	}

	return out
}

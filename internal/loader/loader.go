// Package loader turns supported files into ordered text segments with
// provenance metadata, ready for chunking.
package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/AbdulmalikDS/Farqad/internal/chunker"
)

// ErrNoLoader marks an unsupported file extension. Callers treat it as a
// non-fatal skip.
var ErrNoLoader = errors.New("no loader for file extension")

// Load dispatches on the file extension and returns the file's segments.
func Load(path string) ([]chunker.Segment, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return loadText(path)
	case ".md":
		return loadMarkdown(path)
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	case ".pptx":
		return loadPPTX(path)
	case ".xlsx":
		return loadXLSX(path)
	case ".ods":
		return loadODS(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoLoader, filepath.Ext(path))
	}
}

func baseMetadata(path string) map[string]any {
	return map[string]any{"source": filepath.Base(path)}
}

func loadText(path string) ([]chunker.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta := baseMetadata(path)
	meta["page"] = 1
	return []chunker.Segment{{Text: string(data), Metadata: meta}}, nil
}

func loadMarkdown(path string) ([]chunker.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown %s: %w", path, err)
	}

	meta := baseMetadata(path)
	meta["page"] = 1
	return []chunker.Segment{{Text: stripHTMLTags(buf.String()), Metadata: meta}}, nil
}

func loadPDF(path string) ([]chunker.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}

	var segments []chunker.Segment
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		meta := baseMetadata(path)
		meta["page"] = i
		segments = append(segments, chunker.Segment{Text: text, Metadata: meta})
	}
	return segments, nil
}

func loadDOCX(path string) ([]chunker.Segment, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := extractTaggedText(r.Editable().GetContent(), "<w:t", "</w:t>")
	meta := baseMetadata(path)
	meta["page"] = 1
	return []chunker.Segment{{Text: content, Metadata: meta}}, nil
}

func loadPPTX(path string) ([]chunker.Segment, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []chunker.Segment
	slide := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slide++
		meta := baseMetadata(path)
		meta["page"] = slide
		segments = append(segments, chunker.Segment{
			Text:     extractTaggedText(string(data), "<a:t", "</a:t>"),
			Metadata: meta,
		})
	}
	return segments, nil
}

func loadXLSX(path string) ([]chunker.Segment, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var segments []chunker.Segment
	for i, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		meta := baseMetadata(path)
		meta["sheet"] = i + 1
		meta["sheet_name"] = sheet.Name
		segments = append(segments, chunker.Segment{Text: text.String(), Metadata: meta})
	}
	return segments, nil
}

func loadODS(path string) ([]chunker.Segment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []chunker.Segment
	for i, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		meta := baseMetadata(path)
		meta["sheet"] = i + 1
		meta["sheet_name"] = sheetName
		segments = append(segments, chunker.Segment{Text: text.String(), Metadata: meta})
	}
	return segments, nil
}

// extractTaggedText pulls the inner text of every occurrence of an XML tag,
// tolerating attributes on the opening tag.
func extractTaggedText(content, openTag, closeTag string) string {
	var text strings.Builder
	for _, part := range strings.Split(content, openTag)[1:] {
		start := strings.Index(part, ">")
		if start < 0 {
			continue
		}
		end := strings.Index(part, closeTag)
		if end < start {
			continue
		}
		text.WriteString(part[start+1 : end])
		text.WriteString(" ")
	}
	return strings.TrimSpace(text.String())
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

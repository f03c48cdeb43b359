// Package extract turns files on disk into plain-text documents.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/reader"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/logger"
)

// DetectType maps a file name to its document type by extension. Unknown
// extensions are read as plain text.
func DetectType(path string) domain.FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.FileTypePDF
	case ".docx":
		return domain.FileTypeDOCX
	case ".md", ".markdown":
		return domain.FileTypeMD
	case ".html", ".htm":
		return domain.FileTypeHTML
	default:
		return domain.FileTypeTXT
	}
}

// Extractor reads documents from the local filesystem.
type Extractor struct {
	now   func() time.Time
	newID func() string
}

// New creates an extractor that stamps documents with random ids.
func New() *Extractor {
	return &Extractor{now: time.Now, newID: uuid.NewString}
}

// Extract reads path into a document. A file that exists but cannot be
// converted yields a document with empty text and no error.
func (e *Extractor) Extract(ctx context.Context, path string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
	}
	if info.IsDir() {
		return domain.Document{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	doc := domain.Document{
		ID:      e.newID(),
		Name:    filepath.Base(path),
		Type:    DetectType(path),
		Size:    info.Size(),
		AddedAt: e.now(),
	}
	text, err := Text(path, doc.Type)
	if err != nil {
		logger.Warn("could not extract text from %s: %v", doc.Name, err)
		return doc, nil
	}
	doc.Text = text
	logger.Debug("extracted %d characters from %s (%s)", len(text), doc.Name, doc.Type)
	return doc, nil
}

// Text returns the plain text of path read as typ.
func Text(path string, typ domain.FileType) (string, error) {
	var (
		text string
		err  error
	)
	switch typ {
	case domain.FileTypePDF:
		text, err = pdfText(path)
	case domain.FileTypeDOCX:
		text, err = docxText(path)
	case domain.FileTypeHTML:
		text, err = htmlText(path)
	default:
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return strings.ToValidUTF8(text, "�"), nil
}

func pdfText(path string) (text string, err error) {
	defer recoverParser(&err)
	r, err := reader.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	text, warnings, err := tabula.FromReader(r).Text()
	if err != nil {
		return "", err
	}
	if len(warnings) > 0 {
		logger.Debug("%s: %d extraction warnings", filepath.Base(path), len(warnings))
	}
	return text, nil
}

func docxText(path string) (text string, err error) {
	defer recoverParser(&err)
	r, err := docx.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Text()
}

// recoverParser turns a panic inside a malformed-file parser into an error.
func recoverParser(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("parser panic: %v", r)
	}
}

var trailingSpace = regexp.MustCompile(`[ \t]+\n`)

// htmlText keeps headings, paragraphs and list items of the main content.
// Headings are written with a leading "# " so clause detection sees them.
func htmlText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	var parts []string
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" {
			return
		}
		if goquery.NodeName(s)[0] == 'h' {
			t = "# " + t
		}
		parts = append(parts, t)
	})
	text := strings.ReplaceAll(strings.Join(parts, "\n"), "\r", "")
	return trailingSpace.ReplaceAllString(text, "\n"), nil
}

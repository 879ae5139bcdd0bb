package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"fingpt-backend/internal/models"
)

// Placeholders substituted into the system prompt when the corresponding
// context source is absent. Missing files are a valid state, never an error.
const (
	NoContextPlaceholder = "No additional context provided."
	NoScorePlaceholder   = "No score data available."
)

// ContextStore persists uploaded reference files and reads them back at
// prompt-composition time. Files are re-read per request; uploads replace
// same-named files (last write wins).
type ContextStore struct {
	dir string
}

func New(dir string) *ContextStore {
	return &ContextStore{dir: dir}
}

// Save persists an upload verbatim under the store directory. The name is
// flattened to its base to keep uploads inside the store.
func (s *ContextStore) Save(name string, r io.Reader) (models.ContextFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return models.ContextFile{}, err
	}

	base := filepath.Base(name)
	kind, ok := fileKind(base)
	if !ok {
		return models.ContextFile{}, fmt.Errorf("unsupported context file type: %s", filepath.Ext(base))
	}

	path := filepath.Join(s.dir, base)
	f, err := os.Create(path)
	if err != nil {
		return models.ContextFile{}, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return models.ContextFile{}, err
	}

	return models.ContextFile{Name: base, Size: n, Type: kind}, nil
}

// List describes the files currently held by the store.
func (s *ContextStore) List() ([]models.ContextFile, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []models.ContextFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind, ok := fileKind(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, models.ContextFile{Name: e.Name(), Size: info.Size(), Type: kind})
	}
	return files, nil
}

// TuneText concatenates the free-form context: .txt content verbatim plus
// text extracted from .pdf uploads. Returns "" when no source is present.
func (s *ContextStore) TuneText() string {
	var parts []string
	for _, f := range s.list() {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".txt":
			b, err := os.ReadFile(filepath.Join(s.dir, f))
			if err != nil {
				continue
			}
			if t := normalizeExtractedText(string(b)); t != "" {
				parts = append(parts, t)
			}
		case ".pdf":
			t, err := extractPDF(filepath.Join(s.dir, f))
			if err != nil {
				continue
			}
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ScoreTable renders the CSV content as pipe-delimited rows. Returns "" when
// no CSV file is present or none parses.
func (s *ContextStore) ScoreTable() string {
	var rows []string
	for _, f := range s.list() {
		if strings.ToLower(filepath.Ext(f)) != ".csv" {
			continue
		}
		file, err := os.Open(filepath.Join(s.dir, f))
		if err != nil {
			continue
		}
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		file.Close()
		if err != nil {
			continue
		}
		for _, rec := range records {
			rows = append(rows, strings.Join(rec, " | "))
		}
	}
	return strings.Join(rows, "\n")
}

func (s *ContextStore) list() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func fileKind(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv", true
	case ".txt":
		return "text", true
	case ".pdf":
		return "pdf", true
	}
	return "", false
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return text, nil
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

func normalizeExtractedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

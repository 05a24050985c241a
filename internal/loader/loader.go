package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ayurdiag/internal/domain"
)

var (
	// ErrUnsupported is returned for files whose extension is not enabled.
	ErrUnsupported = errors.New("unsupported file format")
	// ErrTooLarge is returned for files above the configured size cap.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Config controls which files the loader accepts.
type Config struct {
	SupportedFormats []string
	MaxFileSizeMB    int
}

// Loader reads knowledge-base files into documents.
type Loader struct {
	formats  map[string]struct{}
	maxBytes int64
	logger   *zap.Logger
}

// New creates a loader. Empty formats default to pdf, docx and txt.
func New(cfg Config, logger *zap.Logger) *Loader {
	if len(cfg.SupportedFormats) == 0 {
		cfg.SupportedFormats = []string{"pdf", "docx", "txt"}
	}
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	formats := make(map[string]struct{}, len(cfg.SupportedFormats))
	for _, f := range cfg.SupportedFormats {
		formats[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))] = struct{}{}
	}
	return &Loader{formats: formats, maxBytes: int64(cfg.MaxFileSizeMB) << 20, logger: logger}
}

// Supports reports whether path has an enabled extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.formats[fileType(path)]
	return ok
}

// Load reads a single file.
func (l *Loader) Load(path string) (domain.Document, error) {
	typ := fileType(path)
	if !l.Supports(path) {
		return domain.Document{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, err
	}
	if info.Size() > l.maxBytes {
		return domain.Document{}, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}

	name := filepath.Base(path)
	meta := map[string]string{"title": strings.TrimSuffix(name, filepath.Ext(name))}
	var content string
	switch typ {
	case "txt", "md":
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Document{}, err
		}
		content = string(data)
	case "pdf":
		text, pages, err := readPDF(path)
		if err != nil {
			return domain.Document{}, fmt.Errorf("read pdf %s: %w", path, err)
		}
		content = text
		meta["num_pages"] = fmt.Sprint(pages)
	case "docx":
		text, paras, err := readDOCX(path)
		if err != nil {
			return domain.Document{}, fmt.Errorf("read docx %s: %w", path, err)
		}
		content = text
		meta["num_paragraphs"] = fmt.Sprint(paras)
	default:
		return domain.Document{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	doc := domain.Document{
		ID:       hashString(path),
		Path:     path,
		Name:     name,
		Type:     typ,
		Content:  strings.TrimSpace(content),
		Metadata: meta,
	}
	l.logger.Debug("loaded document", zap.String("path", path), zap.String("type", typ), zap.Int("chars", len(doc.Content)))
	return doc, nil
}

// LoadDir walks dir recursively and loads every supported file. Files that
// fail to load are logged and skipped.
func (l *Loader) LoadDir(dir string) ([]domain.Document, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && l.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return l.loadFiles(files), nil
}

// LoadPaths accepts files, directories and glob patterns.
func (l *Loader) LoadPaths(paths []string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				sub, err := l.LoadDir(m)
				if err != nil {
					return nil, err
				}
				docs = append(docs, sub...)
				continue
			}
			docs = append(docs, l.loadFiles([]string{m})...)
		}
	}
	return docs, nil
}

func (l *Loader) loadFiles(files []string) []domain.Document {
	docs := make([]domain.Document, 0, len(files))
	for _, f := range files {
		doc, err := l.Load(f)
		if err != nil {
			l.logger.Warn("skipping document", zap.String("path", f), zap.Error(err))
			continue
		}
		if doc.Content == "" {
			l.logger.Warn("skipping empty document", zap.String("path", f))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// Stats summarises a loaded document set.
type Stats struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChars     int            `json:"total_content_length"`
	AverageChars   float64        `json:"average_content_length"`
	FileTypes      map[string]int `json:"file_types"`
}

// Statistics computes Stats for docs.
func Statistics(docs []domain.Document) Stats {
	s := Stats{TotalDocuments: len(docs), FileTypes: map[string]int{}}
	for _, d := range docs {
		s.TotalChars += len(d.Content)
		s.FileTypes[d.Type]++
	}
	if len(docs) > 0 {
		s.AverageChars = float64(s.TotalChars) / float64(len(docs))
	}
	return s
}

func fileType(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}

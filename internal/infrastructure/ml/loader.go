package ml

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/nlgkit/subjectivity/internal/domain/port"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Decode reads a model document, gzip-compressed or plain JSON, and builds
// the Pipeline it describes.
func Decode(r io.Reader) (*Pipeline, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrIncompatibleModel, err)
		}
		defer gz.Close()
		src = gz
	}

	var doc Document
	dec := json.NewDecoder(src)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrIncompatibleModel, err)
	}
	// The document must be the only value in the file.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after model document")
		}
		return nil, fmt.Errorf("%w: decode: %v", ErrIncompatibleModel, err)
	}
	return doc.Build()
}

// LoadFile opens and decodes the model file at path.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Encode writes doc as JSON, gzip-compressed when compress is true.
func Encode(w io.Writer, doc Document, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(doc)
	}
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		gz.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return gz.Close()
}

// Loader implements port.ClassifierLoader for model files on disk.
type Loader struct {
	logger *slog.Logger
}

var _ port.ClassifierLoader = (*Loader)(nil)

// NewLoader creates a file-backed classifier loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load decodes the model at path.
func (l *Loader) Load(ctx context.Context, path string) (port.Classifier, error) {
	start := time.Now()

	p, err := LoadFile(path)
	if err != nil {
		l.logger.ErrorContext(ctx, "classifier load failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	info := p.Info()
	l.logger.InfoContext(ctx, "classifier loaded",
		slog.String("path", path),
		slog.String("name", info.Name),
		slog.String("estimator", info.Estimator),
		slog.Int("vocabulary_size", info.VocabularySize),
		slog.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

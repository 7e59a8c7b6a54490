// Package cv извлекает текст резюме (PDF) и кэширует его на время запуска.
package cv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Extractor returns best-effort plain text for a document.
type Extractor interface {
	ExtractText(path string) (string, error)
}

type PDFExtractor struct{}

func (PDFExtractor) ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("открытие pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("извлечение текста: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("чтение текста: %w", err)
	}
	return buf.String(), nil
}

// Cache lazily loads the CV text once; later calls return the same string
// without touching the file again. Read errors are logged and cached as "".
type Cache struct {
	path      string
	extractor Extractor
	log       *zap.Logger

	once sync.Once
	text string
}

func NewCache(path string, extractor Extractor, log *zap.Logger) *Cache {
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{path: path, extractor: extractor, log: log}
}

// Text возвращает закэшированный текст резюме.
func (c *Cache) Text(ctx context.Context) string {
	c.once.Do(func() {
		if c.path == "" {
			return
		}
		if _, err := os.Stat(c.path); err != nil {
			c.log.Warn("CV не найден", zap.String("path", c.path), zap.Error(err))
			return
		}
		text, err := c.extractor.ExtractText(c.path)
		if err != nil {
			c.log.Warn("не удалось прочитать CV", zap.String("path", c.path), zap.Error(err))
			return
		}
		c.text = strings.TrimSpace(text)
		c.log.Info("CV загружен", zap.Int("chars", len(c.text)))
	})
	return c.text
}

// Lower возвращает текст резюме в нижнем регистре.
func (c *Cache) Lower(ctx context.Context) string {
	return strings.ToLower(c.Text(ctx))
}

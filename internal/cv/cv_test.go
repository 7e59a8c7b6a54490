package cv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	calls int
	text  string
	err   error
}

func (e *countingExtractor) ExtractText(string) (string, error) {
	e.calls++
	return e.text, e.err
}

func tempDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	return path
}

func TestCache_ReadsOnce(t *testing.T) {
	ex := &countingExtractor{text: "  Java, Spring Boot, PostgreSQL  "}
	c := NewCache(tempDoc(t), ex, nil)
	ctx := context.Background()

	first := c.Text(ctx)
	second := c.Text(ctx)

	assert.Equal(t, "Java, Spring Boot, PostgreSQL", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, "java, spring boot, postgresql", c.Lower(ctx))
}

func TestCache_ErrorCachedAsEmpty(t *testing.T) {
	ex := &countingExtractor{err: errors.New("broken xref")}
	c := NewCache(tempDoc(t), ex, nil)

	assert.Empty(t, c.Text(context.Background()))
	assert.Empty(t, c.Text(context.Background()))
	assert.Equal(t, 1, ex.calls)
}

func TestCache_MissingFileOrPath(t *testing.T) {
	ex := &countingExtractor{text: "unused"}

	assert.Empty(t, NewCache("", ex, nil).Text(context.Background()))
	assert.Empty(t, NewCache(filepath.Join(t.TempDir(), "nope.pdf"), ex, nil).Text(context.Background()))
	assert.Zero(t, ex.calls)
}

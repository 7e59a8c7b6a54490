package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyApply/internal/config"
)

type env struct {
	dir       string
	overrides string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	for _, k := range []string{"CONFIG_OVERRIDES_FILE", "DB_HOST", "RESUME_PATH", "CV_PATH", "EASY_APPLY_EMAIL", "LOG_FILE", "FORM_ANSWERS_FILE"} {
		t.Setenv(k, "")
	}
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	return env{dir: dir, overrides: filepath.Join(dir, "overrides.json")}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetup_WritesOverrides(t *testing.T) {
	e := newEnv(t)
	cv := filepath.Join(e.dir, "Jane CV.pdf")
	require.NoError(t, os.WriteFile(cv, []byte("%PDF-1.4"), 0o600))

	out, err := execute(t, "--overrides", e.overrides, "setup",
		"--cv", cv,
		"--set", "easy_apply_email=jane@example.com",
		"--set", "GEMINI_API_KEY=AIzaSecret")
	require.NoError(t, err)
	assert.Contains(t, out, "сохранено")

	ov, ok, err := config.ReadOverrides(e.overrides)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", ov["EASY_APPLY_EMAIL"])
	assert.Equal(t, filepath.Join(e.dir, "uploads", "resume.pdf"), ov["RESUME_PATH"])
	assert.Equal(t, ov["RESUME_PATH"], ov["CV_PATH"])
	assert.FileExists(t, ov["RESUME_PATH"])

	// второй вызов дописывает, а не затирает
	_, err = execute(t, "--overrides", e.overrides, "setup", "--set", "JOB_SEARCH_KEYWORDS=golang")
	require.NoError(t, err)
	ov, _, err = config.ReadOverrides(e.overrides)
	require.NoError(t, err)
	assert.Equal(t, "golang", ov["JOB_SEARCH_KEYWORDS"])
	assert.Equal(t, "jane@example.com", ov["EASY_APPLY_EMAIL"])

	out, err = execute(t, "--overrides", e.overrides, "setup", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "AIza…")
	assert.NotContains(t, out, "AIzaSecret")
}

func TestSetup_Rejects(t *testing.T) {
	e := newEnv(t)

	_, err := execute(t, "--overrides", e.overrides, "setup")
	assert.Error(t, err)

	_, err = execute(t, "--overrides", e.overrides, "setup", "--set", "DB_PASS=x")
	assert.ErrorContains(t, err, "DB_PASS")

	doc := filepath.Join(e.dir, "cv.docx")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o600))
	_, err = execute(t, "--overrides", e.overrides, "setup", "--cv", doc)
	assert.ErrorContains(t, err, "PDF")

	assert.NoFileExists(t, e.overrides)
}

func TestRun_RequiresSetup(t *testing.T) {
	e := newEnv(t)

	_, err := execute(t, "--overrides", e.overrides, "run")
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestRun_FormAnswers(t *testing.T) {
	e := newEnv(t)

	_, err := execute(t, "--overrides", e.overrides, "run", "--answers", filepath.Join(e.dir, "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "файл ответов")
	assert.Empty(t, os.Getenv("FORM_ANSWERS_FILE"))

	answers := filepath.Join(e.dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{"salary":"90000"}`), 0o600))
	_, err = execute(t, "--overrides", e.overrides, "run", "--answers", answers)
	assert.ErrorIs(t, err, errNotConfigured)
	assert.Equal(t, answers, os.Getenv("FORM_ANSWERS_FILE"))
}

func TestHistory_WithoutDatabase(t *testing.T) {
	e := newEnv(t)

	out, err := execute(t, "--overrides", e.overrides, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "журнал отключён")
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SetupKeys перечисляет ключи, которые принимает форма настройки.
var SetupKeys = []string{
	"EASY_APPLY_FIRST_NAME", "EASY_APPLY_LAST_NAME", "EASY_APPLY_EMAIL",
	"JOB_SEARCH_COUNTRY", "JOB_SEARCH_KEYWORDS", "DEFAULT_LOCATION_CITY",
	"WORK_AUTHORIZATION_ANSWER", "WORK_NEED_SPONSORSHIP_ANSWER", "WORK_AUTHORIZATION_COUNTRY",
	"EASY_APPLY_YEARS_DEFAULT", "EASY_APPLY_CURRENT_COMPANY", "EASY_APPLY_CURRENT_TITLE",
	"EASY_APPLY_GENDER", "EASY_APPLY_CERTIFICATIONS", "EASY_APPLY_HYBRID_ANSWER",
	"MIN_DELAY_SEC", "MAX_DELAY_SEC", "GEMINI_API_KEY", "GROQ_API_KEY",
}

// SecretKeys are masked whenever overrides are echoed back to a client.
var SecretKeys = map[string]bool{
	"GEMINI_API_KEY": true,
	"GROQ_API_KEY":   true,
}

// Overrides is the flat key/value record persisted by the setup endpoint.
type Overrides map[string]string

// ReadOverrides читает файл переопределений. Отсутствие файла не ошибка.
func ReadOverrides(path string) (Overrides, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("чтение %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("разбор %s: %w", path, err)
	}

	out := make(Overrides, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, true, nil
}

// ReadFormAnswers reads the prepared answer map (question or normalized key -> value).
// The file has the same flat JSON shape as the overrides file; it must exist.
func ReadFormAnswers(path string) (map[string]string, error) {
	m, ok, err := ReadOverrides(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("файл ответов %s не найден", path)
	}
	return m, nil
}

// ApplyOverrides exports the overrides file into the process environment and
// reloads the configuration. It reports whether the file existed.
func ApplyOverrides(path string) (*Cfg, bool, error) {
	ov, ok, err := ReadOverrides(path)
	if err != nil {
		return nil, false, err
	}
	for k, v := range ov {
		if err := os.Setenv(k, v); err != nil {
			return nil, ok, fmt.Errorf("setenv %s: %w", k, err)
		}
	}
	cfg, err := Load()
	if err != nil {
		return nil, ok, err
	}
	return cfg, ok, nil
}

// SaveOverrides пишет переопределения атомарно (tmp + rename).
func SaveOverrides(path string, ov Overrides) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создание каталога: %w", err)
	}
	data, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// Masked returns a copy with secret values cut to their first four characters.
func (o Overrides) Masked() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		if SecretKeys[k] && v != "" {
			out[k] = MaskSecret(v)
			continue
		}
		out[k] = v
	}
	return out
}

func MaskSecret(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return "…"
	}
	return string(r[:4]) + "…"
}

// Configured: есть файл переопределений, либо в окружении заданы резюме и email.
func Configured(overridesPath string) bool {
	if _, err := os.Stat(overridesPath); err == nil {
		return true
	}
	hasDoc := strings.TrimSpace(os.Getenv("RESUME_PATH")) != "" || strings.TrimSpace(os.Getenv("CV_PATH")) != ""
	return hasDoc && strings.TrimSpace(os.Getenv("EASY_APPLY_EMAIL")) != ""
}

package jobs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	noticeTitle   = "Easy Apply - Daily limit"
	noticeMessage = "LinkedIn daily limit reached. Save this job and try again tomorrow."
	noticeFile    = "linkedin_daily_limit.html"
)

var noticeTmpl = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    * { box-sizing: border-box; }
    body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f3f6f8; padding: 1rem; }
    .card { max-width: 420px; width: 100%; background: #fff; border-radius: 12px;
      box-shadow: 0 4px 24px rgba(0,0,0,.08); padding: 2rem; text-align: center; }
    h1 { margin: 0 0 1rem; font-size: 1.25rem; color: #0a66c2; }
    p { margin: 0; color: #333; line-height: 1.5; font-size: 1rem; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
  </div>
</body>
</html>
`))

// WriteNotice renders the daily-limit notice into dir (the system temp dir when
// empty) and returns the file path.
func WriteNotice(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := noticeTmpl.Execute(&buf, struct{ Title, Message string }{noticeTitle, noticeMessage}); err != nil {
		return "", err
	}

	path := filepath.Join(dir, noticeFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("запись уведомления: %w", err)
	}
	return path, nil
}

// NotifyDailyLimit пишет уведомление о лимите и открывает его в новой вкладке.
// Ошибки только логируются: остановка прогона от них не зависит.
func (b *Board) NotifyDailyLimit(ctx context.Context) {
	path, err := WriteNotice(b.noticeDir)
	if err != nil {
		b.log.Warn("не удалось записать уведомление", zap.String("message", noticeMessage), zap.Error(err))
		return
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if err := b.page.OpenTab(ctx, u.String()); err != nil {
		b.log.Warn("не удалось открыть уведомление", zap.String("message", noticeMessage), zap.Error(err))
		return
	}
	b.log.Info("уведомление о дневном лимите открыто", zap.String("path", abs))
}

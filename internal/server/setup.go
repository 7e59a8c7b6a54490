package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"easyApply/internal/config"
)

// setupDefaults - значения полей формы, если их оставили пустыми.
var setupDefaults = map[string]string{
	"WORK_AUTHORIZATION_ANSWER":    "No",
	"WORK_NEED_SPONSORSHIP_ANSWER": "Yes",
	"WORK_AUTHORIZATION_COUNTRY":   "Canada",
	"EASY_APPLY_YEARS_DEFAULT":     "3",
	"EASY_APPLY_HYBRID_ANSWER":     "Yes",
	"MIN_DELAY_SEC":                "10",
	"MAX_DELAY_SEC":                "30",
}

const resumeFile = "resume.pdf"

func (s *Server) getSetup(c *gin.Context) {
	path := s.cfg.Paths.OverridesFile
	ov, ok, err := config.ReadOverrides(path)
	if err != nil {
		s.log.Warn("файл переопределений не читается", zap.String("path", path), zap.Error(err))
	}
	if ok && err == nil {
		c.JSON(http.StatusOK, gin.H{"configured": true, "config": ov.Masked()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": config.Configured(path), "config": gin.H{}})
}

// postSetup stores the uploaded PDF as both resume and CV and writes the
// overrides file. API keys left blank keep their previously saved values.
func (s *Server) postSetup(c *gin.Context) {
	file, err := c.FormFile("cv_file")
	if err != nil || !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a PDF file (CV/Resume)."})
		return
	}

	dir := s.cfg.Paths.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("upload dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}
	dst, err := filepath.Abs(filepath.Join(dir, resumeFile))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.log.Error("save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}

	prev, _, err := config.ReadOverrides(s.cfg.Paths.OverridesFile)
	if err != nil {
		s.log.Warn("старые переопределения отброшены", zap.Error(err))
	}

	payload := config.Overrides{}
	for _, key := range config.SetupKeys {
		v := strings.TrimSpace(c.PostForm(strings.ToLower(key)))
		if config.SecretKeys[key] {
			if v == "" {
				v = prev[key]
			}
			if v != "" {
				payload[key] = v
			}
			continue
		}
		if v == "" {
			v = setupDefaults[key]
		}
		payload[key] = v
	}
	payload["RESUME_PATH"] = dst
	payload["CV_PATH"] = dst

	if err := config.SaveOverrides(s.cfg.Paths.OverridesFile, payload); err != nil {
		s.log.Error("save overrides", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}
	s.log.Info("настройка сохранена", zap.String("resume", dst))
	c.JSON(http.StatusOK, gin.H{"status": "saved", "configured": true})
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"easyApply/internal/cli/ui"
	"easyApply/internal/config"
)

func newSetupCmd() *cobra.Command {
	var (
		cvPath string
		values map[string]string
		show   bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Сохранить профиль и резюме в файл переопределений",
		Example: "  easyApply setup --cv ~/cv.pdf --set EASY_APPLY_EMAIL=me@example.com --set JOB_SEARCH_KEYWORDS=golang\n" +
			"  easyApply setup --show",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path := cfg.Paths.OverridesFile
			out := cmd.OutOrStdout()

			ov, _, err := config.ReadOverrides(path)
			if err != nil {
				return err
			}
			if ov == nil {
				ov = config.Overrides{}
			}

			if show {
				printOverrides(out, ov.Masked())
				return nil
			}
			if len(values) == 0 && cvPath == "" {
				return errors.New("нечего сохранять: укажите --cv и/или --set KEY=VALUE")
			}

			for k, v := range values {
				key := strings.ToUpper(strings.TrimSpace(k))
				if !slices.Contains(config.SetupKeys, key) {
					return fmt.Errorf("неизвестный ключ %s", key)
				}
				ov[key] = strings.TrimSpace(v)
			}

			if cvPath != "" {
				dst, err := storeCV(cvPath, cfg.Paths.UploadDir)
				if err != nil {
					return err
				}
				ov["RESUME_PATH"] = dst
				ov["CV_PATH"] = dst
			}

			if err := config.SaveOverrides(path, ov); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.ColorGreen+ui.IconCheckmark+" сохранено: "+path+ui.ColorReset)
			return nil
		},
	}

	cmd.Flags().StringVar(&cvPath, "cv", "", "резюме в PDF (используется и для загрузки, и для ответов)")
	cmd.Flags().StringToStringVar(&values, "set", nil, "KEY=VALUE, можно несколько раз")
	cmd.Flags().BoolVar(&show, "show", false, "показать сохранённые значения (ключи API скрыты)")
	return cmd
}

// storeCV копирует PDF в каталог загрузок под именем resume.pdf.
func storeCV(src, dir string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(src), ".pdf") {
		return "", fmt.Errorf("%s: нужен PDF", src)
	}
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst, err := filepath.Abs(filepath.Join(dir, "resume.pdf"))
	if err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	return dst, out.Close()
}

func printOverrides(w io.Writer, ov config.Overrides) {
	if len(ov) == 0 {
		fmt.Fprintln(w, ui.ColorGray+"переопределений нет"+ui.ColorReset)
		return
	}
	keys := make([]string, 0, len(ov))
	for k := range ov {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, ui.ColorCyan+"%s"+ui.ColorReset+"=%s\n", k, ov[k])
	}
}

package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// themeColumns is how many themes a table row shows.
const themeColumns = 4

// WriteHTML renders r as a standalone HTML page. Times are shown in loc.
func WriteHTML(w io.Writer, r *Report, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	tmpl, err := template.New("index.html.tmpl").Funcs(funcMap(r.GeneratedAt, loc)).ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	if err := tmpl.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func writeHTMLFile(path string, r *Report, loc *time.Location) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r, loc); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func funcMap(now time.Time, loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"themes": func(themes []string) string { return Labels(themes, themeColumns) },
		"pct":    formatPercent,
		"when": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return fmt.Sprintf("%s (%s)", formatLocal(t, loc), ago(now, t))
		},
		"local": func(t time.Time) string { return formatLocal(t, loc) },
		"dict":  dict,
	}
}

// dict builds a map from alternating keys and values so that a template
// can pass several values to a nested template.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// formatPercent renders a share in [0,1] with one decimal, or n/a when
// nothing was attempted.
func formatPercent(share float64, attempts int) string {
	if attempts == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", share*100)
}

func formatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}

// ago renders the distance from t to now in the largest whole unit.
func ago(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	}
}

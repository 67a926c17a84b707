package template

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"
)

//go:embed tmpl/*.html
var files embed.FS

const (
	templateDir string = "tmpl"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "n/a"
		}
		return t.Format("Jan 2, 2006")
	},
	"isodate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

func Render(w http.ResponseWriter, r *http.Request, tmpl string, td any) error {
	t, err := template.New(tmpl).Funcs(funcs).ParseFS(files,
		templateDir+"/"+tmpl,
		templateDir+"/"+"base.html",
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

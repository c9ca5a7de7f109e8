package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mechprop/pkg/contracts"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><title>Mechanical Property Analyzer</title></head>
<body>
<h1>Mechanical Property Analyzer {{.Version}}</h1>
<p>Renderer not installed. Server time {{.Time}}.</p>
<ul>
<li><a href="/api/health">Health</a></li>
<li><a href="/api/version">Version</a></li>
<li><a href="/api/files">Instrument logs</a></li>
<li><a href="/api/analysis">Active analysis</a></li>
<li><a href="/api/analysis/plot.png">Curve chart</a></li>
<li><a href="/metrics">Metrics</a></li>
</ul>
</body>
</html>
`))

// ServeMainApp serves the renderer's index.html from webDir. Without an
// installed renderer it serves a status page linking the API.
func ServeMainApp(webDir string) http.HandlerFunc {
	index := filepath.Join(webDir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if info, err := os.Stat(index); err == nil && !info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := statusPage.Execute(w, struct{ Version, Time string }{
			Version: contracts.Version,
			Time:    time.Now().Format(time.DateTime),
		})
		if err != nil {
			slog.ErrorContext(r.Context(), "status page", slog.String("error", err.Error()))
		}
	}
}

package server

import (
	"html/template"
	"net/http"
)

type page struct {
	Title   string
	Message string
	Details []pageDetail
}

type pageDetail struct {
	Label string
	Value string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; max-width: 560px; margin: 48px auto; color: #333; }
    h1 { font-size: 22px; }
    dt { font-weight: bold; margin-top: 8px; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
  {{- if .Details}}
  <dl>
    {{- range .Details}}
    <dt>{{.Label}}</dt><dd>{{.Value}}</dd>
    {{- end}}
  </dl>
  {{- end}}
</body>
</html>
`))

func (s *Server) renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		s.logger.Error("failed to render page", "title", p.Title, "error", err)
	}
}

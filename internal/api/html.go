package api

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/model"
)

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if .Refresh}}<meta http-equiv="refresh" content="5">{{end}}
<title>{{.Title}} | Poligraft</title>
</head>
<body>
<h1><a href="/">Poligraft</a></h1>
{{template "content" .}}
</body>
</html>{{end}}`

const indexHTML = `{{define "content"}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
<form action="/poligraft" method="post">
<p><label>Article URL <input type="url" name="url"></label></p>
<p><label>Or paste text<br><textarea name="text" rows="12" cols="80"></textarea></label></p>
<p style="display:none"><textarea name="a_comment_body"></textarea></p>
<p><label><input type="checkbox" name="suppresstext" value="1"> Don't show the text on the results page</label></p>
<p><button type="submit">Poligraft it</button></p>
</form>
{{end}}`

const resultHTML = `{{define "content"}}
{{with .Result}}
<h2>{{if .SourceURL}}<a href="{{.SourceURL}}">{{.SourceTitle}}</a>{{else}}{{.SourceTitle}}{{end}}</h2>
<p class="status">{{.Status}}{{if not .Processed}} (still working, this page will refresh){{end}}</p>
<p>{{.ContributionCount}} contribution{{if ne .ContributionCount 1}}s{{end}} found.</p>
{{range .Entities}}
<div class="entity">
<h3>{{.TdataName}} <small>{{.TdataType}}</small></h3>
{{if .TopIndustries}}<p>Top industries: {{range $i, $n := .TopIndustries}}{{if $i}}, {{end}}{{$n}}{{end}}</p>{{end}}
{{if .Contributors}}<ul>{{range .Contributors}}<li>{{.TdataName}}: ${{.Amount}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
{{with .SourceContent}}<div class="source"><pre>{{.}}</pre></div>{{end}}
{{end}}
{{end}}`

const notFoundHTML = `{{define "content"}}<p>That result doesn't exist.</p>{{end}}`

var (
	indexTmpl    = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(indexHTML))
	resultTmpl   = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(resultHTML))
	notFoundTmpl = template.Must(template.Must(template.New("layout").Parse(layoutHTML)).Parse(notFoundHTML))
)

type page struct {
	Title   string
	Refresh bool
	Error   string
	Result  *model.ResultView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, indexTmpl, page{Title: "Home", Error: r.URL.Query().Get("error")})
}

func renderResult(w http.ResponseWriter, v model.ResultView) {
	render(w, http.StatusOK, resultTmpl, page{Title: v.SourceTitle, Refresh: !v.Processed, Result: &v})
}

func renderNotFound(w http.ResponseWriter) {
	render(w, http.StatusNotFound, notFoundTmpl, page{Title: "Not found"})
}

func render(w http.ResponseWriter, status int, t *template.Template, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", p); err != nil {
		zap.L().Error("api: render template", zap.Error(err))
	}
}

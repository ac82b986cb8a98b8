package convert

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="generator" content="mathspan {{.Version}}">
<meta name="{{.FingerprintMeta}}" content="{{.Fingerprint}}">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}</body>
</html>
`))

type pageData struct {
	Title           string
	Version         string
	FingerprintMeta string
	Fingerprint     string
	Body            template.HTML
}

func writePage(w io.Writer, p pageData) error {
	p.FingerprintMeta = FingerprintMeta
	return pageTemplate.Execute(w, p)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

var pageTmpl = template.Must(template.New("module").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article class="dmodule">
<header>
<h1>{{.Title}}</h1>
<p class="dmc">{{.DMC}}</p>
<p class="variant">Variant {{.InfoVariant}}</p>
</header>
{{range .Paras}}<p>{{.}}</p>
{{end}}{{if .IllustrationRefs}}<section class="illustrations">
<h2>Illustrations</h2>
<ul>
{{range .IllustrationRefs}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}{{if .ModuleRefs}}<section class="references">
<h2>Referenced modules</h2>
<ul>
{{range .ModuleRefs}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}</article>
</body>
</html>
`))

// HTML renders m to its hypertext form. Content is escaped by the template
// engine, so untrusted module text cannot inject markup.
func HTML(m types.DataModule) (string, error) {
	data := struct {
		types.DataModule
		Paras []string
	}{m, paragraphs(m.Content)}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering hypertext for %s: %w", m.DMC, err)
	}
	return buf.String(), nil
}

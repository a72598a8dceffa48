package codegen

import "text/template"

// unitTemplate lays out one type file: import lines, a blank line when
// there are imports, then the interface block. No trailing newline.
var unitTemplate = template.Must(template.New("unit").Parse(
	`{{range .Imports}}import { {{.TypeName}} } from '{{.Path}}';
{{end}}{{if .Imports}}
{{end}}{{.Body}}`))

// indexTemplate re-exports every type generated into one directory.
var indexTemplate = template.Must(template.New("index").Parse(
	`{{range $i, $e := .}}{{if $i}}
{{end}}export { {{$e.TypeName}} } from './{{$e.Base}}';{{end}}`))

type unitData struct {
	Imports []Import
	Body    string
}

type indexEntry struct {
	TypeName string
	Base     string
}

package main

import (
	"fmt"
	"strings"
	"text/template"
)

// funcMap provides helper functions available to all templates.
var funcMap = template.FuncMap{
	"hex":    func(v uint32) string { return fmt.Sprintf("0x%X", v) },
	"hex2":   func(v uint32) string { return fmt.Sprintf("0x%02X", v) },
	"hex8":   func(v uint32) string { return fmt.Sprintf("0x%08X", v) },
	"mask":   fieldMask,
	"isFlag": func(f RawField) bool { return f.Width == 1 },
}

// templates holds all parsed code generation templates.
var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	headerTmpl +
		basesTmpl +
		offsetsTmpl +
		fieldsTmpl,
))

// renderTemplate executes a named template into the builder.
func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

// --- Template data types ---

// headerData holds data for the file header template.
type headerData struct {
	Path    string
	Source  string
	Package string
}

// fieldsData holds data for one register's field constant block.
type fieldsData struct {
	Periph string
	Reg    RawRegister
}

// --- Template definitions ---

const headerTmpl = `{{define "header"}}// Code generated by regmapgen. DO NOT EDIT.
//
// Source: {{.Path}} ({{.Source}})

package {{.Package}}

{{end}}`

const basesTmpl = `{{define "bases"}}// Peripheral base addresses.
const (
{{- range .Peripherals}}
{{.Name}}_BASE uint32 = {{hex8 .Base}}
{{- end}}
)

{{end}}`

const offsetsTmpl = `{{define "offsets"}}// {{.Name}} register offsets.
const (
{{- range .Registers}}
{{$.Name}}_{{.Name}} uint32 = {{hex2 .Offset}}
{{- end}}
)

{{end}}`

const fieldsTmpl = `{{define "fields"}}// {{.Reg.Name}}: {{.Reg.Description}}.
const (
{{- range .Reg.Fields}}
{{- $prefix := printf "%s_%s_%s" $.Periph $.Reg.Name .Name}}
{{- if isFlag .}}
{{$prefix}} uint32 = 0x1 << {{.Pos}}
{{- else}}
{{$prefix}}_Pos uint8 = {{.Pos}}
{{$prefix}}_Msk uint32 = {{hex (mask .Width)}}
{{- end}}
{{- range .Values}}
{{$prefix}}_{{.Name}} uint32 = {{hex .Value}}
{{- end}}
{{- end}}
)

{{end}}`

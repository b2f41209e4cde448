package main

import (
	"strings"
)

// GenerateConstants renders the register map as Go constant declarations.
// The path is recorded in the file header so readers can find the source
// of truth. The output is unformatted; run it through goimports before
// writing.
func GenerateConstants(rm *RawRegMap, path, pkg string) (string, error) {
	var b strings.Builder

	renderTemplate(&b, "header", headerData{Path: path, Source: rm.Source, Package: pkg})
	renderTemplate(&b, "bases", rm)

	for _, p := range rm.Peripherals {
		if len(p.Registers) == 0 {
			continue
		}
		renderTemplate(&b, "offsets", p)
	}

	for _, p := range rm.Peripherals {
		for _, r := range p.Registers {
			if len(r.Fields) == 0 {
				continue
			}
			renderTemplate(&b, "fields", fieldsData{Periph: p.Name, Reg: r})
		}
	}

	return b.String(), nil
}

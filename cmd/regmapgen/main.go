package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	inPath := flag.String("in", "", "Path to the register map YAML")
	outPath := flag.String("out", "", "Output path for the generated Go file")
	pkg := flag.String("pkg", "rcc", "Package name for the generated file")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: regmapgen -in <regmap.yaml> -out <file.go> [-pkg <name>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*inPath, *outPath, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outPath, pkg string) error {
	rm, err := LoadRegMap(inPath)
	if err != nil {
		return fmt.Errorf("loading register map: %w", err)
	}

	code, err := GenerateConstants(rm, filepath.ToSlash(inPath), pkg)
	if err != nil {
		return fmt.Errorf("generating constants: %w", err)
	}

	if err := writeFormatted(outPath, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s\n", outPath)
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}

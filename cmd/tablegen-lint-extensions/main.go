package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	pkgopenapi "github.com/goliatone/go-tablegen/pkg/openapi"
)

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint OpenAPI documents for unsupported x-table-* extensions.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	failed := false
	for _, path := range paths {
		violations, err := lintFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, v)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func lintFile(ctx context.Context, path string) ([]pkgopenapi.Violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), raw)
	if err != nil {
		return nil, fmt.Errorf("construct document: %w", err)
	}
	return pkgopenapi.Lint(ctx, doc)
}

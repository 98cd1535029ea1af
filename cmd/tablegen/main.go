package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	pkgopenapi "github.com/goliatone/go-tablegen/pkg/openapi"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/render/template/pongo"
	"github.com/goliatone/go-tablegen/pkg/renderers/tui"
	"github.com/goliatone/go-tablegen/pkg/renderers/vanilla"
	"github.com/goliatone/go-tablegen/pkg/renderers/xlsx"
)

func main() {
	definitions := flag.String("definitions", "", "directory holding JSON/YAML table definitions")
	tableID := flag.String("table", "", "table id to render from -definitions")
	rendererName := flag.String("renderer", "vanilla", "renderer to use (vanilla, tui, or xlsx)")
	output := flag.String("output", "", "output file (stdout if empty)")
	openapiSource := flag.String("openapi", "", "OpenAPI document path or URL")
	schema := flag.String("schema", "", "component schema that provides the columns")
	records := flag.String("records", "", "JSON file holding an array of records for -schema")
	format := flag.String("format", string(tui.OutputFormatPlain), "tui output format (plain or markdown)")
	sortColumn := flag.String("sort", "", "column key to sort by")
	descending := flag.Bool("desc", false, "sort descending")
	pageSize := flag.Int("page-size", 0, "rows per page (0 renders every row)")
	page := flag.Int("page", 0, "zero-indexed page to render")
	caption := flag.String("caption", "", "table caption")
	preset := flag.String("preset", "", "JSON column preset applied before rendering")
	templatesDir := flag.String("templates", "", "directory with cell templates")
	interactive := flag.Bool("interactive", false, "prompt for renderer, sorting, and paging")
	flag.Parse()

	ctx := context.Background()
	driver := tui.NewSurveyDriver()

	registry, err := buildRegistry(driver, *format, *templatesDir, *interactive, *pageSize)
	if err != nil {
		log.Fatalf("Failed to configure renderers: %v", err)
	}

	name := *rendererName
	if *interactive {
		if name, err = chooseRenderer(ctx, driver, registry.List(), name); err != nil {
			log.Fatalf("Failed to choose renderer: %v", err)
		}
	}

	options := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithLoader(pkgopenapi.NewLoader(pkgopenapi.WithHTTPFallback(30 * time.Second))),
	}
	if *definitions != "" {
		options = append(options, orchestrator.WithDefinitionsFS(os.DirFS(*definitions)))
	}
	if *preset != "" {
		data, err := os.ReadFile(*preset)
		if err != nil {
			log.Fatalf("Failed to read preset: %v", err)
		}
		transformer, err := orchestrator.NewJSONPresetTransformer(data)
		if err != nil {
			log.Fatalf("Failed to parse preset: %v", err)
		}
		options = append(options, orchestrator.WithTransformers(transformer))
	}
	gen := orchestrator.New(options...)

	req := orchestrator.Request{
		TableID:       *tableID,
		Renderer:      name,
		SortColumn:    *sortColumn,
		Descending:    *descending,
		RenderOptions: render.RenderOptions{Caption: *caption},
	}
	// The tui renderer pages on its own when interactive.
	if !(*interactive && name == "tui") {
		req.PageSize = *pageSize
		req.Page = *page
	}
	if *openapiSource != "" {
		openapiReq, err := buildOpenAPIRequest(*openapiSource, *schema, *records)
		if err != nil {
			log.Fatalf("Invalid OpenAPI input: %v", err)
		}
		req.OpenAPI = openapiReq
	}

	out, err := gen.Generate(ctx, req)
	if err != nil {
		log.Fatalf("Failed to generate table: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Table written to %s\n", *output)
		return
	}
	fmt.Print(string(out))
}

func buildRegistry(driver tui.PromptDriver, format, templatesDir string, interactive bool, pageSize int) (*render.Registry, error) {
	var htmlOptions []vanilla.Option
	var textOptions []tui.Option
	if templatesDir != "" {
		htmlOptions = append(htmlOptions, vanilla.WithTemplatesDir(templatesDir))
	}

	html, err := vanilla.New(htmlOptions...)
	if err != nil {
		return nil, err
	}

	engineOptions := []pongo.Option{pongo.WithFS(vanilla.TemplatesFS())}
	if templatesDir != "" {
		engineOptions = append(engineOptions, pongo.WithBaseDir(templatesDir))
	}
	engine, err := pongo.New(engineOptions...)
	if err != nil {
		return nil, err
	}

	textOptions = append(textOptions,
		tui.WithTemplateRenderer(engine),
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(tui.OutputFormat(format)),
		tui.WithInteractive(interactive),
	)
	if interactive {
		textOptions = append(textOptions, tui.WithPageSize(pageSize))
	}
	text, err := tui.New(textOptions...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(html, text, xlsx.New(xlsx.WithTemplateRenderer(engine))), nil
}

func chooseRenderer(ctx context.Context, driver tui.PromptDriver, names []string, current string) (string, error) {
	defaultIndex := 0
	for i, name := range names {
		if name == current {
			defaultIndex = i
		}
	}
	choice, err := driver.Select(ctx, tui.SelectConfig{
		Message:      "Renderer",
		Options:      names,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return "", err
	}
	if choice < 0 || choice >= len(names) {
		return current, nil
	}
	return names[choice], nil
}

func buildOpenAPIRequest(source, schema, recordsPath string) (*orchestrator.OpenAPIRequest, error) {
	src, err := pkgopenapi.ParseSource(source)
	if err != nil {
		return nil, err
	}
	req := &orchestrator.OpenAPIRequest{Source: src, Schema: schema}
	if recordsPath == "" {
		return req, nil
	}
	data, err := os.ReadFile(recordsPath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if err := json.Unmarshal(data, &req.Records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return req, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	paramform "github.com/goliatone/go-paramform"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/renderers/tui"
	"github.com/goliatone/go-paramform/pkg/results"
	"github.com/goliatone/go-paramform/pkg/widget"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dataset := flag.String("dataset", "", "dataset id (prompted when empty)")
	format := flag.String("format", "tsv", "printed output: tsv, html or query")
	output := flag.String("output", "", "write the table to a file instead (.xlsx, .html or .tsv)")
	copyTable := flag.Bool("copy", false, "copy the table to the clipboard without asking")
	preview := flag.Bool("preview", false, "render the dataset's form with the configured renderer and exit")
	answers := flag.String("answers", "query", "terminal preview output: json, query or pretty")
	flag.Parse()

	cfg, err := config.Load(config.WithFile(*configPath))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}

	ctx := context.Background()
	app, err := paramform.Open(ctx, *cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer func() { _ = app.Close() }()

	theme := tui.Theme{ErrorPrefix: "! "}
	term, err := tui.New(tui.WithStdio(os.Stdin, os.Stderr, os.Stderr), tui.WithTheme(theme))
	if err != nil {
		log.Fatalf("Failed to start terminal: %v", err)
	}

	entry, err := chooseDataset(ctx, term, app.Catalog, *dataset)
	if err != nil {
		log.Fatalf("Failed to select dataset: %v", err)
	}

	specs, err := app.Backend.Parameters(ctx, entry.ParametersPath, nil)
	if err != nil {
		log.Fatalf("Failed to fetch parameters: %v", err)
	}
	f := form.New(
		form.WithLogger(logger),
		form.WithFetcher(func(ctx context.Context, q query.Params) ([]widget.Spec, error) {
			return app.Backend.Parameters(ctx, entry.ParametersPath, q)
		}),
	)
	f.Rebuild(specs)

	if *preview {
		if err := previewForm(ctx, cfg.Renderer, f, theme, *answers); err != nil {
			log.Fatalf("Failed to preview form: %v", err)
		}
		return
	}

	if err := term.Drive(ctx, f); err != nil {
		log.Fatalf("Failed to collect parameters: %v", err)
	}

	q := f.Query()
	if *format == "query" {
		fmt.Println(q.Encode())
		return
	}

	set, err := app.Backend.Results(ctx, entry.ResultPath, q)
	if err != nil {
		log.Fatalf("Failed to fetch results: %v", err)
	}
	table := results.NewRenderer(results.WithLogger(logger))
	table.RenderSet(set)

	if *output != "" {
		if err := writeTable(table, *output); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Table written to %s\n", *output)
	} else if err := printTable(table, *format); err != nil {
		log.Fatalf("Failed to print table: %v", err)
	}

	clip := results.SystemClipboard{}
	if !clip.Available() {
		return
	}
	wantCopy := *copyTable
	if !wantCopy {
		if wantCopy, err = term.Confirm(ctx, "Copy table to clipboard?", false); err != nil {
			return
		}
	}
	if wantCopy {
		_ = table.ExportToClipboard(clip, term)
	}
}

func chooseDataset(ctx context.Context, term *tui.Renderer, c *catalog.Catalog, id string) (catalog.Entry, error) {
	if id != "" {
		return c.Lookup(id)
	}
	entries := c.Entries()
	switch len(entries) {
	case 0:
		return catalog.Entry{}, fmt.Errorf("the catalog is empty")
	case 1:
		return entries[0], nil
	}
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		label := entry.Label
		if strings.TrimSpace(label) == "" {
			label = entry.ID
		}
		labels = append(labels, label)
	}
	idx, err := term.Choose(ctx, "Dataset", labels, 0)
	if err != nil {
		return catalog.Entry{}, err
	}
	return entries[idx], nil
}

// previewForm renders f once through the renderer named in the config: the
// HTML fragment for vanilla, or the collected answers for tui.
func previewForm(ctx context.Context, name string, f *form.Form, theme tui.Theme, answers string) error {
	format, err := tui.ParseOutputFormat(answers)
	if err != nil {
		return err
	}
	registry, err := paramform.NewRendererRegistry(nil, []tui.Option{
		tui.WithStdio(os.Stdin, os.Stderr, os.Stderr),
		tui.WithTheme(theme),
		tui.WithOutputFormat(format),
	})
	if err != nil {
		return err
	}
	out, _, err := registry.Render(ctx, name, f.View(), paramform.RenderOptions{})
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printTable(table *results.Renderer, format string) error {
	switch format {
	case "html":
		fmt.Println(table.HTML())
		return nil
	case "tsv", "":
		text, err := table.TSV()
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(table *results.Renderer, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return table.WriteXLSX(file)
	case ".html", ".htm":
		_, err = file.WriteString(table.HTML())
		return err
	default:
		text, err := table.TSV()
		if err != nil {
			return err
		}
		_, err = file.WriteString(text)
		return err
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/novvoo/go-pdfsketch/pkg/canvas"
	"github.com/novvoo/go-pdfsketch/pkg/config"
	"github.com/novvoo/go-pdfsketch/pkg/logging"
	"github.com/novvoo/go-pdfsketch/pkg/pdfdoc"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
)

const usage = `usage: pdfsketch [-config file] [-log level] [-debug] <command> [flags] <file>

commands:
  info     show pages and annotations of a .pdf or .pdfsketch file
  render   render every page with its annotations to PNG
  export   write a flattened PDF with the editable source attached
  save     write a .pdfsketch container
  extract  copy the embedded source.pdfsketch out of an exported PDF
`

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	logLevel := flag.String("log", "", "log level: debug, info, warn, error, none")
	debug := flag.Bool("debug", false, "enable debug traces")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := loadConfig(*configPath, *logLevel, *debug)
	if err != nil {
		fatalf("%v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "info":
		err = runInfo(cfg, rest)
	case "render":
		err = runRender(cfg, rest)
	case "export":
		err = runExport(cfg, rest)
	case "save":
		err = runSave(cfg, rest)
	case "extract":
		err = runExtract(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%s: %v", cmd, err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "pdfsketch: "+format+"\n", args...)
	os.Exit(1)
}

func loadConfig(path, level string, debug bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Apply(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCanvas 打开输入文件并创建画布
func openCanvas(cfg *config.Config, path string) (*pdfdoc.Loaded, *canvas.Canvas, error) {
	loaded, err := pdfdoc.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := loaded.NewCanvas(cfg.CanvasOptions())
	if err != nil {
		return nil, nil, err
	}
	return loaded, c, nil
}

func singleInput(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

func runInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	showText := fs.Bool("text", false, "print the text of each page")
	input, err := singleInput(fs, args)
	if err != nil {
		return err
	}
	loaded, c, err := openCanvas(cfg, input)
	if err != nil {
		return err
	}

	fmt.Printf("File:     %s\n", input)
	fmt.Printf("Source:   %s (read with %s)\n", loaded.Source, loaded.PDF.Backend())
	fmt.Printf("Pages:    %d\n", loaded.PDF.PageCount())
	fmt.Printf("Document: %v\n", c.Layout().DocSize())

	perPage := make(map[int]map[sketch.Kind]int)
	for _, a := range c.Annotations() {
		if perPage[a.Page()] == nil {
			perPage[a.Page()] = make(map[sketch.Kind]int)
		}
		perPage[a.Page()][a.Kind()]++
	}

	for i := 0; i < loaded.PDF.PageCount(); i++ {
		size := loaded.PDF.PageSize(i)
		line := fmt.Sprintf("  page %d: %.0fx%.0f pt", i+1, size.Width, size.Height)
		if rot := loaded.PDF.Rotation(i); rot != 0 {
			line += fmt.Sprintf(", rotated %d", rot)
		}
		if kinds := perPage[i]; len(kinds) > 0 {
			line += ", " + formatKinds(kinds)
		}
		fmt.Println(line)

		if *showText {
			text, err := loaded.PDF.PageText(i)
			if err != nil {
				logging.Warn("page %d: %v", i+1, err)
				continue
			}
			for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
				fmt.Printf("    | %s\n", l)
			}
		}
	}
	fmt.Printf("Annotations: %d\n", c.Len())
	return nil
}

func formatKinds(kinds map[sketch.Kind]int) string {
	names := make([]string, 0, len(kinds))
	for k, n := range kinds {
		names = append(names, fmt.Sprintf("%d %s", n, k))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runRender(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	outDir := fs.String("o", ".", "output directory")
	dpi := fs.Float64("dpi", cfg.Render.DPI, "resolution")
	workers := fs.Int("workers", cfg.Render.Workers, "concurrent renders")
	input, err := singleInput(fs, args)
	if err != nil {
		return err
	}
	_, c, err := openCanvas(cfg, input)
	if err != nil {
		return err
	}
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", *outDir, err)
	}

	opts := cfg.RenderOptions()
	opts.DPI = *dpi
	start := time.Now()
	progress := newProgress(snap.PageCount())
	err = canvas.NewBatchRenderer(snap, *workers).RenderAll(*outDir, opts, progress.update)
	progress.done()
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %d pages to %s in %v\n", snap.PageCount(), *outDir, time.Since(start).Round(time.Millisecond))
	return nil
}

func runExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "output PDF (default: <input>-sketch.pdf)")
	input, err := singleInput(fs, args)
	if err != nil {
		return err
	}
	loaded, c, err := openCanvas(cfg, input)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "-sketch.pdf"
	}
	if err := pdfdoc.ExportFile(c, loaded.PDF, path); err != nil {
		return err
	}
	fmt.Printf("Exported %d pages with %d annotations to %s\n", loaded.PDF.PageCount(), c.Len(), path)
	return nil
}

func runSave(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default: <input>.pdfsketch)")
	input, err := singleInput(fs, args)
	if err != nil {
		return err
	}
	loaded, c, err := openCanvas(cfg, input)
	if err != nil {
		return err
	}
	data, err := pdfdoc.Container(c, loaded.PDF)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdfsketch"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Saved %s (%d bytes)\n", path, len(data))
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default: <input>.pdfsketch)")
	input, err := singleInput(fs, args)
	if err != nil {
		return err
	}
	pdf, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	data, err := pdfdoc.ExtractSketch(pdf)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdfsketch"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Extracted %s (%d bytes)\n", path, len(data))
	return nil
}

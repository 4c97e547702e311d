package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/derekey/mhtml-unpack/internal/config"
	"github.com/derekey/mhtml-unpack/internal/message"
	"github.com/derekey/mhtml-unpack/internal/observability"
	"github.com/derekey/mhtml-unpack/internal/unpack"
)

// convertConcurrency bounds how many inputs are converted at once. The
// type-to-extension cache is the only state shared between conversions
// and is mutex-guarded.
const convertConcurrency = 4

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert MHTML archives to self-contained HTML",
	Long:  "Convert one or more MHTML archives to self-contained HTML documents, writing <input-stem>.conv.html per input. Resolved resource references are replaced with data URIs, or with relative paths into a blob directory when --dir is set.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

var (
	dirMode    bool
	outDir     string
	blobDir    string
	maxDepth   int
	verbose    bool
	configPath string
)

func init() {
	convertCmd.Flags().BoolVarP(&dirMode, "dir", "d", false, "Write resources to a blob directory instead of inlining data URIs")
	convertCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for converted documents (default: alongside each input)")
	convertCmd.Flags().StringVar(&blobDir, "blob-dir", "", "Directory for blob files (default: the output directory)")
	convertCmd.Flags().IntVar(&maxDepth, "max-depth", 0, fmt.Sprintf("Maximum reference recursion depth (default %d)", unpack.DefaultMaxDepth))
	convertCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-reference resolution detail and a conversion summary")
	convertCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	mergeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	types := unpack.NewTypeResolver()
	printer := observability.NewPrinter(cmd.OutOrStdout())

	group := new(errgroup.Group)
	group.SetLimit(convertConcurrency)
	for _, path := range args {
		path := path
		group.Go(func() error {
			return convertFile(path, cfg, types, printer)
		})
	}
	return group.Wait()
}

// mergeFlags applies explicitly set CLI flags over the loaded config.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Mode = config.ModeInline
		if dirMode {
			cfg.Mode = config.ModeDir
		}
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ModeInline
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = outDir
	}
	if flags.Changed("blob-dir") {
		cfg.BlobDir = blobDir
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
}

// convertFile converts a single archive. A missing root part skips the
// input with a diagnostic rather than failing the whole run.
func convertFile(path string, cfg *config.Config, types *unpack.TypeResolver, printer *observability.Printer) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	msg, err := message.ReadMessage(fh)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	index := unpack.BuildIndex(msg)
	root := index.Root(msg)
	if root == nil {
		log.Printf("%s: cannot find root part, skipping", path)
		return nil
	}

	outPath := convertedPath(path, cfg.OutDir)

	var storage unpack.Storage = unpack.InlineStorage{}
	if cfg.Mode == config.ModeDir {
		dir := cfg.BlobDir
		if dir == "" {
			dir = filepath.Dir(outPath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create blob directory: %w", err)
		}
		storage = unpack.DirStorage{Dir: dir}
	}

	renderer := &unpack.Renderer{
		Index:    index,
		Storage:  storage,
		Types:    types,
		MaxDepth: cfg.MaxDepth,
		Verbose:  cfg.Verbose,
	}
	rendered, err := renderer.Render(root, unpack.DigestSet{})
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	if err := os.WriteFile(outPath, rendered.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	if cfg.Verbose {
		printer.PrintConversion(&observability.ConversionSummary{
			Input:     path,
			Output:    outPath,
			Mode:      cfg.Mode,
			Parts:     countParts(msg),
			Locations: index.LocationCount(),
			IDs:       index.IDCount(),
			Root:      rootLabel(root),
		})
	}

	fmt.Fprintf(os.Stdout, "Converted %s -> %s\n", path, outPath)
	return nil
}

// convertedPath returns <stem>.conv.html for an input path, placed next
// to the input unless outDir is set.
func convertedPath(input, outDir string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := stem + ".conv.html"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(outDir, name)
}

func countParts(msg *message.Part) int {
	count := 0
	msg.Walk(func(*message.Part) { count++ })
	return count
}

// rootLabel identifies the chosen entry part in human-readable form.
func rootLabel(root *message.Part) string {
	if cid := root.ContentID(); cid != "" {
		return cid
	}
	if loc := root.ContentLocation(); loc != "" {
		return loc
	}
	return "(first leaf part)"
}

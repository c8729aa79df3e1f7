// Command capform scans a Go project for method-form capabilities declared
// in capform.yml, bakes the answers into a generated constants file, and can
// expose the resulting index over MCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/capform/internal/export"
	"github.com/dusk-indust/capform/internal/gen"
	"github.com/dusk-indust/capform/internal/index"
	"github.com/dusk-indust/capform/internal/load"
	"github.com/dusk-indust/capform/internal/mcptools"
	"github.com/dusk-indust/capform/internal/scan"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	Manifest    string
	Index       string
	Workers     int
	JSON        bool
	Diagram     bool
	NoGen       bool
	ServeMCP    bool
	HTTPAddr    string
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("capform", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target Go project")
	fs.StringVar(&flags.Manifest, "manifest", "", "manifest path (default: capform.yml under the project root)")
	fs.StringVar(&flags.Index, "index", "", "persist the capability index at this path (requires a cgo build)")
	fs.IntVar(&flags.Workers, "workers", 0, "package-level probe concurrency (default: 4)")
	fs.BoolVar(&flags.JSON, "json", false, "write a JSON scan report to stdout")
	fs.BoolVar(&flags.Diagram, "diagram", false, "write a Mermaid capability diagram to stdout")
	fs.BoolVar(&flags.NoGen, "no-gen", false, "skip writing the generated constants file")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server on stdio")
	fs.StringVar(&flags.HTTPAddr, "mcp-http", "", "run as MCP server on this HTTP address")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable per-package progress output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	ctx := context.Background()

	store, err := openStore(flags.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	if flags.ServeMCP || flags.HTTPAddr != "" {
		svc := mcptools.NewCapabilityService(store)
		if flags.HTTPAddr != "" {
			return mcptools.RunMCPServerHTTP(ctx, svc, flags.HTTPAddr)
		}
		return mcptools.RunMCPServerStdio(ctx, mcptools.NewCapabilityMCPServer(svc))
	}

	return runScan(ctx, flags, store)
}

func runScan(ctx context.Context, flags cliFlags, store index.Store) error {
	sc := scan.NewScanner(scan.Config{
		ProjectRoot:  flags.ProjectRoot,
		ManifestPath: flags.Manifest,
		Workers:      flags.Workers,
		Verbose:      flags.Verbose,
	}, store)

	// Drain progress events to stderr while the scan runs. The channel is
	// only consumed in verbose mode; otherwise overflow events are dropped
	// by the reporter.
	drained := make(chan struct{})
	if flags.Verbose {
		go func() {
			defer close(drained)
			for ev := range sc.Progress() {
				fmt.Fprintln(os.Stderr, scan.FormatProgress(ev))
			}
		}()
	} else {
		close(drained)
	}

	res, err := sc.Run(ctx)
	sc.Close()
	<-drained
	if err != nil {
		return err
	}

	root, err := load.FindModuleRoot(flags.ProjectRoot)
	if err != nil {
		return err
	}

	if !flags.NoGen {
		src, err := gen.Build(ctx, store, res.Manifest.Generate.Package)
		if err != nil {
			return err
		}
		outPath := filepath.Join(root, res.Manifest.Generate.Output)
		if err := gen.WriteFile(outPath, src); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	}

	fmt.Fprintf(os.Stderr, "scanned %d packages (%d skipped), probed %d types, %d findings\n",
		res.PackagesScanned, res.PackagesSkipped, res.TypesProbed, len(res.Findings))

	if flags.JSON {
		report, err := export.BuildExport(ctx, store, filepath.Base(root))
		if err != nil {
			return err
		}
		if err := export.WriteJSON(os.Stdout, report); err != nil {
			return err
		}
	}

	if flags.Diagram {
		mermaid, err := export.GenerateMermaid(ctx, store)
		if err != nil {
			return err
		}
		fmt.Print(mermaid)
	}

	return nil
}

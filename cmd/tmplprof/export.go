package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tmplprof/internal/dialect"
	"tmplprof/internal/driver"
	"tmplprof/internal/neo4jexport"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/report"
)

func newExportCmd() *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export aggregated call graphs to external stores",
	}
	neo := &cobra.Command{
		Use:   "neo4j <input>...",
		Short: "Load call graphs into Neo4j",
		Long: `Loads the call graph of every input as (:Location)-[:INSTANTIATES {weight}]->(:Location).
Inputs are compiler logs or reports saved with --format msgpack. The graph of an
input replaces whatever was previously loaded for the same input name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExportNeo4j,
	}
	f := neo.Flags()
	f.String("uri", envOr("NEO4J_URI", "bolt://localhost:7687"), "Neo4j URI (env NEO4J_URI)")
	f.String("user", envOr("NEO4J_USER", "neo4j"), "Neo4j user (env NEO4J_USER)")
	f.String("password", "", "Neo4j password (default env NEO4J_PASSWORD)")
	f.String("database", "", "Neo4j database (default: server default)")
	f.Int("batch-size", neo4jexport.DefaultBatchSize, "rows per UNWIND statement")
	f.StringP("compiler", "c", "auto", "compiler dialect for log inputs (msvc|gcc|gcc-legacy|auto)")
	f.Int("top", 0, "export only the first N call-graph entries (0 = all)")
	export.AddCommand(neo)
	return export
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runExportNeo4j(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var opts neo4jexport.Options
	var err error
	if opts.URI, err = f.GetString("uri"); err != nil {
		return fmt.Errorf("failed to get uri flag: %w", err)
	}
	if opts.User, err = f.GetString("user"); err != nil {
		return fmt.Errorf("failed to get user flag: %w", err)
	}
	if opts.Password, err = f.GetString("password"); err != nil {
		return fmt.Errorf("failed to get password flag: %w", err)
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("NEO4J_PASSWORD")
	}
	if opts.Database, err = f.GetString("database"); err != nil {
		return fmt.Errorf("failed to get database flag: %w", err)
	}
	if opts.BatchSize, err = f.GetInt("batch-size"); err != nil {
		return fmt.Errorf("failed to get batch-size flag: %w", err)
	}
	compilerStr, err := f.GetString("compiler")
	if err != nil {
		return fmt.Errorf("failed to get compiler flag: %w", err)
	}
	compiler, err := dialect.ParseKind(compilerStr)
	if err != nil {
		return err
	}
	top, err := f.GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}

	reports, err := collectReports(cmd, args, compiler, top)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	loader, err := neo4jexport.Connect(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close(ctx) }()

	if err := loader.CreateIndexes(ctx); err != nil {
		return err
	}
	for _, rep := range reports {
		st, err := loader.Load(ctx, rep)
		if err != nil {
			return fmt.Errorf("%s: %w", rep.Input, err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d locations, %d edges in %d batches\n",
				rep.Input, st.Locations, st.Edges, st.Batches)
		}
	}
	return nil
}

// collectReports decodes msgpack inputs and post-processes the rest.
func collectReports(cmd *cobra.Command, args []string, compiler dialect.Kind, top int) ([]*report.Report, error) {
	reports := make([]*report.Report, len(args))
	var logs []string
	var logIdx []int
	for i, path := range args {
		if strings.EqualFold(filepath.Ext(path), report.FormatMsgpack.Ext()) {
			rep, err := readReport(path)
			if err != nil {
				return nil, err
			}
			if top > 0 && top < len(rep.CallGraph) {
				rep.CallGraph = rep.CallGraph[:top]
			}
			reports[i] = rep
			continue
		}
		logs = append(logs, path)
		logIdx = append(logIdx, i)
	}
	if len(logs) == 0 {
		return reports, nil
	}

	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	results, err := driver.Process(cmd.Context(), &driver.Request{
		Files:   logs,
		Options: postprocess.Options{Dialect: compiler, MaxDiagnostics: maxDiags},
	})
	if err != nil {
		return nil, err
	}
	for j, fr := range results {
		if fr.Err != nil {
			return nil, fr.Err
		}
		reports[logIdx[j]] = report.Build(fr.Result, report.Options{Top: top})
	}
	return reports, nil
}

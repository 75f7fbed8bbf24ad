// Package neo4jexport loads an aggregated call graph into Neo4j as
// (:Location)-[:INSTANTIATES {weight}]->(:Location).
package neo4jexport

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"tmplprof/internal/report"
)

// DefaultBatchSize bounds the rows sent in one UNWIND statement.
const DefaultBatchSize = 1000

const (
	upsertLocations = `UNWIND $batch AS row
MERGE (n:Location {input: row.input, location: row.location})
SET n.file = row.file, n.line = row.line, n.count = row.count,
    n.total_with_children = row.total, n.compiler = row.compiler`

	upsertEdges = `UNWIND $batch AS row
MERGE (p:Location {input: row.input, location: row.parent})
MERGE (c:Location {input: row.input, location: row.child})
MERGE (p)-[r:INSTANTIATES]->(c)
SET r.weight = row.weight`

	deleteInput = `MATCH (n:Location {input: $input}) DETACH DELETE n`
)

var indexes = []string{
	"CREATE INDEX tmplprof_location IF NOT EXISTS FOR (n:Location) ON (n.input, n.location)",
}

// Stats counts what a Load call sent.
type Stats struct {
	Locations int
	Edges     int
	Batches   int
}

// Loader writes reports into one Neo4j database.
type Loader struct {
	driver    neo4j.DriverWithContext
	database  string
	batchSize int
	run       func(ctx context.Context, cypher string, params map[string]any) error
}

// Options configure a Loader.
type Options struct {
	URI       string
	User      string
	Password  string
	Database  string // empty selects the server default
	BatchSize int
}

// Connect creates the driver and checks connectivity.
func Connect(ctx context.Context, opts Options) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j at %s is not reachable: %w", opts.URI, err)
	}
	l := &Loader{driver: driver, database: opts.Database, batchSize: opts.BatchSize}
	l.run = l.execute
	if l.batchSize <= 0 {
		l.batchSize = DefaultBatchSize
	}
	return l, nil
}

// Close releases the driver.
func (l *Loader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Close(ctx)
}

func (l *Loader) execute(ctx context.Context, cypher string, params map[string]any) error {
	var cfg []neo4j.ExecuteQueryConfigurationOption
	if l.database != "" {
		cfg = append(cfg, neo4j.ExecuteQueryWithDatabase(l.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, l.driver, cypher, params, neo4j.EagerResultTransformer, cfg...)
	return err
}

// CreateIndexes ensures the lookup index exists.
func (l *Loader) CreateIndexes(ctx context.Context) error {
	for _, q := range indexes {
		if err := l.run(ctx, q, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Load replaces the graph stored for rep.Input with rep's call graph.
func (l *Loader) Load(ctx context.Context, rep *report.Report) (Stats, error) {
	var st Stats
	if err := l.run(ctx, deleteInput, map[string]any{"input": rep.Input}); err != nil {
		return st, fmt.Errorf("clean %s: %w", rep.Input, err)
	}
	nodes := LocationRows(rep)
	edges := EdgeRows(rep)
	for _, batch := range chunk(nodes, l.batchSize) {
		if err := l.run(ctx, upsertLocations, map[string]any{"batch": batch}); err != nil {
			return st, fmt.Errorf("load locations: %w", err)
		}
		st.Batches++
	}
	st.Locations = len(nodes)
	for _, batch := range chunk(edges, l.batchSize) {
		if err := l.run(ctx, upsertEdges, map[string]any{"batch": batch}); err != nil {
			return st, fmt.Errorf("load edges: %w", err)
		}
		st.Batches++
	}
	st.Edges = len(edges)
	return st, nil
}

// LocationRows builds one parameter row per call-graph entry.
func LocationRows(rep *report.Report) []map[string]any {
	rows := make([]map[string]any, 0, len(rep.CallGraph))
	for _, e := range rep.CallGraph {
		rows = append(rows, map[string]any{
			"input":    rep.Input,
			"location": e.Location,
			"file":     e.File,
			"line":     int64(e.Line),
			"count":    int64(e.Count),
			"total":    int64(e.Total),
			"compiler": rep.Compiler,
		})
	}
	return rows
}

// EdgeRows builds one parameter row per parent->child edge. Only child lists
// are walked; parent lists hold the same edges reversed.
func EdgeRows(rep *report.Report) []map[string]any {
	var rows []map[string]any
	for _, e := range rep.CallGraph {
		for _, c := range e.Children {
			rows = append(rows, map[string]any{
				"input":  rep.Input,
				"parent": e.Location,
				"child":  c.Location,
				"weight": int64(c.Weight),
			})
		}
	}
	return rows
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]map[string]any, 0, (len(rows)+size-1)/size)
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	return append(out, rows)
}

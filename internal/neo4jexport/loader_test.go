package neo4jexport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmplprof/internal/report"
)

func sampleReport() *report.Report {
	return &report.Report{
		Input:    "build.log",
		Compiler: "msvc",
		CallGraph: []report.Entry{
			{ID: 1, Location: "a.cpp(10)", File: "a.cpp", Line: 10, Count: 1, Total: 3,
				Children: []report.Edge{{ID: 2, Location: "b.hpp(7)", Weight: 2, Count: 3}}},
			{ID: 2, Location: "b.hpp(7)", File: "b.hpp", Line: 7, Count: 3, Total: 0,
				Parents: []report.Edge{{ID: 1, Location: "a.cpp(10)", Weight: 2}}},
		},
	}
}

type call struct {
	cypher string
	params map[string]any
}

func fakeLoader(batch int, fail error) (*Loader, *[]call) {
	var calls []call
	l := &Loader{batchSize: batch}
	l.run = func(_ context.Context, cypher string, params map[string]any) error {
		calls = append(calls, call{cypher, params})
		return fail
	}
	return l, &calls
}

func TestRows(t *testing.T) {
	rep := sampleReport()

	nodes := LocationRows(rep)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a.cpp(10)", nodes[0]["location"])
	assert.Equal(t, int64(3), nodes[0]["total"])
	assert.Equal(t, "msvc", nodes[1]["compiler"])

	edges := EdgeRows(rep)
	require.Len(t, edges, 1)
	assert.Equal(t, map[string]any{
		"input": "build.log", "parent": "a.cpp(10)", "child": "b.hpp(7)", "weight": int64(2),
	}, edges[0])
}

func TestLoadBatches(t *testing.T) {
	l, calls := fakeLoader(1, nil)
	st, err := l.Load(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, Stats{Locations: 2, Edges: 1, Batches: 3}, st)

	require.Len(t, *calls, 4)
	assert.Equal(t, deleteInput, (*calls)[0].cypher)
	assert.Equal(t, upsertLocations, (*calls)[1].cypher)
	assert.Equal(t, upsertEdges, (*calls)[3].cypher)
}

func TestLoadStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	l, calls := fakeLoader(10, boom)
	_, err := l.Load(context.Background(), sampleReport())
	require.ErrorIs(t, err, boom)
	assert.Len(t, *calls, 1)
}

func TestChunk(t *testing.T) {
	rows := make([]map[string]any, 5)
	got := chunk(rows, 2)
	require.Len(t, got, 3)
	assert.Len(t, got[2], 1)
	assert.Nil(t, chunk(nil, 2))
}

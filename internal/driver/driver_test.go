package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/postprocess"
)

const (
	enter = "a.cpp(10) : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_enter'; no destructor called"
	exit  = "a.cpp(10) : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_exit'; no destructor called"
)

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestProcessKeepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.log", enter, enter, exit, exit)
	noise := writeLog(t, dir, "noise.log", "nothing to see")
	missing := filepath.Join(dir, "missing.log")

	var mu sync.Mutex
	final := map[string]Status{}
	req := &Request{
		Files:   []string{good, noise, missing},
		Jobs:    2,
		Timings: true,
		Progress: FuncSink(func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			final[ev.Input] = ev.Status
		}),
	}
	results, err := Process(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Equal(t, dialect.MSVC, results[0].Result.Dialect)
	assert.Equal(t, 2, results[0].Result.Frequency.Total)
	assert.NotEmpty(t, results[0].Timer.Phases())

	require.ErrorIs(t, results[1].Err, postprocess.ErrDialectUnknown)
	assert.Equal(t, diag.DialectUnknown, results[1].Bag.Items()[0].Code)

	require.Error(t, results[2].Err)
	assert.Equal(t, diag.IOLoadFileError, results[2].Bag.Items()[0].Code)

	assert.Equal(t, map[string]Status{good: StatusDone, noise: StatusError, missing: StatusError}, final)
}

func TestProcessExplicitDialect(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "x.log", enter, exit)
	results, err := Process(context.Background(), &Request{
		Files:   []string{path},
		Options: postprocess.Options{Dialect: dialect.MSVC, NoCallGraph: true},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Nil(t, results[0].Result.Graph)
	assert.Nil(t, results[0].Result.Detection)
}

func TestProcessCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "x.log", enter, exit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Process(ctx, &Request{Files: []string{path}})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 16)
	dir := t.TempDir()
	paths := []string{writeLog(t, dir, "a.log", enter, exit), writeLog(t, dir, "b.log", enter, exit)}
	_, err := Process(context.Background(), &Request{Files: paths, Progress: ChannelSink{Ch: ch}})
	require.NoError(t, err)
	close(ch)

	var done []string
	for ev := range ch {
		if ev.Status == StatusDone {
			done = append(done, ev.Input)
		}
	}
	sort.Strings(done)
	assert.Equal(t, paths, done)
}

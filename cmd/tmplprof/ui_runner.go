package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tmplprof/internal/driver"
	"tmplprof/internal/ui"
)

type processOutcome struct {
	results []driver.FileResult
	err     error
}

func runProcessWithUI(ctx context.Context, title string, req *driver.Request) ([]driver.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan processOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Process(ctx, &reqCopy)
		outcomeCh <- processOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Interrupted(final) {
		cancel()
	}
	// UI may quit before the pipeline; keep the sender unblocked.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

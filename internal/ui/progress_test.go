package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tmplprof/internal/driver"
)

func TestApplyEventProgress(t *testing.T) {
	m := NewProgressModel("postprocess", []string{"a.log", "b.log"}, nil).(*progressModel)

	m.applyEvent(driver.Event{Input: "a.log", Status: driver.StatusReading, Bytes: 50, Size: 100, Lines: 10})
	if got := m.overall(); got != 0.25 {
		t.Fatalf("overall = %v, want 0.25", got)
	}
	m.applyEvent(driver.Event{Input: "b.log", Status: driver.StatusDone})
	m.applyEvent(driver.Event{Input: "missing.log", Status: driver.StatusDone})
	if got := m.overall(); got != 0.75 {
		t.Fatalf("overall = %v, want 0.75", got)
	}

	view := m.View()
	if !strings.Contains(view, "a.log") || !strings.Contains(view, "reading") || !strings.Contains(view, "done") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	got := truncate("/very/long/directory/name/build.log", 15)
	if got != "...me/build.log" {
		t.Fatalf("truncate = %q", got)
	}
	if truncate("short.log", 20) != "short.log" {
		t.Fatal("short values must be kept")
	}
}

func TestListenReportsDoneOnClose(t *testing.T) {
	ch := make(chan driver.Event)
	close(ch)
	m := NewProgressModel("x", []string{"a"}, ch).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatal("closed channel must yield doneMsg")
	}
}

func TestCtrlCInterrupts(t *testing.T) {
	m := NewProgressModel("x", []string{"a"}, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !Interrupted(next) {
		t.Fatal("ctrl+c must quit and mark the model interrupted")
	}
	if Interrupted(m) != Interrupted(next) {
		t.Fatal("model is updated in place")
	}
}

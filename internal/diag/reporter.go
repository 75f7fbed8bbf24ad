package diag

// Reporter: минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter, DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, line uint32, msg string)
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, line uint32, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(New(sev, code, line, msg))
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, uint32, string) {}

type dedupKey struct {
	code Code
	sev  Severity
	msg  string
}

// DedupReporter suppresses repeats of the same code, severity and message,
// regardless of line. A log with one broken site repeated ten thousand times
// yields one finding.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that forwards only the first occurrence.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, line uint32, msg string) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, sev: sev, msg: msg}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, line, msg)
	}
}

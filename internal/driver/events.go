package driver

// Status is the lifecycle state of one input.
type Status uint8

const (
	StatusQueued Status = iota
	StatusReading
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReading:
		return "reading"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "queued"
	}
}

// Event reports progress of one input.
type Event struct {
	Input  string
	Status Status
	Bytes  int64
	Size   int64 // 0 when unknown
	Lines  int
	Enters int
	Err    error
}

// ProgressSink receives events from worker goroutines; implementations must
// be safe for concurrent use.
type ProgressSink interface {
	Emit(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// Emit blocks when the channel is full so terminal states are never lost.
func (s ChannelSink) Emit(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// FuncSink adapts a function.
type FuncSink func(Event)

func (f FuncSink) Emit(ev Event) {
	if f != nil {
		f(ev)
	}
}

package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Layer is the granularity of an event. Lower values are coarser.
type Layer uint8

const (
	LayerDriver Layer = iota + 1 // commands and batch runs
	LayerCase                    // one generated program
	LayerScope                   // scope push/pop
	LayerPick                    // symbol picks
)

// String returns the string representation of Layer.
func (l Layer) String() string {
	switch l {
	case LayerDriver:
		return "driver"
	case LayerCase:
		return "case"
	case LayerScope:
		return "scope"
	case LayerPick:
		return "pick"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Layer    Layer
	SpanID   uint64
	ParentID uint64 // 0 for root spans and free-standing points
	Name     string
	Detail   string
	Fields   map[string]string
}

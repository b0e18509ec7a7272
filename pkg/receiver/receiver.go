package receiver

import (
	"strings"
	"sync"

	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/pd"
)

type eventKind uint8

const (
	printEvent eventKind = iota
	bangEvent
	floatEvent
	symbolEvent
)

// event is one message emitted by pd. text holds the print message or the
// symbol.
type event struct {
	kind   eventKind
	source string
	text   string
	value  float32
}

// Receiver is the pd.Receiver wired into one registry entry.
//
// pd emits messages from inside engine calls, while the caller still holds
// the entry and engine locks. The Receiver therefore only queues them; Flush
// passes them to the shared Forwarder once those locks are released, so a
// callback may call straight back into the registry.
type Receiver struct {
	id        int
	forwarder *Forwarder
	logger    *debug.Logger

	mu      sync.Mutex
	pending []event
}

var _ pd.Receiver = (*Receiver)(nil)

// New creates the receiver for entry id. A nil logger discards print mirroring.
func New(id int, fwd *Forwarder, logger *debug.Logger) *Receiver {
	if logger == nil {
		logger = debug.Discard()
	}
	return &Receiver{id: id, forwarder: fwd, logger: logger}
}

// ID returns the registry id the receiver belongs to.
func (r *Receiver) ID() int {
	return r.id
}

func (r *Receiver) push(ev event) {
	r.mu.Lock()
	r.pending = append(r.pending, ev)
	r.mu.Unlock()
}

// Print queues pd console output. It is mirrored to the debug log on delivery.
func (r *Receiver) Print(message string) {
	r.push(event{kind: printEvent, text: message})
}

func (r *Receiver) ReceiveBang(source string) {
	r.push(event{kind: bangEvent, source: source})
}

func (r *Receiver) ReceiveFloat(source string, value float32) {
	r.push(event{kind: floatEvent, source: source, value: value})
}

func (r *Receiver) ReceiveSymbol(source, symbol string) {
	r.push(event{kind: symbolEvent, source: source, text: symbol})
}

// Pending returns the number of queued events.
func (r *Receiver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush delivers the queued events in arrival order and returns how many it
// delivered. Events queued by a callback during the flush are left for the
// next Flush, which the registry runs when that callback's own call returns.
func (r *Receiver) Flush() int {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}
	for _, ev := range batch {
		r.deliver(ev)
	}
	n := len(batch)

	// Hand the backing array back so the audio thread does not allocate on
	// every block.
	clear(batch)
	r.mu.Lock()
	if r.pending == nil {
		r.pending = batch[:0]
	}
	r.mu.Unlock()
	return n
}

func (r *Receiver) deliver(ev event) {
	switch ev.kind {
	case printEvent:
		r.logger.Debug("pd: %s", strings.TrimRight(ev.text, "\n"))
		r.forwarder.Print(ev.text)
	case bangEvent:
		r.forwarder.Bang(ev.source)
	case floatEvent:
		r.forwarder.Float(ev.source, ev.value)
	case symbolEvent:
		r.forwarder.Symbol(ev.source, ev.text)
	}
}

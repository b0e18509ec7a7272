// Package pdtest provides an in-memory pd.Context for tests.
package pdtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/justyntemme/unitylibpd/pkg/pd"
)

// Call is one recorded method invocation on a Fake.
type Call struct {
	Method string
	Args   []any
}

// Fake records every call it receives. Processing writes Fill into the output
// buffer so tests can tell processed blocks from untouched ones.
type Fake struct {
	mu sync.Mutex

	Calls    []Call
	Receiver pd.Receiver

	NumInputs  int
	NumOutputs int
	SampleRate float64
	Computing  bool
	Closed     bool

	Subscriptions map[string]bool
	Arrays        map[string][]float32
	Open          map[uintptr]pd.Patch

	// Fill is written to every sample ProcessFloat covers.
	Fill float32

	// OpenErr, when set, makes OpenPatch fail.
	OpenErr error
	// WriteErr, when set, makes WriteArray fail.
	WriteErr error

	// Echo makes SendBang, SendFloat and SendSymbol call straight back into
	// the receiver with the destination as source, as a patch that forwards
	// [r x] to a subscribed [s x] would. The callback runs with the Fake
	// locked, like a libpd hook runs under the engine lock.
	Echo bool
	// ProcessBang, when set, is the source of a bang emitted during every
	// ProcessFloat.
	ProcessBang string

	nextRef uintptr
}

var _ pd.Context = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Subscriptions: make(map[string]bool),
		Arrays:        make(map[string][]float32),
		Open:          make(map[uintptr]pd.Patch),
		Fill:          1,
	}
}

func (f *Fake) record(method string, args ...any) {
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
}

// Methods returns the names of the recorded calls in order.
func (f *Fake) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		names[i] = c.Method
	}
	return names
}

// Last returns the most recent call to method.
func (f *Fake) Last(method string) (Call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.Calls) - 1; i >= 0; i-- {
		if f.Calls[i].Method == method {
			return f.Calls[i], true
		}
	}
	return Call{}, false
}

func (f *Fake) Init(numInputs, numOutputs int, sampleRate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Init", numInputs, numOutputs, sampleRate)
	f.NumInputs, f.NumOutputs, f.SampleRate = numInputs, numOutputs, sampleRate
	return nil
}

func (f *Fake) ComputeAudio(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ComputeAudio", on)
	f.Computing = on
}

func (f *Fake) SetReceiver(r pd.Receiver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetReceiver", r)
	f.Receiver = r
}

func (f *Fake) OpenPatch(name, dir string) (pd.Patch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("OpenPatch", name, dir)
	if f.OpenErr != nil {
		return pd.Patch{}, f.OpenErr
	}
	f.nextRef++
	p := pd.Patch{Ref: f.nextRef, DollarZero: 1000 + int(f.nextRef), Name: name, Dir: dir}
	f.Open[p.Ref] = p
	return p, nil
}

func (f *Fake) ClosePatch(p pd.Patch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClosePatch", p)
	delete(f.Open, p.Ref)
}

func (f *Fake) SendBang(dest string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendBang", dest)
	if f.Echo && f.Receiver != nil {
		f.Receiver.ReceiveBang(dest)
	}
}

func (f *Fake) SendFloat(dest string, value float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendFloat", dest, value)
	if f.Echo && f.Receiver != nil {
		f.Receiver.ReceiveFloat(dest, value)
	}
}

func (f *Fake) SendSymbol(dest, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendSymbol", dest, symbol)
	if f.Echo && f.Receiver != nil {
		f.Receiver.ReceiveSymbol(dest, symbol)
	}
}

func (f *Fake) SendMessage(dest, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendMessage", dest, message)
}

func (f *Fake) SendNoteOn(channel, pitch, velocity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendNoteOn", channel, pitch, velocity)
}

func (f *Fake) Subscribe(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Subscribe", source)
	f.Subscriptions[source] = true
}

func (f *Fake) Unsubscribe(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Unsubscribe", source)
	delete(f.Subscriptions, source)
}

func (f *Fake) WriteArray(name string, offset int, data []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("WriteArray", name, offset, len(data))
	if f.WriteErr != nil {
		return f.WriteErr
	}
	arr := f.Arrays[name]
	if need := offset + len(data); need > len(arr) {
		grown := make([]float32, need)
		copy(grown, arr)
		arr = grown
	}
	copy(arr[offset:], data)
	f.Arrays[name] = arr
	return nil
}

func (f *Fake) ProcessFloat(ticks int, in, out []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ProcessFloat", ticks, len(in), len(out))
	if f.Closed {
		return errors.New("pdtest: process on closed context")
	}
	n := ticks * pd.BlockSize * f.NumOutputs
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = f.Fill
	}
	if f.ProcessBang != "" && f.Receiver != nil {
		f.Receiver.ReceiveBang(f.ProcessBang)
	}
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Close")
	if f.Closed {
		return fmt.Errorf("pdtest: context closed twice")
	}
	f.Closed = true
	return nil
}

// Factory hands out Fakes and remembers them in creation order.
type Factory struct {
	mu    sync.Mutex
	Made  []*Fake
	Err   error
	Setup func(*Fake)
}

// New satisfies pd.Factory.
func (fa *Factory) New() (pd.Context, error) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.Err != nil {
		return nil, fa.Err
	}
	f := New()
	if fa.Setup != nil {
		fa.Setup(f)
	}
	fa.Made = append(fa.Made, f)
	return f, nil
}

// Latest returns the most recently created Fake, or nil.
func (fa *Factory) Latest() *Fake {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if len(fa.Made) == 0 {
		return nil
	}
	return fa.Made[len(fa.Made)-1]
}

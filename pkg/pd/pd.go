// Package pd defines the contract between the plugin and an embedded Pure Data
// engine. One Context is one independent pd instance with its own patches,
// subscriptions and DSP state.
package pd

import "errors"

// Engine constants shared by every context.
const (
	// BlockSize is the number of frames pd computes per tick.
	BlockSize = 64

	// NumInputs and NumOutputs are the fixed channel counts contexts are
	// initialised with.
	NumInputs  = 2
	NumOutputs = 2

	// DefaultVelocity is used for note-on messages sent without a velocity.
	DefaultVelocity = 64
)

// ErrUnavailable is returned by factories when no engine is compiled in.
var ErrUnavailable = errors.New("pd: engine not available in this build")

// Patch references one opened patch document inside a Context.
type Patch struct {
	// Ref is the engine's opaque handle for the patch. It is never a Go pointer.
	Ref        uintptr
	DollarZero int
	Name       string
	Dir        string
}

// Valid reports whether the patch refers to an opened document.
func (p Patch) Valid() bool {
	return p.Ref != 0
}

// Receiver gets the messages a context emits: print output and values sent
// to sources the context subscribed to.
type Receiver interface {
	Print(message string)
	ReceiveBang(source string)
	ReceiveFloat(source string, value float32)
	ReceiveSymbol(source, symbol string)
}

// Context is a single pd instance.
//
// Implementations are not required to be safe for concurrent use; callers
// serialize access per context.
type Context interface {
	// Init configures audio for the given channel counts and sample rate.
	Init(numInputs, numOutputs int, sampleRate float64) error
	// ComputeAudio turns DSP on or off.
	ComputeAudio(on bool)
	// SetReceiver installs the receiver for print and subscribed messages.
	SetReceiver(r Receiver)

	OpenPatch(name, dir string) (Patch, error)
	ClosePatch(p Patch)

	SendBang(dest string)
	SendFloat(dest string, value float32)
	SendSymbol(dest, symbol string)
	// SendMessage sends a message with the given selector and no arguments.
	SendMessage(dest, message string)
	SendNoteOn(channel, pitch, velocity int)

	Subscribe(source string)
	Unsubscribe(source string)

	// WriteArray copies data into the named array starting at offset.
	WriteArray(name string, offset int, data []float32) error

	// ProcessFloat runs ticks blocks of BlockSize frames. Buffers are
	// interleaved; out is written in place.
	ProcessFloat(ticks int, in, out []float32) error

	// Close frees the instance. The context must not be used afterwards.
	Close() error
}

// Factory creates a new, uninitialised Context.
type Factory func() (Context, error)

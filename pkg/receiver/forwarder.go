// Package receiver forwards messages emitted by pd instances to callbacks
// registered by the managed client.
//
// The callback slots live on a Forwarder shared by every instance of a
// registry. Registering a callback therefore changes delivery for all
// instances, including those created before the registration; there is no
// per-instance routing.
//
// Events reach the callbacks when the owning Receiver is flushed, never from
// inside the engine call that produced them.
package receiver

import "sync/atomic"

// Callback signatures, one per slot.
type (
	DebugFunc  func(message string)
	BangFunc   func(source string)
	FloatFunc  func(source string, value float32)
	SymbolFunc func(source, symbol string)
)

// Forwarder holds the current callback for each kind of event. Slots are
// swapped atomically; a nil slot drops its events.
type Forwarder struct {
	debug  atomic.Pointer[DebugFunc]
	bang   atomic.Pointer[BangFunc]
	float  atomic.Pointer[FloatFunc]
	symbol atomic.Pointer[SymbolFunc]
}

// NewForwarder returns a Forwarder with every slot empty.
func NewForwarder() *Forwarder {
	return &Forwarder{}
}

// SetDebugFunc sets the print callback; nil clears it.
func (f *Forwarder) SetDebugFunc(fn DebugFunc) {
	if fn == nil {
		f.debug.Store(nil)
		return
	}
	f.debug.Store(&fn)
}

// SetBangFunc sets the bang callback; nil clears it.
func (f *Forwarder) SetBangFunc(fn BangFunc) {
	if fn == nil {
		f.bang.Store(nil)
		return
	}
	f.bang.Store(&fn)
}

// SetFloatFunc sets the float callback; nil clears it.
func (f *Forwarder) SetFloatFunc(fn FloatFunc) {
	if fn == nil {
		f.float.Store(nil)
		return
	}
	f.float.Store(&fn)
}

// SetSymbolFunc sets the symbol callback; nil clears it.
func (f *Forwarder) SetSymbolFunc(fn SymbolFunc) {
	if fn == nil {
		f.symbol.Store(nil)
		return
	}
	f.symbol.Store(&fn)
}

// Reset clears every slot.
func (f *Forwarder) Reset() {
	f.debug.Store(nil)
	f.bang.Store(nil)
	f.float.Store(nil)
	f.symbol.Store(nil)
}

// Print delivers message to the debug slot. It reports whether a callback
// received it.
func (f *Forwarder) Print(message string) bool {
	fn := f.debug.Load()
	if fn == nil {
		return false
	}
	(*fn)(message)
	return true
}

// Bang delivers a bang from source.
func (f *Forwarder) Bang(source string) bool {
	fn := f.bang.Load()
	if fn == nil {
		return false
	}
	(*fn)(source)
	return true
}

// Float delivers a float from source.
func (f *Forwarder) Float(source string, value float32) bool {
	fn := f.float.Load()
	if fn == nil {
		return false
	}
	(*fn)(source, value)
	return true
}

// Symbol delivers a symbol from source.
func (f *Forwarder) Symbol(source, symbol string) bool {
	fn := f.symbol.Load()
	if fn == nil {
		return false
	}
	(*fn)(source, symbol)
	return true
}

//go:build libpd

// Package libpd binds pd.Context to libpd's multi-instance C API.
//
// libpd must be built with PDINSTANCE (and PDTHREADS) so that every Context
// gets its own t_pdinstance. The current instance is global libpd state, so
// every call selects its instance under a package lock first.
package libpd

// #cgo CFLAGS: -I${SRCDIR}/../../../third_party/libpd/libpd_wrapper -I${SRCDIR}/../../../third_party/libpd/libpd_wrapper/util -I${SRCDIR}/../../../third_party/libpd/pure-data/src -DPDINSTANCE -DPDTHREADS
// #cgo LDFLAGS: -lpd
// #include <stdlib.h>
// #include "z_libpd.h"
//
// void pdgo_install_hooks(void);
import "C"
import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/justyntemme/unitylibpd/pkg/pd"
)

var (
	initOnce sync.Once

	// mu serializes every libpd call; libpd_set_instance is process-wide.
	mu sync.Mutex

	// instances maps t_pdinstance addresses to their Go side, for hooks.
	instances   = make(map[uintptr]*Context)
	instancesMu sync.RWMutex
)

// Context is one libpd instance.
type Context struct {
	ptr      *C.t_pdinstance
	binds    map[string]unsafe.Pointer
	inputs   int
	outputs  int
	receiver pd.Receiver
	recvMu   sync.RWMutex
}

var _ pd.Context = (*Context)(nil)

// New creates a libpd instance. It satisfies pd.Factory.
func New() (pd.Context, error) {
	// libpd_init returns -1 when another library in the process already
	// initialised libpd, which is fine.
	initOnce.Do(func() { C.libpd_init() })

	mu.Lock()
	defer mu.Unlock()

	ptr := C.libpd_new_instance()
	if ptr == nil {
		return nil, fmt.Errorf("libpd: failed to allocate instance")
	}
	C.libpd_set_instance(ptr)
	C.pdgo_install_hooks()

	c := &Context{
		ptr:   ptr,
		binds: make(map[string]unsafe.Pointer),
	}

	instancesMu.Lock()
	instances[uintptr(unsafe.Pointer(ptr))] = c
	instancesMu.Unlock()

	return c, nil
}

// enter selects this instance and holds the package lock until the returned
// function is called.
func (c *Context) enter() func() {
	mu.Lock()
	C.libpd_set_instance(c.ptr)
	return mu.Unlock
}

// Init configures audio channels and sample rate.
func (c *Context) Init(numInputs, numOutputs int, sampleRate float64) error {
	defer c.enter()()

	if rc := C.libpd_init_audio(C.int(numInputs), C.int(numOutputs), C.int(sampleRate)); rc != 0 {
		return fmt.Errorf("libpd: init audio (%d in, %d out, %.0f Hz) failed: %d", numInputs, numOutputs, sampleRate, int(rc))
	}
	c.inputs, c.outputs = numInputs, numOutputs
	return nil
}

// ComputeAudio sends [; pd dsp 0/1(.
func (c *Context) ComputeAudio(on bool) {
	defer c.enter()()

	var state C.float
	if on {
		state = 1
	}
	pdSym := C.CString("pd")
	dsp := C.CString("dsp")
	defer C.free(unsafe.Pointer(pdSym))
	defer C.free(unsafe.Pointer(dsp))

	C.libpd_start_message(1)
	C.libpd_add_float(state)
	C.libpd_finish_message(pdSym, dsp)
}

// SetReceiver installs the receiver used by the hooks.
func (c *Context) SetReceiver(r pd.Receiver) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	c.receiver = r
}

func (c *Context) currentReceiver() pd.Receiver {
	c.recvMu.RLock()
	defer c.recvMu.RUnlock()
	return c.receiver
}

// OpenPatch opens name inside dir.
func (c *Context) OpenPatch(name, dir string) (pd.Patch, error) {
	defer c.enter()()

	cName := C.CString(name)
	cDir := C.CString(dir)
	defer C.free(unsafe.Pointer(cName))
	defer C.free(unsafe.Pointer(cDir))

	ref := C.libpd_openfile(cName, cDir)
	if ref == nil {
		return pd.Patch{}, fmt.Errorf("libpd: failed to open patch %q in %q", name, dir)
	}

	return pd.Patch{
		Ref:        uintptr(ref),
		DollarZero: int(C.libpd_getdollarzero(ref)),
		Name:       name,
		Dir:        dir,
	}, nil
}

// ClosePatch closes a patch opened by OpenPatch.
func (c *Context) ClosePatch(p pd.Patch) {
	if !p.Valid() {
		return
	}
	defer c.enter()()
	C.libpd_closefile(unsafe.Pointer(p.Ref))
}

func (c *Context) SendBang(dest string) {
	defer c.enter()()

	cDest := C.CString(dest)
	defer C.free(unsafe.Pointer(cDest))
	C.libpd_bang(cDest)
}

func (c *Context) SendFloat(dest string, value float32) {
	defer c.enter()()

	cDest := C.CString(dest)
	defer C.free(unsafe.Pointer(cDest))
	C.libpd_float(cDest, C.float(value))
}

func (c *Context) SendSymbol(dest, symbol string) {
	defer c.enter()()

	cDest := C.CString(dest)
	cSym := C.CString(symbol)
	defer C.free(unsafe.Pointer(cDest))
	defer C.free(unsafe.Pointer(cSym))
	C.libpd_symbol(cDest, cSym)
}

func (c *Context) SendMessage(dest, message string) {
	defer c.enter()()

	cDest := C.CString(dest)
	cMsg := C.CString(message)
	defer C.free(unsafe.Pointer(cDest))
	defer C.free(unsafe.Pointer(cMsg))
	C.libpd_message(cDest, cMsg, 0, nil)
}

func (c *Context) SendNoteOn(channel, pitch, velocity int) {
	defer c.enter()()
	C.libpd_noteon(C.int(channel), C.int(pitch), C.int(velocity))
}

// Subscribe binds source so messages sent to it reach the receiver.
// Subscribing twice to the same source is a no-op.
func (c *Context) Subscribe(source string) {
	defer c.enter()()

	if _, ok := c.binds[source]; ok {
		return
	}
	cSrc := C.CString(source)
	defer C.free(unsafe.Pointer(cSrc))

	if b := C.libpd_bind(cSrc); b != nil {
		c.binds[source] = b
	}
}

func (c *Context) Unsubscribe(source string) {
	defer c.enter()()

	b, ok := c.binds[source]
	if !ok {
		return
	}
	C.libpd_unbind(b)
	delete(c.binds, source)
}

func (c *Context) WriteArray(name string, offset int, data []float32) error {
	if len(data) == 0 {
		return nil
	}
	defer c.enter()()

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	rc := C.libpd_write_array(cName, C.int(offset), (*C.float)(unsafe.Pointer(&data[0])), C.int(len(data)))
	if rc != 0 {
		return fmt.Errorf("libpd: write array %q (%d samples at %d) failed: %d", name, len(data), offset, int(rc))
	}
	return nil
}

// ProcessFloat runs ticks blocks. libpd reads and writes ticks*BlockSize
// frames of every configured channel, so shorter buffers are refused. in may
// be empty when the instance has no inputs.
func (c *Context) ProcessFloat(ticks int, in, out []float32) error {
	if ticks <= 0 {
		return nil
	}
	defer c.enter()()

	samples := ticks * pd.BlockSize
	if len(in) < samples*c.inputs || len(out) < samples*c.outputs {
		return fmt.Errorf("libpd: %d ticks need %d in and %d out samples, have %d and %d",
			ticks, samples*c.inputs, samples*c.outputs, len(in), len(out))
	}
	if c.outputs == 0 {
		return nil
	}

	var inPtr *C.float
	if len(in) > 0 {
		inPtr = (*C.float)(unsafe.Pointer(&in[0]))
	}
	if rc := C.libpd_process_float(C.int(ticks), inPtr, (*C.float)(unsafe.Pointer(&out[0]))); rc != 0 {
		return fmt.Errorf("libpd: process %d ticks failed: %d", ticks, int(rc))
	}
	return nil
}

// Close unbinds every subscription and frees the instance.
func (c *Context) Close() error {
	mu.Lock()
	defer mu.Unlock()

	if c.ptr == nil {
		return nil
	}
	C.libpd_set_instance(c.ptr)
	for source, b := range c.binds {
		C.libpd_unbind(b)
		delete(c.binds, source)
	}

	instancesMu.Lock()
	delete(instances, uintptr(unsafe.Pointer(c.ptr)))
	instancesMu.Unlock()

	C.libpd_free_instance(c.ptr)
	c.ptr = nil
	return nil
}

// receiverForCurrent returns the receiver of the instance libpd is running.
func receiverForCurrent() pd.Receiver {
	key := uintptr(unsafe.Pointer(C.libpd_this_instance()))

	instancesMu.RLock()
	c := instances[key]
	instancesMu.RUnlock()

	if c == nil {
		return nil
	}
	return c.currentReceiver()
}

//export goPdPrint
func goPdPrint(s *C.char) {
	if r := receiverForCurrent(); r != nil {
		r.Print(C.GoString(s))
	}
}

//export goPdBang
func goPdBang(source *C.char) {
	if r := receiverForCurrent(); r != nil {
		r.ReceiveBang(C.GoString(source))
	}
}

//export goPdFloat
func goPdFloat(source *C.char, value C.float) {
	if r := receiverForCurrent(); r != nil {
		r.ReceiveFloat(C.GoString(source), float32(value))
	}
}

//export goPdSymbol
func goPdSymbol(source, symbol *C.char) {
	if r := receiverForCurrent(); r != nil {
		r.ReceiveSymbol(C.GoString(source), C.GoString(symbol))
	}
}

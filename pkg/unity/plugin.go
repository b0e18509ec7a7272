package unity

import (
	"sync"

	"github.com/justyntemme/unitylibpd/pkg/dsp"
	"github.com/justyntemme/unitylibpd/pkg/framework/param"
)

// Processor renders audio for a registry id. *registry.Registry satisfies it.
type Processor interface {
	ProcessAudio(id int, in, out []float32, frames, inChannels, outChannels int) error
}

// effect is the state Unity keeps for one node: just its parameter block.
type effect struct {
	params *param.Block
}

// Plugin dispatches the host callbacks. Unity stores the handle returned by
// Create in the node's effect data; Go pointers never cross into C.
type Plugin struct {
	def  *Definition
	proc Processor

	mu      sync.RWMutex
	effects map[uintptr]*effect
	nextID  uintptr
}

// NewPlugin creates the callback dispatcher for def, rendering through proc.
func NewPlugin(def *Definition, proc Processor) *Plugin {
	return &Plugin{
		def:     def,
		proc:    proc,
		effects: make(map[uintptr]*effect),
		nextID:  1,
	}
}

// Definition returns the effect definition.
func (p *Plugin) Definition() *Definition {
	return p.def
}

// Count returns the number of live nodes.
func (p *Plugin) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.effects)
}

func (p *Plugin) get(handle uintptr) *effect {
	if handle == 0 {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.effects[handle]
}

// Create allocates a node with default parameter values and returns its
// handle. Handles are never 0.
func (p *Plugin) Create() uintptr {
	e := &effect{params: param.NewBlock(p.def.Params)}

	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.nextID
	p.nextID++
	p.effects[h] = e
	return h
}

// Release frees a node.
func (p *Plugin) Release(handle uintptr) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.effects[handle]; !ok {
		return ResultErrUnsupported
	}
	delete(p.effects, handle)
	return ResultOK
}

// SetFloatParameter writes parameter index of a node, clamped to its range.
func (p *Plugin) SetFloatParameter(handle uintptr, index int, value float32) Result {
	e := p.get(handle)
	if e == nil || !e.params.Set(index, value) {
		return ResultErrUnsupported
	}
	return ResultOK
}

// GetFloatParameter reads parameter index of a node.
func (p *Plugin) GetFloatParameter(handle uintptr, index int) (float32, Result) {
	e := p.get(handle)
	if e == nil {
		return 0, ResultErrUnsupported
	}
	v, ok := e.params.Get(index)
	if !ok {
		return 0, ResultErrUnsupported
	}
	return v, ResultOK
}

// GetFloatBuffer is part of the ABI; the effect exposes no buffers.
func (p *Plugin) GetFloatBuffer(handle uintptr, name string, buffer []float32) Result {
	return ResultOK
}

// Process renders one block for a node through the instance its Index
// selects. When there is no such instance the output is silenced for the
// whole block and ResultErrUnsupported is returned.
func (p *Plugin) Process(handle uintptr, in, out []float32, length uint32, inChannels, outChannels int) Result {
	frames := int(length)

	e := p.get(handle)
	if e == nil {
		dsp.Silence(out, frames, outChannels)
		return ResultErrUnsupported
	}

	value, _ := e.params.Get(ParamIndex)
	id := int(value)
	if id < 0 || id >= p.def.MaxIndex {
		dsp.Silence(out, frames, outChannels)
		return ResultErrUnsupported
	}

	if err := p.proc.ProcessAudio(id, in, out, frames, inChannels, outChannels); err != nil {
		dsp.Silence(out, frames, outChannels)
		return ResultErrUnsupported
	}
	return ResultOK
}

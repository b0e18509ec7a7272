// Package param describes the float parameters an audio effect exposes to the
// host and stores their per-node values.
package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Unity stores parameter names and units in fixed 16-byte fields.
const (
	MaxNameLen = 15
	MaxUnitLen = 15
)

// Parameter is the definition of one host-visible parameter, in plain units.
type Parameter struct {
	Name        string
	Unit        string
	Description string

	Min          float32
	Max          float32
	DefaultValue float32

	// DisplayScale and DisplayExponent shape how the host draws the value.
	DisplayScale    float32
	DisplayExponent float32
}

// New creates a parameter definition with a linear, unscaled display.
func New(name string, min, max, def float32) *Parameter {
	return &Parameter{
		Name:            name,
		Min:             min,
		Max:             max,
		DefaultValue:    def,
		DisplayScale:    1,
		DisplayExponent: 1,
	}
}

// Validate checks that the definition fits the host's fixed-size fields and
// that its default lies inside the range.
func (p *Parameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter name is empty")
	}
	if len(p.Name) > MaxNameLen {
		return fmt.Errorf("parameter name %q longer than %d bytes", p.Name, MaxNameLen)
	}
	if len(p.Unit) > MaxUnitLen {
		return fmt.Errorf("parameter %q unit longer than %d bytes", p.Name, MaxUnitLen)
	}
	if p.Max < p.Min {
		return fmt.Errorf("parameter %q max %g below min %g", p.Name, p.Max, p.Min)
	}
	if p.DefaultValue < p.Min || p.DefaultValue > p.Max {
		return fmt.Errorf("parameter %q default %g outside [%g, %g]", p.Name, p.DefaultValue, p.Min, p.Max)
	}
	return nil
}

// Clamp limits value to the parameter range. NaN maps to the default.
func (p *Parameter) Clamp(value float32) float32 {
	if math.IsNaN(float64(value)) {
		return p.DefaultValue
	}
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// Block holds one node's parameter values. Reads and writes are atomic so the
// audio thread can read while the control thread writes.
type Block struct {
	defs   *Registry
	values []atomic.Uint32
}

// NewBlock creates a block with every value set to its default.
func NewBlock(defs *Registry) *Block {
	b := &Block{
		defs:   defs,
		values: make([]atomic.Uint32, defs.Count()),
	}
	for i := range b.values {
		b.values[i].Store(math.Float32bits(defs.GetByIndex(i).DefaultValue))
	}
	return b
}

// Set stores value clamped to the parameter's range. It reports false for an
// unknown index.
func (b *Block) Set(index int, value float32) bool {
	if index < 0 || index >= len(b.values) {
		return false
	}
	v := b.defs.GetByIndex(index).Clamp(value)
	b.values[index].Store(math.Float32bits(v))
	return true
}

// Get returns the value at index. It reports false for an unknown index.
func (b *Block) Get(index int) (float32, bool) {
	if index < 0 || index >= len(b.values) {
		return 0, false
	}
	return math.Float32frombits(b.values[index].Load()), true
}

// Len returns the number of parameters in the block.
func (b *Block) Len() int {
	return len(b.values)
}

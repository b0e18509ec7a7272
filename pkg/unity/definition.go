// Package unity implements the callbacks of Unity's native audio plugin ABI
// for an effect that renders a registry instance.
//
// Each effect node exposes a single parameter, "Index", naming the registry id
// whose instance renders the node. Node lifetime and instance lifetime are
// independent: releasing a node never touches the registry.
package unity

import (
	"fmt"

	"github.com/justyntemme/unitylibpd/pkg/framework/param"
)

// Result is the status code returned to Unity.
type Result int32

// Values of UNITY_AUDIODSP_RESULT.
const (
	ResultOK             Result = 0
	ResultErrUnsupported Result = 1
)

const (
	// EffectName is the name the effect is listed under in the mixer.
	EffectName = "LibPD"

	// DefaultMaxIndex bounds the Index parameter to [0, DefaultMaxIndex-1].
	DefaultMaxIndex = 12

	// ParamIndex is the position of the Index parameter.
	ParamIndex = 0
)

// Definition describes the effect to the host.
type Definition struct {
	Name     string
	MaxIndex int
	Params   *param.Registry
}

// NewDefinition builds the effect definition with an Index parameter covering
// [0, maxIndex-1].
func NewDefinition(maxIndex int) (*Definition, error) {
	if maxIndex < 1 {
		return nil, fmt.Errorf("unity: max index %d must be at least 1", maxIndex)
	}

	reg := param.NewRegistry()
	index := param.New("Index", 0, float32(maxIndex-1), 0)
	index.Description = "Registry id of the pd instance rendering this node"
	if err := reg.Add(index); err != nil {
		return nil, err
	}

	return &Definition{
		Name:     EffectName,
		MaxIndex: maxIndex,
		Params:   reg,
	}, nil
}

// NumParams returns the number of registered parameters.
func (d *Definition) NumParams() int {
	return d.Params.Count()
}

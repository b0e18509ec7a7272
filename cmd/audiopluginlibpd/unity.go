package main

// #include <stdint.h>
import "C"
import (
	"github.com/justyntemme/unitylibpd/pkg/dsp"
	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/unity"
)

// Go side of unity_bridge.c. Unity keeps the handle returned by goUnityCreate
// in the node's effectdata.

//export goUnityEffectName
func goUnityEffectName(dst *C.char, size C.int) {
	defer recoverPanic("effect name")
	copyCString(dst, int(size), effects.Definition().Name)
}

//export goUnityParamCount
func goUnityParamCount() (n C.int) {
	defer recoverPanic("parameter count")
	return C.int(effects.Definition().NumParams())
}

// goUnityParamDefinition fills the fields of parameter index and returns its
// description, which stays allocated for the life of the process. Nil
// out-pointers are skipped.
//
//export goUnityParamDefinition
func goUnityParamDefinition(index C.int, name *C.char, nameSize C.int, unit *C.char, unitSize C.int,
	lo, hi, def, scale, exponent *C.float) (desc *C.char) {
	defer recoverPanic("parameter definition")

	p := effects.Definition().Params.GetByIndex(int(index))
	if p == nil {
		return nil
	}
	copyCString(name, int(nameSize), p.Name)
	copyCString(unit, int(unitSize), p.Unit)
	setFloat(lo, p.Min)
	setFloat(hi, p.Max)
	setFloat(def, p.DefaultValue)
	setFloat(scale, p.DisplayScale)
	setFloat(exponent, p.DisplayExponent)
	return C.CString(p.Description)
}

func setFloat(dst *C.float, v float32) {
	if dst != nil {
		*dst = C.float(v)
	}
}

//export goUnityCreate
func goUnityCreate() C.uintptr_t {
	defer recoverPanic("create callback")
	return C.uintptr_t(effects.Create())
}

//export goUnityRelease
func goUnityRelease(handle C.uintptr_t) (res C.int) {
	res = C.int(unity.ResultErrUnsupported)
	defer recoverPanic("release callback")
	return C.int(effects.Release(uintptr(handle)))
}

//export goUnitySetFloatParameter
func goUnitySetFloatParameter(handle C.uintptr_t, index C.int, value C.float) (res C.int) {
	res = C.int(unity.ResultErrUnsupported)
	defer recoverPanic("set parameter callback")
	return C.int(effects.SetFloatParameter(uintptr(handle), int(index), float32(value)))
}

//export goUnityGetFloatParameter
func goUnityGetFloatParameter(handle C.uintptr_t, index C.int, value *C.float) (res C.int) {
	res = C.int(unity.ResultErrUnsupported)
	defer recoverPanic("get parameter callback")

	v, r := effects.GetFloatParameter(uintptr(handle), int(index))
	if r == unity.ResultOK && value != nil {
		*value = C.float(v)
	}
	return C.int(r)
}

//export goUnityGetFloatBuffer
func goUnityGetFloatBuffer(handle C.uintptr_t, name *C.char, buffer *C.float, numSamples C.int) (res C.int) {
	res = C.int(unity.ResultOK)
	defer recoverPanic("get buffer callback")
	return C.int(effects.GetFloatBuffer(uintptr(handle), C.GoString(name), floats(buffer, int(numSamples))))
}

//export goUnityProcess
func goUnityProcess(handle C.uintptr_t, inBuffer, outBuffer *C.float, length C.uint, inChannels, outChannels C.int) (res C.int) {
	frames := int(length)
	in := floats(inBuffer, frames*int(inChannels))
	out := floats(outBuffer, frames*int(outChannels))

	res = C.int(unity.ResultErrUnsupported)
	defer func() {
		if r := recover(); r != nil {
			dsp.Silence(out, frames, int(outChannels))
			debug.Default().Error("panic in process callback: %v", r)
		}
	}()

	return C.int(effects.Process(uintptr(handle), in, out, uint32(length), int(inChannels), int(outChannels)))
}

package main

// #include <stdbool.h>
import "C"
import "github.com/justyntemme/unitylibpd/pkg/registry"

// Functions called by the C# binding. Each returns false (or -1 for
// OpenPatch) when the id has no live instance.

//export LibPD_Create
func LibPD_Create(id C.int) (ok C.bool) {
	defer recoverPanic("LibPD_Create")
	return C.bool(instances.Create(int(id)) == nil)
}

//export LibPD_Init
func LibPD_Init(id C.int, sampleRate C.float) (ok C.bool) {
	defer recoverPanic("LibPD_Init")
	return C.bool(instances.Init(int(id), float64(sampleRate)) == nil)
}

//export LibPD_Release
func LibPD_Release(id C.int) (ok C.bool) {
	defer recoverPanic("LibPD_Release")
	return C.bool(instances.Release(int(id), true) == nil)
}

//export LibPD_ReleaseAll
func LibPD_ReleaseAll() (ok C.bool) {
	defer recoverPanic("LibPD_ReleaseAll")
	instances.ReleaseAll()
	return true
}

//export LibPD_WriteArray
func LibPD_WriteArray(id C.int, name *C.char, buffer *C.float, numSamples C.int) (ok C.bool) {
	defer recoverPanic("LibPD_WriteArray")
	return C.bool(instances.WriteArray(int(id), C.GoString(name), floats(buffer, int(numSamples))) == nil)
}

//export LibPD_SetComputeAudio
func LibPD_SetComputeAudio(id C.int, state C.bool) (ok C.bool) {
	defer recoverPanic("LibPD_SetComputeAudio")
	return C.bool(instances.SetComputeAudio(int(id), bool(state)) == nil)
}

//export LibPD_SendBang
func LibPD_SendBang(id C.int, dest *C.char) (ok C.bool) {
	defer recoverPanic("LibPD_SendBang")
	return C.bool(instances.SendBang(int(id), C.GoString(dest)) == nil)
}

//export LibPD_SendFloat
func LibPD_SendFloat(id C.int, dest *C.char, num C.float) (ok C.bool) {
	defer recoverPanic("LibPD_SendFloat")
	return C.bool(instances.SendFloat(int(id), C.GoString(dest), float32(num)) == nil)
}

//export LibPD_SendSymbol
func LibPD_SendSymbol(id C.int, dest, symbol *C.char) (ok C.bool) {
	defer recoverPanic("LibPD_SendSymbol")
	return C.bool(instances.SendSymbol(int(id), C.GoString(dest), C.GoString(symbol)) == nil)
}

//export LibPD_SendMessage
func LibPD_SendMessage(id C.int, dest, message *C.char) (ok C.bool) {
	defer recoverPanic("LibPD_SendMessage")
	return C.bool(instances.SendMessage(int(id), C.GoString(dest), C.GoString(message)) == nil)
}

//export LibPD_SendNoteOn
func LibPD_SendNoteOn(id, channel, pitch C.int) (ok C.bool) {
	defer recoverPanic("LibPD_SendNoteOn")
	return C.bool(instances.SendNoteOn(int(id), int(channel), int(pitch)) == nil)
}

//export LibPD_Subscribe
func LibPD_Subscribe(id C.int, source *C.char) (ok C.bool) {
	defer recoverPanic("LibPD_Subscribe")
	return C.bool(instances.Subscribe(int(id), C.GoString(source)) == nil)
}

//export LibPD_Unsubscribe
func LibPD_Unsubscribe(id C.int, source *C.char) (ok C.bool) {
	defer recoverPanic("LibPD_Unsubscribe")
	return C.bool(instances.Unsubscribe(int(id), C.GoString(source)) == nil)
}

//export LibPD_OpenPatch
func LibPD_OpenPatch(id C.int, patch, path *C.char) (handle C.int) {
	handle = registry.InvalidPatch
	defer recoverPanic("LibPD_OpenPatch")

	h, err := instances.OpenPatch(int(id), C.GoString(patch), C.GoString(path))
	if err != nil {
		return registry.InvalidPatch
	}
	return C.int(h)
}

//export LibPD_ClosePatch
func LibPD_ClosePatch(id, patchID C.int) (ok C.bool) {
	defer recoverPanic("LibPD_ClosePatch")
	return C.bool(instances.ClosePatch(int(id), int(patchID)) == nil)
}

//export LibPD_CloseAllPatches
func LibPD_CloseAllPatches(id C.int) (ok C.bool) {
	defer recoverPanic("LibPD_CloseAllPatches")
	return C.bool(instances.CloseAllPatches(int(id)) == nil)
}

//export LibPD_ProcessAudio
func LibPD_ProcessAudio(id C.int, inBuffer, outBuffer *C.float, length C.uint, inChannels, outChannels C.int) (ok C.bool) {
	defer recoverPanic("LibPD_ProcessAudio")

	frames := int(length)
	in := floats(inBuffer, frames*int(inChannels))
	out := floats(outBuffer, frames*int(outChannels))
	return C.bool(instances.ProcessAudio(int(id), in, out, frames, int(inChannels), int(outChannels)) == nil)
}

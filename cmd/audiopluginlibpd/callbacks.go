package main

// #include <stdlib.h>
// #include "callbacks.h"
import "C"
import "unsafe"

// The setters replace a slot on the shared forwarder, so a callback set here
// receives events from every instance, old and new. A NULL pointer clears it.

//export LibPD_SetDebugFunction
func LibPD_SetDebugFunction(fp C.DebugFuncPtr) {
	defer recoverPanic("LibPD_SetDebugFunction")
	if fp == nil {
		forwarder.SetDebugFunc(nil)
		return
	}
	forwarder.SetDebugFunc(func(message string) {
		cMsg := C.CString(message)
		defer C.free(unsafe.Pointer(cMsg))
		C.callDebug(fp, cMsg)
	})
}

//export LibPD_SetBangFunction
func LibPD_SetBangFunction(fp C.BangFuncPtr) {
	defer recoverPanic("LibPD_SetBangFunction")
	if fp == nil {
		forwarder.SetBangFunc(nil)
		return
	}
	forwarder.SetBangFunc(func(source string) {
		cSrc := C.CString(source)
		defer C.free(unsafe.Pointer(cSrc))
		C.callBang(fp, cSrc)
	})
}

//export LibPD_SetFloatFunction
func LibPD_SetFloatFunction(fp C.FloatFuncPtr) {
	defer recoverPanic("LibPD_SetFloatFunction")
	if fp == nil {
		forwarder.SetFloatFunc(nil)
		return
	}
	forwarder.SetFloatFunc(func(source string, value float32) {
		cSrc := C.CString(source)
		defer C.free(unsafe.Pointer(cSrc))
		C.callFloat(fp, cSrc, C.float(value))
	})
}

//export LibPD_SetSymbolFunction
func LibPD_SetSymbolFunction(fp C.SymFuncPtr) {
	defer recoverPanic("LibPD_SetSymbolFunction")
	if fp == nil {
		forwarder.SetSymbolFunc(nil)
		return
	}
	forwarder.SetSymbolFunc(func(source, symbol string) {
		cSrc := C.CString(source)
		cSym := C.CString(symbol)
		defer C.free(unsafe.Pointer(cSrc))
		defer C.free(unsafe.Pointer(cSym))
		C.callSymbol(fp, cSrc, cSym)
	})
}

package main

// #include <stddef.h>
import "C"
import "unsafe"

// floats views n C floats as a slice. A nil pointer yields an empty slice.
func floats(p *C.float, n int) []float32 {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(p)), n)
}

// copyCString writes s into the size-byte C buffer dst, truncating and
// always NUL-terminating.
func copyCString(dst *C.char, size int, s string) {
	if dst == nil || size <= 0 {
		return
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	n := copy(buf[:size-1], s)
	buf[n] = 0
}

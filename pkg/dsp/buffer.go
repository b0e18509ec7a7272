// Package dsp provides buffer helpers for the audio callback path.
package dsp

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Silence zeroes frames*channels interleaved samples of buffer, bounded by its
// length. It returns the number of samples cleared.
func Silence(buffer []float32, frames, channels int) int {
	if frames <= 0 || channels <= 0 {
		return 0
	}
	n := frames * channels
	if n > len(buffer) {
		n = len(buffer)
	}
	Clear(buffer[:n])
	return n
}

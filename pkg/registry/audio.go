package registry

import (
	"fmt"

	"github.com/justyntemme/unitylibpd/pkg/pd"
)

// ProcessAudio renders frames interleaved frames of id into out, reading in.
// Frames beyond the last whole pd block are not processed. The buffers must be
// interleaved stereo and hold every processed block; anything else fails with
// ErrBufferSize before the engine sees them. This runs on the audio thread and
// does not log.
func (r *Registry) ProcessAudio(id int, in, out []float32, frames, inChannels, outChannels int) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	err = r.process(e, in, out, frames, inChannels, outChannels)
	e.receiver.Flush()
	return err
}

// process runs the engine with e locked and releases the lock.
func (r *Registry) process(e *entry, in, out []float32, frames, inChannels, outChannels int) error {
	defer e.mu.Unlock()

	ticks := frames / pd.BlockSize
	if err := checkBuffers(ticks, len(in), len(out), inChannels, outChannels); err != nil {
		return err
	}

	var stop func(int)
	if r.profiler != nil {
		stop = r.profiler.Start(e.profile)
	}

	// Engine errors are not a missing entry; the block still counts as served.
	_ = e.ctx.ProcessFloat(ticks, in, out)

	if stop != nil {
		stop(frames)
	}
	return nil
}

func checkBuffers(ticks, inLen, outLen, inChannels, outChannels int) error {
	if inChannels != pd.NumInputs || outChannels != pd.NumOutputs {
		return fmt.Errorf("%w: %d in and %d out channels", ErrBufferSize, inChannels, outChannels)
	}
	samples := ticks * pd.BlockSize
	if inLen < samples*pd.NumInputs || outLen < samples*pd.NumOutputs {
		return fmt.Errorf("%w: %d blocks need %d in and %d out samples, have %d and %d",
			ErrBufferSize, ticks, samples*pd.NumInputs, samples*pd.NumOutputs, inLen, outLen)
	}
	return nil
}

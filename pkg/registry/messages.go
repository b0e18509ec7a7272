package registry

import "github.com/justyntemme/unitylibpd/pkg/pd"

// The message functions forward to the instance unchanged. They fail only
// when id has no live instance.

// SetComputeAudio turns DSP on or off for id.
func (r *Registry) SetComputeAudio(id int, on bool) error {
	return r.with(id, func(e *entry) error {
		e.ctx.ComputeAudio(on)
		return nil
	})
}

func (r *Registry) SendBang(id int, dest string) error {
	return r.with(id, func(e *entry) error {
		e.ctx.SendBang(dest)
		return nil
	})
}

func (r *Registry) SendFloat(id int, dest string, value float32) error {
	return r.with(id, func(e *entry) error {
		e.ctx.SendFloat(dest, value)
		return nil
	})
}

func (r *Registry) SendSymbol(id int, dest, symbol string) error {
	return r.with(id, func(e *entry) error {
		e.ctx.SendSymbol(dest, symbol)
		return nil
	})
}

// SendMessage sends message as a selector with no arguments to dest.
func (r *Registry) SendMessage(id int, dest, message string) error {
	return r.with(id, func(e *entry) error {
		e.ctx.SendMessage(dest, message)
		return nil
	})
}

// SendNoteOn sends a note-on at pd.DefaultVelocity.
func (r *Registry) SendNoteOn(id, channel, pitch int) error {
	return r.with(id, func(e *entry) error {
		e.ctx.SendNoteOn(channel, pitch, pd.DefaultVelocity)
		return nil
	})
}

// Subscribe routes messages sent to source into the shared callbacks.
func (r *Registry) Subscribe(id int, source string) error {
	return r.with(id, func(e *entry) error {
		e.ctx.Subscribe(source)
		return nil
	})
}

func (r *Registry) Unsubscribe(id int, source string) error {
	return r.with(id, func(e *entry) error {
		e.ctx.Unsubscribe(source)
		return nil
	})
}

// WriteArray copies data into the named array from index 0. Engine-side
// failures, such as a missing array, are logged and not returned.
func (r *Registry) WriteArray(id int, name string, data []float32) error {
	return r.with(id, func(e *entry) error {
		if err := e.ctx.WriteArray(name, 0, data); err != nil {
			r.logger.Warn("instance %d: %v", id, err)
		}
		return nil
	})
}

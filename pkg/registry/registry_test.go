package registry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/pd"
	"github.com/justyntemme/unitylibpd/pkg/pd/pdtest"
	"github.com/justyntemme/unitylibpd/pkg/receiver"
)

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *pdtest.Factory) {
	t.Helper()
	factory := &pdtest.Factory{}
	return New(factory.New, receiver.NewForwarder(), opts...), factory
}

func TestCreate(t *testing.T) {
	r, factory := newTestRegistry(t)

	require.NoError(t, r.Create(3))
	assert.ErrorIs(t, r.Create(3), ErrEntryExists)
	assert.Len(t, factory.Made, 1, "second create must not allocate")

	fake := factory.Latest()
	require.NotNil(t, fake.Receiver, "receiver wired at creation")
	rcv, ok := fake.Receiver.(*receiver.Receiver)
	require.True(t, ok)
	assert.Equal(t, 3, rcv.ID())

	require.NoError(t, r.Release(3, true))
	require.NoError(t, r.Create(3), "create after release succeeds")
	assert.Len(t, factory.Made, 2)
}

func TestCreateFactoryError(t *testing.T) {
	r, factory := newTestRegistry(t)
	factory.Err = pd.ErrUnavailable

	err := r.Create(1)
	assert.ErrorIs(t, err, pd.ErrUnavailable)
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Init(1, 48000), ErrNoEntry)
}

func TestInit(t *testing.T) {
	r, factory := newTestRegistry(t)
	require.NoError(t, r.Create(0))

	require.NoError(t, r.Init(0, 48000))

	fake := factory.Latest()
	assert.Equal(t, pd.NumInputs, fake.NumInputs)
	assert.Equal(t, pd.NumOutputs, fake.NumOutputs)
	assert.Equal(t, 48000.0, fake.SampleRate)
}

func TestNeverCreatedIDFails(t *testing.T) {
	r, _ := newTestRegistry(t)
	const id = 9

	checks := map[string]error{
		"Init":            r.Init(id, 44100),
		"Release":         r.Release(id, true),
		"SetComputeAudio": r.SetComputeAudio(id, true),
		"SendBang":        r.SendBang(id, "b"),
		"SendFloat":       r.SendFloat(id, "f", 1),
		"SendSymbol":      r.SendSymbol(id, "s", "x"),
		"SendMessage":     r.SendMessage(id, "d", "m"),
		"SendNoteOn":      r.SendNoteOn(id, 1, 60),
		"Subscribe":       r.Subscribe(id, "s"),
		"Unsubscribe":     r.Unsubscribe(id, "s"),
		"WriteArray":      r.WriteArray(id, "a", []float32{1}),
		"ClosePatch":      r.ClosePatch(id, 1),
		"CloseAllPatches": r.CloseAllPatches(id),
		"ProcessAudio":    r.ProcessAudio(id, nil, make([]float32, 128), 64, 2, 2),
	}
	for name, err := range checks {
		assert.ErrorIs(t, err, ErrNoEntry, name)
	}

	handle, err := r.OpenPatch(id, "a.pd", ".")
	assert.ErrorIs(t, err, ErrNoEntry)
	assert.Equal(t, InvalidPatch, handle)

	_, err = r.Patches(id)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestRelease(t *testing.T) {
	r, factory := newTestRegistry(t)
	require.NoError(t, r.Create(1))
	_, err := r.OpenPatch(1, "a.pd", "patches")
	require.NoError(t, err)
	_, err = r.OpenPatch(1, "b.pd", "patches")
	require.NoError(t, err)
	fake := factory.Latest()

	require.NoError(t, r.Release(1, true))

	assert.False(t, fake.Computing)
	assert.True(t, fake.Closed)
	assert.Empty(t, fake.Open, "every patch closed")
	assert.Equal(t,
		[]string{"SetReceiver", "OpenPatch", "OpenPatch", "ComputeAudio", "ClosePatch", "ClosePatch", "Close"},
		fake.Methods())
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Release(1, true), ErrNoEntry)
}

func TestReleaseWithoutErase(t *testing.T) {
	r, factory := newTestRegistry(t)
	require.NoError(t, r.Create(1))

	require.NoError(t, r.Release(1, false))

	assert.ErrorIs(t, r.SendBang(1, "b"), ErrNoEntry, "empty entry counts as absent")
	assert.ErrorIs(t, r.Release(1, false), ErrNoEntry)
	assert.Empty(t, r.IDs())

	require.NoError(t, r.Create(1), "empty entry can be recreated")
	assert.Len(t, factory.Made, 2)
	assert.Equal(t, []int{1}, r.IDs())
}

func TestReleaseAll(t *testing.T) {
	r, factory := newTestRegistry(t)
	for _, id := range []int{4, 0, 2} {
		require.NoError(t, r.Create(id))
		_, err := r.OpenPatch(id, "p.pd", ".")
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 2, 4}, r.IDs())

	r.ReleaseAll()

	assert.Equal(t, 0, r.Len())
	for _, f := range factory.Made {
		assert.True(t, f.Closed)
		assert.Empty(t, f.Open)
	}
	for _, id := range []int{0, 2, 4} {
		assert.ErrorIs(t, r.SendFloat(id, "x", 1), ErrNoEntry)
		assert.ErrorIs(t, r.Init(id, 48000), ErrNoEntry)
		_, err := r.OpenPatch(id, "p.pd", ".")
		assert.ErrorIs(t, err, ErrNoEntry)
	}

	r.ReleaseAll()
	assert.Equal(t, 0, r.Len())
}

func TestPassthroughs(t *testing.T) {
	r, factory := newTestRegistry(t)
	require.NoError(t, r.Create(2))
	fake := factory.Latest()

	require.NoError(t, r.SetComputeAudio(2, true))
	assert.True(t, fake.Computing)

	require.NoError(t, r.SendBang(2, "go"))
	require.NoError(t, r.SendFloat(2, "pitch", 0.25))
	require.NoError(t, r.SendSymbol(2, "mode", "loop"))
	require.NoError(t, r.SendMessage(2, "player", "stop"))
	require.NoError(t, r.SendNoteOn(2, 1, 60))
	require.NoError(t, r.Subscribe(2, "level"))
	require.NoError(t, r.Unsubscribe(2, "level"))
	require.NoError(t, r.Subscribe(2, "beat"))
	require.NoError(t, r.WriteArray(2, "sample0", []float32{0.1, 0.2, 0.3}))

	call, ok := fake.Last("SendFloat")
	require.True(t, ok)
	assert.Equal(t, []any{"pitch", float32(0.25)}, call.Args)

	call, _ = fake.Last("SendSymbol")
	assert.Equal(t, []any{"mode", "loop"}, call.Args)

	call, _ = fake.Last("SendMessage")
	assert.Equal(t, []any{"player", "stop"}, call.Args)

	call, _ = fake.Last("SendNoteOn")
	assert.Equal(t, []any{1, 60, pd.DefaultVelocity}, call.Args)

	call, _ = fake.Last("WriteArray")
	assert.Equal(t, []any{"sample0", 0, 3}, call.Args)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, fake.Arrays["sample0"])

	assert.Equal(t, map[string]bool{"beat": true}, fake.Subscriptions)
}

func TestWriteArrayEngineErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	r, factory := newTestRegistry(t, WithLogger(debug.New(&buf, "", 0)))
	factory.Setup = func(f *pdtest.Fake) { f.WriteErr = errors.New("no such array") }
	require.NoError(t, r.Create(1))

	assert.NoError(t, r.WriteArray(1, "missing", []float32{1}))
	assert.Contains(t, buf.String(), "no such array")
}

func TestForwardingAcrossEntries(t *testing.T) {
	r, factory := newTestRegistry(t)
	factory.Setup = func(f *pdtest.Fake) { f.Echo = true }
	require.NoError(t, r.Create(1))

	var got []string
	r.Forwarder().SetBangFunc(func(source string) { got = append(got, source) })

	require.NoError(t, r.Create(2))

	require.NoError(t, r.SendBang(1, "one"))
	require.NoError(t, r.SendBang(2, "two"))
	assert.Equal(t, []string{"one", "two"}, got)

	var replaced []string
	r.Forwarder().SetBangFunc(func(source string) { replaced = append(replaced, source) })
	require.NoError(t, r.SendBang(1, "three"))
	assert.Equal(t, []string{"three"}, replaced)
	assert.Equal(t, []string{"one", "two"}, got)
}

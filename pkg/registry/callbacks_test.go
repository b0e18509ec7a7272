package registry

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/pd/pdtest"
)

// within fails the test when fn does not return in time, which is how a
// callback deadlocking the registry shows up.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("call did not return within %v", d)
	}
}

func newEchoRegistry(t *testing.T, ids ...int) (*Registry, *pdtest.Factory) {
	t.Helper()
	r, factory := newTestRegistry(t)
	factory.Setup = func(f *pdtest.Fake) { f.Echo = true }
	for _, id := range ids {
		require.NoError(t, r.Create(id))
		require.NoError(t, r.Init(id, 48000))
	}
	return r, factory
}

func TestCallbackReentersSameEntry(t *testing.T) {
	r, factory := newEchoRegistry(t, 1)

	var floats []float32
	r.Forwarder().SetBangFunc(func(source string) {
		assert.NoError(t, r.SendFloat(1, "reply", 1))
	})
	r.Forwarder().SetFloatFunc(func(source string, v float32) {
		floats = append(floats, v)
	})

	within(t, 2*time.Second, func() {
		assert.NoError(t, r.SendBang(1, "ping"))
	})

	assert.Equal(t, []float32{1}, floats)
	fake := factory.Made[0]
	assert.Equal(t, []string{"SetReceiver", "Init", "SendBang", "SendFloat"}, fake.Methods())
}

func TestCallbackReentersOtherEntry(t *testing.T) {
	r, factory := newEchoRegistry(t, 1, 2)

	r.Forwarder().SetSymbolFunc(func(source, symbol string) {
		if source == "relay" {
			assert.NoError(t, r.SendSymbol(2, "relayed", symbol))
		}
	})

	within(t, 2*time.Second, func() {
		assert.NoError(t, r.SendSymbol(1, "relay", "go"))
	})

	call, ok := factory.Made[1].Last("SendSymbol")
	require.True(t, ok)
	assert.Equal(t, []any{"relayed", "go"}, call.Args)
}

func TestCallbackFromAudioReentersRegistry(t *testing.T) {
	r, factory := newEchoRegistry(t, 0)
	factory.Made[0].ProcessBang = "block"

	var blocks int
	r.Forwarder().SetBangFunc(func(source string) {
		if source == "block" {
			blocks++
			assert.NoError(t, r.SendFloat(0, "blocks", float32(blocks)))
		}
	})

	in := make([]float32, 128)
	out := make([]float32, 128)
	within(t, 2*time.Second, func() {
		for i := 0; i < 3; i++ {
			assert.NoError(t, r.ProcessAudio(0, in, out, 64, 2, 2))
		}
	})

	assert.Equal(t, 3, blocks)
	call, _ := factory.Made[0].Last("SendFloat")
	assert.Equal(t, []any{"blocks", float32(3)}, call.Args)
}

func TestCallbackMayReleaseItsEntry(t *testing.T) {
	r, _ := newEchoRegistry(t, 3)

	r.Forwarder().SetBangFunc(func(source string) {
		assert.NoError(t, r.Release(3, true))
	})

	within(t, 2*time.Second, func() {
		assert.NoError(t, r.SendBang(3, "quit"))
	})
	assert.Empty(t, r.IDs())
}

func TestReleaseAllLogsProfile(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.New(&buf, "", 0)
	p := debug.NewProfiler()
	r, _ := newTestRegistry(t, WithLogger(logger), WithProfiler(p))
	require.NoError(t, r.Create(2))
	require.NoError(t, r.ProcessAudio(2, make([]float32, 128), make([]float32, 128), 64, 2, 2))

	r.ReleaseAll()

	assert.Contains(t, buf.String(), "process/2: count=1")
}

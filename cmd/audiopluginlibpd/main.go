// Command audiopluginlibpd builds the native plugin Unity loads:
//
//	go build -tags libpd -buildmode=c-shared -o AudioPluginLibPD.so ./cmd/audiopluginlibpd
//
// The library exports the LibPD_* functions the C# binding calls and the
// UnityGetAudioEffectDefinitions entry point of the native audio plugin ABI.
// Unity's AudioPluginInterface.h must be placed in include/.
package main

// #cgo CFLAGS: -I${SRCDIR}/../../include
import "C"
import (
	"os"

	"github.com/justyntemme/unitylibpd/pkg/config"
	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
	"github.com/justyntemme/unitylibpd/pkg/pd/libpd"
	"github.com/justyntemme/unitylibpd/pkg/receiver"
	"github.com/justyntemme/unitylibpd/pkg/registry"
	"github.com/justyntemme/unitylibpd/pkg/unity"
)

// Process-wide state. The host loads the library once and calls in through
// plain C functions, so the object graph hangs off package variables here and
// nowhere else. Logging goes through debug.Default.
var (
	forwarder *receiver.Forwarder
	instances *registry.Registry
	effects   *unity.Plugin
)

func init() {
	cfg, cfgErr := config.FromEnv()

	debug.SetDefault(newLogger(cfg))
	logger := debug.Default()
	if cfgErr != nil {
		logger.Error("configuration: %v", cfgErr)
	}

	opts := []registry.Option{registry.WithLogger(logger)}
	if cfg.Profiling {
		opts = append(opts, registry.WithProfiler(debug.NewProfiler()))
	}

	forwarder = receiver.NewForwarder()
	instances = registry.New(libpd.New, forwarder, opts...)

	def, err := unity.NewDefinition(cfg.MaxIndex)
	if err != nil {
		logger.Error("effect definition: %v; using max index %d", err, unity.DefaultMaxIndex)
		if def, err = unity.NewDefinition(unity.DefaultMaxIndex); err != nil {
			logger.Fatal("default effect definition: %v", err)
		}
	}
	effects = unity.NewPlugin(def, instances)
	for _, p := range def.Params.All() {
		logger.Debug("parameter %s [%g, %g] default %g", p.Name, p.Min, p.Max, p.DefaultValue)
	}

	logger.Info("loaded, %d instance slots", def.MaxIndex)
}

func newLogger(cfg config.Config) *debug.Logger {
	l := debug.New(os.Stderr, "libpd", debug.DefaultFlags)
	if cfg.LogFile != "" {
		fl, err := debug.NewFileLogger(cfg.LogFile, "libpd", debug.DefaultFlags)
		if err == nil {
			l = fl
		} else {
			l.Error("log file: %v", err)
		}
	}
	l.SetLevel(cfg.Level())
	return l
}

// recoverPanic keeps panics from unwinding into the host. Exports use named
// results, which already hold the failure value when a panic is recovered.
func recoverPanic(operation string) {
	if r := recover(); r != nil {
		debug.Default().Error("panic in %s: %v", operation, r)
	}
}

func main() {}

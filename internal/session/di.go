package session

import (
	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/metrics"
	"github.com/foxseedlab/kikitorin/internal/token"
	"github.com/foxseedlab/kikitorin/internal/transport"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Factory, error) {
		cfg := do.MustInvoke[*config.Config](i)
		tokens := do.MustInvoke[token.Provider](i)
		newTransport := do.MustInvoke[transport.Factory](i)
		rec := do.MustInvoke[metrics.Recorder](i)
		return func(cb Callbacks) *Session {
			return New(cfg, tokens, newTransport(), rec, cb)
		}, nil
	})
}

package transport

import (
	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/transport"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transport.Factory, error) {
		c := do.MustInvoke[*config.Config](i)
		target, err := c.StreamTarget()
		if err != nil {
			return nil, err
		}
		return func() transport.Transport {
			return NewWebsocketTransport(target)
		}, nil
	})
}

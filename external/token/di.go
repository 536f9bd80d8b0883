package token

import (
	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/token"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (token.Provider, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPProvider(c.TokenURL, c.APIKey), nil
	})
}

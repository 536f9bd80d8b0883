package metrics

import (
	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/metrics"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (metrics.Recorder, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.MetricsAddr == "" {
			return metrics.Noop{}, nil
		}
		return NewPrometheusRecorder(), nil
	})
}

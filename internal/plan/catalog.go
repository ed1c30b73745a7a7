package plan

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Catalog resolves plan limits. Limits come from the built-in defaults,
// optionally overridden by a volume-mounted plans.yml that hot-reloads.
type Catalog struct {
	current atomic.Value // holds map[Plan]Limits
}

// NewCatalog loads plan limit overrides from plans.yml when present and
// watches the file for changes. Missing file means defaults.
func NewCatalog() (*Catalog, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kissa/config") // Volume-mounted config
	v.AddConfigPath("/etc/kissa")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("KISSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	catalog := &Catalog{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		catalog.current.Store(DefaultLimits())
		return catalog, nil
	}

	limits, err := loadLimits(v)
	if err != nil {
		return nil, err
	}
	catalog.current.Store(limits)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := loadLimits(v)
		if err != nil {
			log.Printf("[plan-catalog] invalid config ignored: %v", err)
			return
		}
		catalog.current.Store(updated)
		log.Printf("[plan-catalog] reloaded from %s", e.Name)
	})

	return catalog, nil
}

// NewStaticCatalog returns a catalog pinned to the built-in defaults.
func NewStaticCatalog() *Catalog {
	catalog := &Catalog{}
	catalog.current.Store(DefaultLimits())
	return catalog
}

// LimitsFor returns the caps for a plan. Unknown plans resolve to the free
// tier: no subscription behaves like free rather than unlimited.
func (c *Catalog) LimitsFor(p Plan) Limits {
	limits := c.current.Load().(map[Plan]Limits)
	if found, ok := limits[p]; ok {
		return found
	}
	return limits[Free]
}

func loadLimits(v *viper.Viper) (map[Plan]Limits, error) {
	var overrides map[string]Limits
	if err := v.UnmarshalKey("plans", &overrides); err != nil {
		return nil, err
	}

	limits := DefaultLimits()
	for name, override := range overrides {
		parsed, err := Parse(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		limits[parsed] = override
	}
	return limits, nil
}

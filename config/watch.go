package config

import (
	"log"
	"slices"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-decodes the config file whenever it is written and hands the new config
// to onChange. Invalid edits are logged and ignored; the previous config stays in force.
// The shape of a running grid cannot change, so a reload that changes it is logged and
// only its other sections are applied by the caller.
func Watch(vp *viper.Viper, current *Config, onChange func(*Config), logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	shape := current.HoneycombShape()

	vp.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(vp)
		if err != nil {
			logger.Printf("config: ignoring %s: %v", e.Name, err)
			return
		}
		if !slices.Equal(cfg.Shape, shape) {
			logger.Printf("config: shape change to [%v] needs a restart", cfg.HoneycombShape())
		}
		logger.Printf("config: reloaded %s", e.Name)
		onChange(cfg)
	})
	vp.WatchConfig()
}

package cmd

import (
	"context"
	"fmt"
	"log"

	"honeycomb/config"
	"honeycomb/hive"
	"honeycomb/layout"
	"honeycomb/relay"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadConfig(cmd *cobra.Command) (*config.Config, *viper.Viper, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, vp, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, vp, nil
}

// openRelay connects the configured relay. Redis relays default to a channel named
// after the shape, so processes rendering the same shape share taps.
func openRelay(ctx context.Context, cfg *config.Config, logger *log.Logger) (relay.Relay, error) {
	if cfg.Relay.Kind != "redis" {
		return relay.NewLocal(), nil
	}

	channel := cfg.Relay.Redis.Channel
	if channel == "" {
		channel = relay.ChannelName(cfg.HoneycombShape().String())
	}
	return relay.NewRedis(ctx, relay.RedisOptions{
		Addr:     cfg.Relay.Redis.Addr,
		Password: cfg.Relay.Redis.Password,
		DB:       cfg.Relay.Redis.DB,
		Channel:  channel,
		Source:   uuid.NewString(),
	}, logger)
}

// openHive builds the configured hive over a fresh relay. Closing the returned func
// tears both down.
func openHive(
	ctx context.Context,
	cfg *config.Config,
	fp layout.Footprint,
	logger *log.Logger,
) (*hive.Hive, func(), error) {
	events, err := openRelay(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	h, err := hive.New(cfg.HoneycombShape(), fp, cfg.Timing(), events, logger)
	if err != nil {
		_ = events.Close()
		return nil, nil, err
	}
	return h, func() {
		_ = h.Close()
		_ = events.Close()
	}, nil
}

// watchTiming applies ripple timing edits of the config file to the running hive.
func watchTiming(vp *viper.Viper, cfg *config.Config, h *hive.Hive, logger *log.Logger) {
	if vp.ConfigFileUsed() == "" {
		return
	}
	config.Watch(vp, cfg, func(next *config.Config) {
		if err := h.Scheduler().SetTiming(next.Timing()); err != nil {
			logger.Printf("config: %v", err)
		}
	}, logger)
}

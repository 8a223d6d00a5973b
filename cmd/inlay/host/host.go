// Package hostcmder provides the editor host engine cobra command.
//
// The host speaks newline-delimited JSON with an editor extension over
// stdin/stdout, so all logging goes to stderr.
package hostcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attribution/remote"
	"github.com/papercomputeco/inlay/pkg/config"
	"github.com/papercomputeco/inlay/pkg/controller"
	"github.com/papercomputeco/inlay/pkg/coordinator"
	"github.com/papercomputeco/inlay/pkg/editor/stdio"
	"github.com/papercomputeco/inlay/pkg/eventstream"
	"github.com/papercomputeco/inlay/pkg/eventstream/kafka"
	"github.com/papercomputeco/inlay/pkg/eventstream/nop"
	"github.com/papercomputeco/inlay/pkg/logger"
)

// ToggleCommand is the editor command that hides or restores annotations.
const ToggleCommand = "inlay.toggle"

type hostCommander struct {
	apiTarget       string
	watchPaths      []string
	prefetch        bool
	prefetchWorkers uint
	logFile         string
	eventsProvider  string
	eventsBrokers   []string
	eventsTopic     string
	debug           bool
	logger          *zap.Logger
	cli             *slog.Logger
}

var hostFlags = config.FlagSet{
	config.FlagAPITarget: {
		Name:        "api-target",
		Shorthand:   "t",
		ViperKey:    "client.api_target",
		Description: "Base URL of the attribution API server",
	},
	config.FlagWatchPaths: {
		Name:        "watch",
		Shorthand:   "w",
		ViperKey:    "host.watch_paths",
		Description: "Directories to watch for file saves (repeatable)",
	},
	config.FlagPrefetchWorkers: {
		Name:        "prefetch-workers",
		ViperKey:    "host.prefetch_workers",
		Description: "Number of background prefetch workers",
	},
	config.FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "host.log_file",
		Description: "File receiving a JSON copy of the host log",
	},
	config.FlagEventsProvider: {
		Name:        "events-provider",
		ViperKey:    "events.provider",
		Description: "Fetch telemetry publisher (nop, kafka)",
	},
	config.FlagEventsBrokers: {
		Name:        "events-brokers",
		ViperKey:    "events.brokers",
		Description: "Kafka broker addresses for the kafka events provider",
	},
	config.FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for fetch telemetry events",
	},
}

const hostLongDesc string = `Run the inlay editor host engine.

The host reads editor events (selections, saves, closes, hovers) as
newline-delimited JSON on stdin and writes annotation instructions to
stdout. It fetches per-line authorship from the attribution API, caches
results per document, and re-renders as the selection moves.

Connect it to an editor extension that forwards the editor's native
events; see "inlay serve" for the API server it queries.`

const hostShortDesc string = "Run the editor host engine over stdio"

func NewHostCmd() *cobra.Command {
	cmder := &hostCommander{}

	cmd := &cobra.Command{
		Use:   "host",
		Short: hostShortDesc,
		Long:  hostLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, hostFlags, []string{
				config.FlagAPITarget,
				config.FlagWatchPaths,
				config.FlagPrefetchWorkers,
				config.FlagLogFile,
				config.FlagEventsProvider,
				config.FlagEventsBrokers,
				config.FlagEventsTopic,
			})

			cmder.apiTarget = v.GetString("client.api_target")
			cmder.watchPaths = v.GetStringSlice("host.watch_paths")
			cmder.prefetch = v.GetBool("host.prefetch")
			cmder.prefetchWorkers = v.GetUint("host.prefetch_workers")
			cmder.logFile = v.GetString("host.log_file")
			cmder.eventsProvider = v.GetString("events.provider")
			cmder.eventsBrokers = v.GetStringSlice("events.brokers")
			cmder.eventsTopic = v.GetString("events.topic")

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, hostFlags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringSliceFlag(cmd, hostFlags, config.FlagWatchPaths, &cmder.watchPaths)
	config.AddUintFlag(cmd, hostFlags, config.FlagPrefetchWorkers, &cmder.prefetchWorkers)
	config.AddStringFlag(cmd, hostFlags, config.FlagLogFile, &cmder.logFile)
	config.AddStringFlag(cmd, hostFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringSliceFlag(cmd, hostFlags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, hostFlags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *hostCommander) run() error {
	// stdout belongs to the protocol; all logging goes to stderr. Lifecycle
	// messages use the pretty CLI logger, engine components log through zap.
	c.cli = logger.New(
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.cli = logger.Multi(c.cli, logger.New(
			logger.WithJSON(true),
			logger.WithDebug(c.debug),
			logger.WithWriter(f),
		))
	}

	c.logger = logger.NewLoggerWithWriters(c.debug, os.Stderr)
	defer c.logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}

	client := remote.NewClient(c.apiTarget)
	coord := coordinator.New(client,
		coordinator.WithLogger(c.logger),
		coordinator.WithPublisher(publisher),
	)
	defer coord.Close()

	host := stdio.NewHost(os.Stdin, os.Stdout, c.logger)

	if len(c.watchPaths) > 0 {
		if err := host.Watch(ctx, c.watchPaths...); err != nil {
			return fmt.Errorf("starting save watcher: %w", err)
		}
		c.cli.Info("watching for saves", "paths", c.watchPaths)
	}

	var ctrlOpts []controller.Option
	if c.prefetch {
		prefetcher, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{
			Coordinator: coord,
			NumWorkers:  c.prefetchWorkers,
			Logger:      c.logger,
		})
		if err != nil {
			return fmt.Errorf("starting prefetcher: %w", err)
		}
		defer prefetcher.Close()
		ctrlOpts = append(ctrlOpts, controller.WithPrefetcher(prefetcher))
	}

	ctrl := controller.New(host, coord, c.logger, ctrlOpts...)

	annotationsOn := true
	if err := host.RegisterCommand(ToggleCommand, func() {
		annotationsOn = !annotationsOn
		c.cli.Info("annotations toggled", "enabled", annotationsOn)
		if !annotationsOn {
			if err := host.ClearAnnotations(); err != nil {
				c.cli.Warn("clearing annotations on toggle", "error", err)
			}
		}
	}); err != nil {
		return fmt.Errorf("registering toggle command: %w", err)
	}

	c.cli.Info("host engine started",
		"api_target", c.apiTarget,
		"events_provider", c.eventsProvider,
	)

	errChan := make(chan error, 2)
	go func() {
		errChan <- ctrl.Run(ctx)
	}()
	go func() {
		// EOF on stdin means the editor went away.
		errChan <- host.Run(ctx)
	}()

	err = <-errChan
	stop()

	if err != nil && ctx.Err() == nil {
		return err
	}

	c.cli.Info("host engine stopped")
	return nil
}

func (c *hostCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.eventsProvider {
	case "kafka":
		if len(c.eventsBrokers) == 0 {
			return nil, fmt.Errorf("events.brokers is required for the kafka provider")
		}
		return kafka.NewPublisher(c.eventsBrokers, c.eventsTopic), nil

	case "nop", "":
		return nop.NewPublisher(), nil

	default:
		return nil, fmt.Errorf("unknown events provider %q (available: nop, kafka)", c.eventsProvider)
	}
}

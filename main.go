package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreybb/newsdash/api"
	"github.com/coreybb/newsdash/apiclient"
	"github.com/coreybb/newsdash/bus"
	"github.com/coreybb/newsdash/config"
	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/panels"
	rh "github.com/coreybb/newsdash/route-handlers"
	"github.com/coreybb/newsdash/version"
	"github.com/coreybb/newsdash/widgets"
)

const snapshotTimeout = 15 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (default $NEWSDASH_CONFIG or ./newsdash.yaml)")
		initConfig = flag.String("init", "", "Write the default config to this path and exit")
		snapshot   = flag.Bool("snapshot", false, "Print the three widgets to the terminal and exit")
	)
	flag.Parse()

	if *initConfig != "" {
		written, err := config.WriteDefault(*initConfig)
		if err != nil {
			log.Fatalf("Could not write default config: %v", err)
		}
		if written {
			log.Printf("INFO: Wrote default config to %s", *initConfig)
		} else {
			log.Printf("INFO: %s already exists, left untouched", *initConfig)
		}
		return
	}

	v := config.New(*configPath)
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.SlogLevel())
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	loc, _ := cfg.Location() // validated by Load
	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)

	if *snapshot {
		if err := printSnapshot(client, loc); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		return
	}

	log.Printf("INFO: newsdash %s (built %s), news API at %s", version.String(), version.BuildTime, cfg.API.BaseURL)

	events := bus.NewMemoryBus[message.Event](cfg.Events.Buffer)

	sourcesPanel := panels.NewSourcesPanel(client, events, widgets.SourcesContainerID)
	trendingTopics := panels.NewTrendingTopics(client, events, cfg.UI.TrendingContainer, loc, cfg.Trending.Interval)
	versionBadge := panels.NewVersionBadge(client, cfg.UI.VersionContainer, loc)

	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(next config.Config) {
			logLevel.Set(next.SlogLevel())
			if next.Trending.Interval != trendingTopics.Scheduler().Interval() {
				log.Printf("INFO: trending.interval changed to %s", next.Trending.Interval)
				trendingTopics.Scheduler().SetInterval(next.Trending.Interval)
			}
		})
	}

	widgetHandler := rh.NewWidgetHandler(sourcesPanel, trendingTopics, versionBadge, cfg.UI.Title, version.String())
	eventsHandler := rh.NewEventsHandler(events, trendingTopics)

	router := api.SetupRoutes(widgetHandler, eventsHandler, trendingTopics.Scheduler(), version.String())

	autoUpdate := trendingTopics.StartAutoUpdate(context.Background())

	startServer(cfg.Server.Port, cfg.Server.ShutdownTimeout, router)

	autoUpdate.Stop()
	// Closing the bus ends every open events socket.
	events.Close()
	log.Println("Trending updates stopped")
}

// printSnapshot fetches every widget once and writes the console rendering
// to stdout. Each widget degrades on its own, like the page does.
func printSnapshot(client *apiclient.Client, loc *time.Location) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	events := bus.NewMemoryBus[message.Event](1)
	defer events.Close()

	sourcesPanel := panels.NewSourcesPanel(client, events, "")
	trendingTopics := panels.NewTrendingTopics(client, events, "", loc, 0)
	versionBadge := panels.NewVersionBadge(client, "", loc)

	console := widgets.NewConsoleRenderer(loc)
	sources, sourcesErr := sourcesPanel.Load(ctx)

	var out bytes.Buffer
	out.WriteString(console.Dashboard(
		console.Sources(sources, sourcesErr),
		console.Trending(trendingTopics.Fetch(ctx)),
		console.Version(versionBadge.Info(ctx)),
	))
	out.WriteString("\n")

	if _, err := out.WriteTo(os.Stdout); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func startServer(port string, shutdownTimeout time.Duration, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}

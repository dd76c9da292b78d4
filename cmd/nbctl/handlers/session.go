// Package handlers implements the business logic behind the CLI commands.
//
// Each handler loads the configuration, connects to the inventory and runs
// one task. Dependencies are created through package level factory
// variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/inventory"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/platform/s3"
	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/ui"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Options carries the persistent flags shared by all commands.
type Options struct {
	ConfigPath string
	APIURL     string
	Token      string
	LogFormat  string
	Verbose    bool
	// Timeout overrides the per request timeout when positive.
	Timeout time.Duration
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newInventory = func(cfg *config.Config, log logr.Logger) (netbox.Inventory, error) {
		return netbox.NewRealClient(cfg.APIURL, cfg.Token, netbox.WithTimeouts(cfg.Timeouts), netbox.WithLogger(log))
	}

	newJournalArchive = func(ctx context.Context, j config.Journal) (provisioning.JournalSink, error) {
		client, err := s3.NewClient(ctx, j.Endpoint, j.Region, j.AccessKey, j.SecretKey)
		if err != nil {
			return nil, err
		}
		return s3.NewArchive(client, j.Bucket, j.Prefix), nil
	}

	newConfirmer = func() ui.Confirmer { return ui.NewFormConfirmer() }

	interactive = ui.Interactive

	stdout io.Writer = os.Stdout
)

// session holds what a single command run needs.
type session struct {
	cfg      *config.Config
	inv      netbox.Inventory
	log      logr.Logger
	observer provisioning.Observer
	metrics  *provisioning.Metrics
	journal  provisioning.JournalSink
}

func newSession(ctx context.Context, opts Options) (*session, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(config.Overrides{APIURL: opts.APIURL, Token: opts.Token})
	if cfg.Timeouts == nil {
		cfg.Timeouts = config.LoadTimeouts()
	}
	if opts.Timeout > 0 {
		cfg.Timeouts.Request = opts.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, observer, err := newLogging(opts.LogFormat, opts.Verbose)
	if err != nil {
		return nil, err
	}

	inv, err := newInventory(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory client: %w", err)
	}

	s := &session{
		cfg:      cfg,
		inv:      inv,
		log:      log,
		observer: observer,
		metrics:  provisioning.NewMetrics(),
	}

	var archive provisioning.JournalSink
	if cfg.Journal.Enabled() {
		archive, err = newJournalArchive(ctx, cfg.Journal)
		if err != nil {
			observer.Printf("journal archive disabled: %v", err)
			archive = nil
		}
	}
	if archive != nil || opts.Verbose {
		s.journal = &journalSink{log: log, archive: archive}
	}
	return s, nil
}

// newLogging builds the logger and observer for a log format. Text output
// goes through the console observer; the logr logger then only carries
// transport debug logs and is silent unless verbose is set.
func newLogging(format string, verbose bool) (logr.Logger, provisioning.Observer, error) {
	switch format {
	case "", LogFormatText:
		if !verbose {
			return logr.Discard(), provisioning.NewConsoleObserver(), nil
		}
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{"stderr"}
		zl, err := zcfg.Build()
		if err != nil {
			return logr.Logger{}, nil, fmt.Errorf("failed to create logger: %w", err)
		}
		return zapr.NewLogger(zl), provisioning.NewConsoleObserver(), nil
	case LogFormatJSON:
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		zl, err := zcfg.Build()
		if err != nil {
			return logr.Logger{}, nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log := zapr.NewLogger(zl)
		return log, provisioning.NewLogrObserver(log), nil
	}
	return logr.Logger{}, nil, fmt.Errorf("unknown log format %q, use %s or %s", format, LogFormatText, LogFormatJSON)
}

// provisioningContext wraps ctx for a transaction run.
func (s *session) provisioningContext(ctx context.Context) *provisioning.Context {
	pctx := provisioning.NewContext(ctx, s.cfg, s.inv)
	pctx.Observer = s.observer
	pctx.Metrics = s.metrics
	pctx.Journal = s.journal
	return pctx
}

func (s *session) manager() *inventory.Manager {
	return inventory.New(s.inv, s.observer)
}

// close pushes the collected metrics when a Pushgateway is configured.
// Push failures are only reported.
func (s *session) close(ctx context.Context) {
	if !s.cfg.Metrics.Enabled() {
		return
	}
	if err := s.metrics.Push(context.WithoutCancel(ctx), s.cfg.Metrics.PushgatewayURL, s.cfg.Metrics.Job); err != nil {
		s.observer.Printf("Warning: %v", err)
	}
}

// journalSink logs each journal at debug level and hands it to the archive
// when one is configured.
type journalSink struct {
	log     logr.Logger
	archive provisioning.JournalSink
}

func (j *journalSink) Store(ctx context.Context, id string, data []byte) (string, error) {
	j.log.V(1).Info("transaction journal", "transaction", id, "journal", string(data))
	if j.archive == nil {
		return "debug log", nil
	}
	return j.archive.Store(ctx, id, data)
}

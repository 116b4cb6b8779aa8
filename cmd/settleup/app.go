package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

var errUsage = errors.New("usage: settleup [flags] groups|plan|balance|analytics|import ...")

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfg      *config.Config
	out      io.Writer
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("settleup", flag.ContinueOnError)
	fs.StringVar(&cfg.DataBackend, "backend", cfg.DataBackend, "data backend: sqlite or snapshot")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "JSON snapshot path for the snapshot backend")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write Prometheus metrics to this file")
	fs.DurationVar(&cfg.QueryTimeout, "timeout", cfg.QueryTimeout, "timeout for each command")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if fs.NArg() == 0 {
		return errUsage
	}
	command, rest := fs.Arg(0), fs.Args()[1:]

	// import always writes to SQLite, whatever backend is selected
	if command == "import" {
		cfg.DataBackend = config.BackendSQLite
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()

	registry := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		out:      out,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	switch command {
	case "groups":
		return a.groups(ctx)
	case "plan":
		return a.plan(ctx, rest)
	case "balance":
		return a.balance(ctx, rest)
	case "analytics":
		return a.analytics(ctx, rest)
	case "import":
		return a.importSnapshot(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// openStore opens the configured backend.
func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.DataBackend {
	case config.BackendSnapshot:
		store, err := memory.LoadFile(ctx, a.cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		slog.Debug("Snapshot loaded", "path", a.cfg.SnapshotPath)
		return store, nil
	default:
		store, err := sqlite.New(a.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Debug("Storage initialized", "database", a.cfg.DBPath)
		return store, nil
	}
}

func (a *app) groups(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := service.NewGroupService(store).ListGroups(ctx)
	if err != nil {
		return err
	}
	return a.write(groups)
}

func (a *app) plan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	from := fs.String("from", "", "only expenses on or after this date (YYYY-MM-DD)")
	to := fs.String("to", "", "only expenses on or before this date (YYYY-MM-DD)")
	category := fs.String("category", "", "only expenses in this category")

	groupID, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	filter := storage.ExpenseFilter{}
	if filter.Start, filter.End, err = parseRange(*from, *to); err != nil {
		return err
	}
	if *category != "" {
		filter.Category = models.ParseCategory(*category)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := service.NewSettlementService(store, a.metrics).CalculateGroupSettlement(ctx, groupID, filter)
	a.flushMetrics()
	if err != nil {
		return err
	}
	return a.write(result)
}

func (a *app) balance(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: balance <group-id> <user-id>", errUsage)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := service.NewSettlementService(store, a.metrics).GetMemberBalance(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return a.write(result)
}

func (a *app) analytics(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: analytics <group-id> monthly|category", errUsage)
	}
	groupID, kind := args[0], args[1]

	fs := flag.NewFlagSet("analytics "+kind, flag.ContinueOnError)
	year := fs.Int("year", 0, "year to report (default: current year)")
	month := fs.Int("month", 0, "month to report, 1-12 (default: whole year)")
	from := fs.String("from", "", "range start (YYYY-MM-DD, default: first of this month)")
	to := fs.String("to", "", "range end (YYYY-MM-DD, default: now)")
	if err := fs.Parse(args[2:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewAnalyticsService(store)
	switch kind {
	case "monthly":
		report, err := svc.MonthlyAnalytics(ctx, groupID, *year, *month)
		if err != nil {
			return err
		}
		return a.write(report)
	case "category":
		start, end, err := parseRange(*from, *to)
		if err != nil {
			return err
		}
		report, err := svc.CategoryAnalytics(ctx, groupID, start, end)
		if err != nil {
			return err
		}
		return a.write(report)
	default:
		return fmt.Errorf("%w: unknown analytics report %q", errUsage, kind)
	}
}

func (a *app) importSnapshot(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import <snapshot.json>", errUsage)
	}
	slog.Info("Import request received", "snapshot", args[0], "database", a.cfg.DBPath)

	src, err := memory.LoadFile(ctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer dst.Close()

	var groups, expenses int
	err = dst.Import(ctx, func(im storage.Importer) error {
		var err error
		groups, expenses, err = storage.Copy(ctx, src, im)
		return err
	})
	if err != nil {
		slog.Error("Import failed, nothing written", "failed_at_group", groups+1, "error", err)
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	slog.Info("Import successful", "groups", groups, "expenses", expenses)
	return a.write(map[string]int{"groups": groups, "expenses": expenses})
}

// flushMetrics writes the registry to the configured textfile, if any.
func (a *app) flushMetrics() {
	if a.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsTextfile, a.registry); err != nil {
		slog.Warn("Failed to write metrics", "path", a.cfg.MetricsTextfile, "error", err)
	}
}

func (a *app) write(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseWithID parses args of the form "<id> [flags]".
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", fmt.Errorf("%w: %s <group-id> [flags]", errUsage, fs.Name())
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	return args[0], nil
}

// parseRange parses inclusive YYYY-MM-DD bounds in UTC. The end date covers
// the whole day. Empty strings give zero times.
func parseRange(from, to string) (start, end time.Time, err error) {
	if from != "" {
		if start, err = time.Parse(time.DateOnly, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid -from date: %v", errUsage, err)
		}
	}
	if to != "" {
		if end, err = time.Parse(time.DateOnly, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid -to date: %v", errUsage, err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

// Command planner is a developer tool for inspecting the personalization
// engine against a local database: compute the next workout's parameters,
// chart per-exercise progress, check comeback status, or run the whole user
// base in one batch.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/liftapp/liftapp/internal/adapt"
	"github.com/liftapp/liftapp/internal/envstruct"
	"github.com/liftapp/liftapp/internal/errors"
	"github.com/liftapp/liftapp/internal/logging"
	"github.com/liftapp/liftapp/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"LIFTAPP_SQLITE_URL" envDefault:"./liftapp.sqlite3"`
	// BatchConcurrency bounds how many users the batch subcommand processes in parallel.
	BatchConcurrency int `env:"LIFTAPP_BATCH_CONCURRENCY" envDefault:"8"`
}

const usage = `usage: planner <command> [flags]

commands:
  params    compute adaptive parameters for a user
  stats     per-exercise aggregates and a progress chart
  comeback  break classification and comeback adjustments
  calibrate print the calibration test plan
  batch     compute parameters for every user
`

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), args []string, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(err))
		}
	}()

	history := adapt.NewSQLiteHistoryStore(db)
	profiles := adapt.NewSQLiteProfileStore(db)
	svc := adapt.NewService(history, profiles, logger, time.Now)

	command := args[0]
	ctx = logging.WithAttrs(ctx, slog.String("command", command))
	switch command {
	case "params":
		return runParams(ctx, svc, args[1:], out)
	case "stats":
		return runStats(ctx, svc, history, args[1:], out)
	case "comeback":
		return runComeback(ctx, svc, args[1:], out)
	case "calibrate":
		return runCalibrate(ctx, svc, args[1:], out)
	case "batch":
		return runBatch(ctx, svc, profiles, cfg.BatchConcurrency, out)
	default:
		fmt.Fprint(out, usage)
		return errors.New("unknown command", slog.String("command", command))
	}
}

func runParams(ctx context.Context, svc *adapt.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	focus := fs.String("focus", "", "requested focus (blank derives it from goals)")
	feedback := fs.String("feedback", "", "last workout difficulty: too_easy, just_right, too_hard")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	if *userID == "" {
		return errors.New("missing -user flag")
	}

	ctx = logging.WithAttrs(ctx, slog.String("user_id", *userID))
	params, err := svc.PersonalizedParameters(ctx, adapt.ParameterRequest{
		UserID:         *userID,
		RequestedFocus: adapt.Focus(*focus),
		Feedback:       adapt.DifficultyFeedback(*feedback),
	})
	if err != nil {
		return errors.Wrap(err, "personalize parameters")
	}
	return printJSON(out, params)
}

func runStats(ctx context.Context, svc *adapt.Service, history *adapt.SQLiteHistoryStore, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	exercise := fs.String("exercise", "", "exercise name")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	if *userID == "" || *exercise == "" {
		return errors.New("missing -user or -exercise flag")
	}

	stats, err := svc.ExerciseStats(ctx, *userID, *exercise)
	if err != nil {
		return errors.Wrap(err, "compute exercise stats")
	}
	if err := printJSON(out, stats); err != nil {
		return err
	}
	if !stats.HasData {
		return nil
	}

	weights, err := weightSeries(ctx, history, *userID, *exercise)
	if err != nil {
		return err
	}
	if len(weights) >= 2 {
		graph := asciigraph.Plot(weights,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(1),
			asciigraph.Caption(fmt.Sprintf("%s weight per set, oldest to newest", *exercise)))
		fmt.Fprintln(out, graph)
	}
	return nil
}

func weightSeries(ctx context.Context, history *adapt.SQLiteHistoryStore, userID, exercise string) ([]float64, error) {
	const windowDays = 90
	logs, err := history.RecentLogs(ctx, userID, time.Now().AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, errors.Wrap(err, "fetch logs for chart")
	}
	var weights []float64
	for _, entry := range logs {
		if entry.ExerciseName == exercise {
			weights = append(weights, entry.WeightKg)
		}
	}
	return weights, nil
}

func runComeback(ctx context.Context, svc *adapt.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("comeback", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	if *userID == "" {
		return errors.New("missing -user flag")
	}

	status, err := svc.CheckComebackStatus(ctx, *userID)
	if err != nil {
		return errors.Wrap(err, "check comeback status")
	}
	return printJSON(out, status)
}

func runCalibrate(ctx context.Context, svc *adapt.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	if *userID == "" {
		return errors.New("missing -user flag")
	}

	plan, err := svc.PlanCalibration(ctx, *userID)
	if err != nil {
		return errors.Wrap(err, "plan calibration")
	}
	return printJSON(out, plan)
}

// batchResult pairs a user with their computed parameters for batch output.
type batchResult struct {
	UserID     string                   `json:"user_id"`
	Parameters adapt.AdaptiveParameters `json:"parameters"`
}

func runBatch(ctx context.Context, svc *adapt.Service, profiles *adapt.SQLiteProfileStore, concurrency int, out io.Writer) error {
	ids, err := profiles.UserIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "list users")
	}

	results := make([]batchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			uctx := logging.WithAttrs(gctx, slog.String("user_id", id))
			params, err := svc.PersonalizedParameters(uctx, adapt.ParameterRequest{UserID: id})
			if err != nil {
				return errors.Wrap(err, "personalize parameters", slog.String("user_id", id))
			}
			results[i] = batchResult{UserID: id, Parameters: params}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "batch personalization")
	}
	return printJSON(out, results)
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "encode output")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv, os.Args[1:], os.Stdout); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "planner failed", errors.SlogError(err))
		os.Exit(1)
	}
}

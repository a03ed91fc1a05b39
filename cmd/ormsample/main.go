// Command ormsample runs the same sample queries through sqlx and gorm
// against the AdventureWorks sample database and prints the results.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/config"
	"github.com/coderi421/ormsample/middleware/accesslog"
	"github.com/coderi421/ormsample/middleware/errhdl"
	"github.com/coderi421/ormsample/middleware/opentelemetry"
	"github.com/coderi421/ormsample/middleware/prometheus"
	"github.com/coderi421/ormsample/middleware/recover"
	"github.com/coderi421/ormsample/sampledb"
	"github.com/coderi421/ormsample/samples/gormsample"
	"github.com/coderi421/ormsample/samples/sqlxsample"
	"github.com/coderi421/ormsample/state"
	"github.com/coderi421/ormsample/state/memory"
	redisstore "github.com/coderi421/ormsample/state/redis"
	"github.com/coderi421/ormsample/telemetry"
	promclient "github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	tp, err := telemetry.NewTracerProvider(cfg.Tracing)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	if cfg.Metrics.Addr != "" {
		ms, err := telemetry.ServeMetrics(cfg.Metrics.Addr, promclient.DefaultGatherer)
		if err != nil {
			return err
		}
		defer func() {
			_ = ms.Shutdown(context.Background())
		}()
		logger.Info("metrics listening", zap.String("addr", ms.Addr()))
	}

	db, err := sampledb.Open(ctx, cfg.Driver, cfg.DSN(), sampledb.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	if err = db.Seed(ctx); err != nil {
		return err
	}

	samples, err := newSamples(cfg.Samples, db, logger)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	return r.Run(ctx, samples...)
}

// loadConfig 命令行参数的优先级最高，只覆盖显式传入的参数
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("ormsample", flag.ContinueOnError)
	path := fs.String("config", "", "path of the YAML configuration file")
	driver := fs.String("driver", "", "database driver: sqlite3 or mysql")
	dsn := fs.String("dsn", "", "connection string of the AdventureWorks database")
	names := fs.String("samples", "", "comma separated samplers to run, e.g. sqlx,gorm")
	pause := fs.Bool("pause", false, "wait for Enter between two samplers")
	level := fs.String("log-level", "", "debug, info, warn or error")
	metricsAddr := fs.String("metrics-addr", "", "address to serve /metrics on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = *driver
		case "dsn":
			cfg.SetDSN(*dsn)
		case "samples":
			cfg.Samples = config.SplitSamples(*names)
		case "pause":
			cfg.Pause = *pause
		case "log-level":
			cfg.Log.Level = *level
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		}
	})
	return cfg, cfg.Validate()
}

func newSamples(names []string, db *sampledb.DB, logger *zap.Logger) ([]ormsample.Sample, error) {
	res := make([]ormsample.Sample, 0, len(names))
	for _, name := range names {
		switch name {
		case "sqlx":
			res = append(res, sqlxsample.New(db, sqlxsample.WithLogger(logger)))
		case "gorm":
			s, err := gormsample.New(db, gormsample.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			res = append(res, s)
		default:
			return nil, fmt.Errorf("%w: unknown sample %q", config.ErrInvalidConfig, name)
		}
	}
	return res, nil
}

func newStore(cfg config.StateConfig) state.Store {
	if cfg.Store == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return redisstore.NewStore(client, redisstore.WithExpiration(cfg.Expiration))
	}
	return memory.NewStore(cfg.Expiration)
}

func newRunner(cfg *config.Config, logger *zap.Logger) (*ormsample.Runner, error) {
	tag, err := cfg.LanguageTag()
	if err != nil {
		return nil, err
	}
	unit, err := cfg.CurrencyUnit()
	if err != nil {
		return nil, err
	}

	mgr := &state.Manager{Store: newStore(cfg.State), SessCtxKey: "_state"}
	opts := []ormsample.RunnerOption{
		ormsample.WithLanguage(tag),
		ormsample.WithCurrency(unit),
		ormsample.WithRunnerLogger(logger),
		ormsample.WithAfterSample(mgr.AfterSample),
		// 先注册的在外层：链路最先开始，recover 紧挨着步骤
		ormsample.WithMiddlewares(
			(&opentelemetry.MiddlewareBuilder{}).Build(),
			prometheus.MiddlewareBuilder{
				Namespace: "ormsample",
				Subsystem: "runner",
				Name:      "step_duration_ms",
				Help:      "sample step duration in milliseconds",
			}.Build(),
			accesslog.NewBuilder().LogFunc(accesslog.ZapLogFunc(logger)).Build(),
			errhdl.NewMiddlewareBuilder().
				AddError(ormsample.ErrNoLocation, "Skipped: no location was inserted in this run.").
				AddError(sampledb.ErrUnknownProcedure, "Skipped: the database has no such procedure.").
				Build(),
			mgr.Middleware(),
			(&recover.MiddlewareBuilder{
				LogFunc: func(ctx *ormsample.Context, err any) {
					logger.Error("step panicked", zap.String("sample", ctx.Sample),
						zap.String("step", ctx.Step), zap.Any("panic", err))
				},
			}).Build(),
		),
	}
	if cfg.Pause {
		opts = append(opts, ormsample.WithPause(pauseOnEnter(os.Stdin, os.Stdout)))
	}
	return ormsample.NewRunner(opts...), nil
}

// pauseOnEnter 和原来的程序一样，两个 sampler 之间等用户按回车
func pauseOnEnter(in io.Reader, out io.Writer) func(ctx context.Context, next ormsample.Sample) error {
	r := bufio.NewReader(in)
	return func(ctx context.Context, next ormsample.Sample) error {
		_, _ = fmt.Fprintf(out, "Press Enter to run the %s samples...\n", next.Name())
		_, err := r.ReadString('\n')
		// 输入已经关闭就不再等待
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}

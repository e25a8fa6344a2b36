package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mercaplaza/mercaplaza/internal/accounts"
	"github.com/mercaplaza/mercaplaza/internal/applications"
	"github.com/mercaplaza/mercaplaza/internal/cart"
	"github.com/mercaplaza/mercaplaza/internal/catalog"
	"github.com/mercaplaza/mercaplaza/internal/checkout"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/internal/identity"
	"github.com/mercaplaza/mercaplaza/internal/orders"
	"github.com/mercaplaza/mercaplaza/internal/reviews"
	"github.com/mercaplaza/mercaplaza/internal/seed"
	"github.com/mercaplaza/mercaplaza/pkg/config"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

const usage = `usage: marketctl <command> [flags]

commands:
  seed      reset the document to the demo dataset
  reset     alias for seed
  demo      run a scripted marketplace walkthrough
  export    write the current document snapshot (-out file, default stdout)
  import    replace the document with a snapshot (-in file)
`

// app bundles the wired services for the subcommands.
type app struct {
	cfg      *config.Config
	logg     *logger.Logger
	docs     document.DB
	sessions *identity.SessionManager

	identity     identity.Service
	catalog      catalog.Service
	cart         cart.Service
	checkout     checkout.Service
	orders       orders.Service
	reviews      reviews.Service
	applications applications.Service
	accounts     accounts.Service
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "marketctl"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "marketctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a, err := newApp(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap services", err)
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed", "reset":
		err = a.runReset(ctx)
	case "demo":
		err = a.runDemo(ctx)
	case "export":
		err = a.runExport(ctx, args)
	case "import":
		err = a.runImport(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		ctx = logg.WithOperation(ctx, command)
		ctx = logg.WithField(ctx, "error_dump", pkgerrors.Dump(err))
		logg.Error(ctx, "command failed", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logg *logger.Logger) (*app, error) {
	backend, err := newBackend(cfg.Document)
	if err != nil {
		return nil, fmt.Errorf("bootstrap backend: %w", err)
	}

	docs, err := document.NewDB(backend, seed.New(cfg.Seed, cfg.Password), logg)
	if err != nil {
		return nil, err
	}
	sessions, err := identity.NewSessionManager(backend)
	if err != nil {
		return nil, err
	}

	identitySvc, err := identity.NewService(docs, sessions, cfg.Session, cfg.Password, logg)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := catalog.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	cartSvc, err := cart.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	reviewsSvc, err := reviews.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	applicationsSvc, err := applications.NewService(docs, logg)
	if err != nil {
		return nil, err
	}
	accountsSvc, err := accounts.NewService(docs, cfg.Password, logg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logg:         logg,
		docs:         docs,
		sessions:     sessions,
		identity:     identitySvc,
		catalog:      catalogSvc,
		cart:         cartSvc,
		checkout:     checkoutSvc,
		orders:       ordersSvc,
		reviews:      reviewsSvc,
		applications: applicationsSvc,
		accounts:     accountsSvc,
	}, nil
}

func newBackend(cfg config.DocumentConfig) (document.Backend, error) {
	switch cfg.StoreDriver() {
	case enums.StoreDriverMemory:
		return document.NewMemoryBackend(), nil
	case enums.StoreDriverFile:
		return document.NewFileBackend(cfg.Path)
	case enums.StoreDriverSQLite:
		return document.NewSQLiteBackend(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown document driver %q", cfg.Driver)
	}
}

func (a *app) runReset(ctx context.Context) error {
	if err := a.docs.Reset(ctx); err != nil {
		return err
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.logg.Info(ctx, "document reset to demo dataset")
	return nil
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "destination file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snapshot, err := a.docs.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(snapshot)
		return err
	}
	if err := os.WriteFile(*out, snapshot, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	a.logg.Info(a.logg.WithField(ctx, "path", *out), "snapshot exported")
	return nil
}

func (a *app) runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "snapshot file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("import requires -in <file>")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := a.docs.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	a.logg.Info(a.logg.WithField(ctx, "path", *in), "snapshot imported")
	return nil
}

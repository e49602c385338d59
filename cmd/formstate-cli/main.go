package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formdoc"
	pkgopenapi "github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/sanitize"
)

// errInvalidForm is returned when the final form does not validate.
var errInvalidForm = errors.New("form is invalid")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	err = run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr, nil)
	switch {
	case err == nil:
	case errors.Is(err, errInvalidForm):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Fatalf("formstate: %v", err)
	}
}

// run parses args over the loaded defaults, builds the form and writes the
// validation report. driver is only used with -interactive; nil selects the
// survey terminal driver.
func run(ctx context.Context, defaults config.Config, args []string, stdout, stderr io.Writer, driver prompt.Driver) error {
	cfg, err := parseFlags(defaults, args, stderr)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	tree, err := buildTree(ctx, cfg)
	if err != nil {
		return err
	}
	engine := form.New(tree, form.WithLogger(logger))

	if cfg.Hydrate != "" {
		values, err := formdoc.LoadFile(cfg.Hydrate, predicates()...)
		if err != nil {
			return err
		}
		engine.Hydrate(values)
	}

	if cfg.Apply != "" {
		entity, err := formdoc.LoadEntityFile(cfg.Apply, predicates()...)
		if err != nil {
			return err
		}
		if _, err := engine.UpdateAll(sanitize.Entity(entity)); err != nil {
			return fmt.Errorf("apply %s: %w", cfg.Apply, err)
		}
	}

	if cfg.Interactive {
		if driver == nil {
			driver = prompt.NewSurveyDriver(stderr)
		}
		filler := prompt.NewFiller(prompt.WithDriver(driver), prompt.WithLogger(logger))
		if _, err := filler.Fill(ctx, engine); err != nil {
			return err
		}
	}

	result, valid, err := engine.Value()
	if err != nil {
		return err
	}
	report, err := formdoc.MarshalReport(result, valid)
	if err != nil {
		return err
	}
	logger.Info("form evaluated", slog.Bool("valid", valid), slog.Int("fields", len(result)))

	if err := writeReport(cfg.Output, report, stdout); err != nil {
		return err
	}
	if !valid {
		return errInvalidForm
	}
	return nil
}

func parseFlags(cfg config.Config, args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("formstate-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Form, "form", cfg.Form, "form document (JSON or YAML)")
	fs.StringVar(&cfg.OpenAPI, "openapi", cfg.OpenAPI, "OpenAPI document path or URL")
	fs.StringVar(&cfg.Operation, "operation", cfg.Operation, "operation ID whose request body becomes the form")
	fs.StringVar(&cfg.Hydrate, "hydrate", cfg.Hydrate, "form document to hydrate values and validators from")
	fs.StringVar(&cfg.Apply, "apply", cfg.Apply, "update document applied after hydration")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "report file (stdout if empty)")
	fs.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "prompt for every field")
	fs.IntVar(&cfg.GroupSeed, "group-seed", cfg.GroupSeed, "elements created for each OpenAPI array")
	fs.BoolVar(&cfg.AllowHTTP, "allow-http", cfg.AllowHTTP, "allow fetching OpenAPI documents over HTTP")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout for remote OpenAPI documents")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(
		logging.WithLevel(level),
		logging.WithFormat(format),
		logging.WithOutput(out),
		logging.WithAttr(slog.String("service", "formstate-cli")),
	), nil
}

func buildTree(ctx context.Context, cfg config.Config) (form.Tree, error) {
	if cfg.Form != "" {
		return formdoc.LoadFile(cfg.Form, predicates()...)
	}

	src, err := parseSource(cfg.OpenAPI)
	if err != nil {
		return nil, err
	}
	var loaderOpts []pkgopenapi.LoaderOption
	if cfg.AllowHTTP {
		loaderOpts = append(loaderOpts, pkgopenapi.WithHTTPFallback(cfg.HTTPTimeout))
	}
	return formstate.TreeFromOpenAPI(ctx, formstate.OpenAPIRequest{
		Source:      src,
		OperationID: cfg.Operation,
		Loader:      formstate.NewLoader(loaderOpts...),
		Build:       []pkgopenapi.BuildOption{pkgopenapi.WithGroupSeed(cfg.GroupSeed)},
	})
}

func parseSource(raw string) (pkgopenapi.Source, error) {
	path := strings.TrimSpace(raw)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgopenapi.ParseURLSource(path)
	}
	return pkgopenapi.SourceFromFile(path), nil
}

// predicates are the named checks form documents can reference.
func predicates() []formdoc.Option {
	return []formdoc.Option{
		formdoc.WithPredicate("nonBlank", func(value any) bool {
			s, ok := value.(string)
			return ok && strings.TrimSpace(s) != ""
		}),
		formdoc.WithPredicate("accepted", func(value any) bool {
			b, ok := value.(bool)
			return ok && b
		}),
	}
}

func writeReport(path string, report []byte, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, string(report))
		return err
	}
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Sumatoshi-tech/scopemap/pkg/annotate"
	"github.com/Sumatoshi-tech/scopemap/pkg/config"
	"github.com/Sumatoshi-tech/scopemap/pkg/grammar"
	"github.com/Sumatoshi-tech/scopemap/pkg/grammar/builtin"
	"github.com/Sumatoshi-tech/scopemap/pkg/levenshtein"
	"github.com/Sumatoshi-tech/scopemap/pkg/observability"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
	"github.com/Sumatoshi-tech/scopemap/pkg/version"
)

// ErrUnknownGrammar is returned when a grammar reference is neither a grammar file nor a
// registered scope name.
var ErrUnknownGrammar = errors.New("unknown grammar")

// app holds the state shared by all commands of one invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	builds    *observability.BuildMetrics
	annotates *observability.AnnotateMetrics
	shutdown  func(ctx context.Context) error

	registry     *grammar.Registry
	registryErr  error
	registryOnce sync.Once

	cfgFile         string
	metricsTextfile string
	verbose         bool
	quiet           bool
	noColor         bool
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}

	a.cfg = cfg

	obsCfg, err := a.observabilityConfig()
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.shutdown = providers.Shutdown
	a.logger = providers.Logger

	a.builds, err = observability.NewBuildMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, a.teardown(ctx))
	}

	a.annotates, err = observability.NewAnnotateMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, a.teardown(ctx))
	}

	return nil
}

func (a *app) observabilityConfig() (observability.Config, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = a.cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = a.cfg.Observability.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(a.cfg.Observability.OTLPHeaders)
	obsCfg.SampleRatio = a.cfg.Observability.SampleRatio
	obsCfg.ShutdownTimeoutSec = a.cfg.Observability.ShutdownTimeoutSec
	obsCfg.MetricsTextfile = a.cfg.Observability.MetricsTextfile
	obsCfg.LogJSON = a.cfg.Logging.Format == "json"

	if a.metricsTextfile != "" {
		obsCfg.MetricsTextfile = a.metricsTextfile
	}

	err := obsCfg.LogLevel.UnmarshalText([]byte(a.cfg.Logging.Level))
	if err != nil {
		return obsCfg, fmt.Errorf("parse log level: %w", err)
	}

	switch {
	case a.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case a.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg, nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}

	shutdown := a.shutdown
	a.shutdown = nil

	return shutdown(ctx)
}

// scopemapOptions are passed to every grammar compilation.
func (a *app) scopemapOptions() []scopemap.Option {
	return []scopemap.Option{
		scopemap.WithObserver(a.builds),
		scopemap.WithLogger(a.logger),
	}
}

// grammars loads the builtin grammars and the configured directories once.
func (a *app) grammars() (*grammar.Registry, error) {
	a.registryOnce.Do(func() {
		reg := grammar.NewRegistry()
		opts := a.scopemapOptions()

		if a.cfg.Grammars.Builtin {
			_, err := reg.LoadFS(builtin.FS, builtin.Root, opts...)
			if err != nil {
				a.registryErr = err

				return
			}
		}

		for _, dir := range a.cfg.Grammars.Dirs {
			added, err := reg.LoadDir(dir, opts...)
			if err != nil {
				a.registryErr = err

				return
			}

			a.logger.Debug("loaded grammar directory", slog.String("dir", dir), slog.Int("grammars", added))
		}

		a.registry = reg
	})

	return a.registry, a.registryErr
}

// grammar resolves ref as a grammar file path when it names an existing file with a grammar
// extension, and as a registered scope name otherwise.
func (a *app) grammar(ref string) (*grammar.Grammar, error) {
	if _, formatErr := grammar.FormatOf(ref); formatErr == nil {
		if _, statErr := os.Stat(ref); statErr == nil {
			return grammar.LoadFile(ref, a.scopemapOptions()...)
		}
	}

	reg, err := a.grammars()
	if err != nil {
		return nil, err
	}

	g, ok := reg.ByScopeName(ref)
	if !ok {
		return nil, unknownGrammar(reg, ref)
	}

	return g, nil
}

// grammarFor picks the grammar for a source file: ref when given, then detection by path and
// content, then the configured default.
func (a *app) grammarFor(ref, path string, content []byte) (*grammar.Grammar, error) {
	if ref != "" {
		return a.grammar(ref)
	}

	reg, err := a.grammars()
	if err != nil {
		return nil, err
	}

	g, err := reg.ForPath(path, content)
	if errors.Is(err, grammar.ErrNoGrammar) && a.cfg.Grammars.Default != "" {
		return a.grammar(a.cfg.Grammars.Default)
	}

	return g, err
}

func (a *app) annotator(g *grammar.Grammar) (*annotate.Annotator, error) {
	return annotate.New(g,
		annotate.WithRecorder(a.annotates),
		annotate.WithLogger(a.logger),
	)
}

// maxSuggestDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestDistance = 3

func unknownGrammar(reg *grammar.Registry, ref string) error {
	grammars := reg.Grammars()
	names := make([]string, len(grammars))

	for idx, g := range grammars {
		names[idx] = g.ScopeName
	}

	if suggestion, ok := levenshtein.Closest(ref, names, maxSuggestDistance); ok {
		return fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownGrammar, ref, suggestion)
	}

	return fmt.Errorf("%w: %s", ErrUnknownGrammar, ref)
}

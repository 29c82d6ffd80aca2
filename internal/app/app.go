// Package app wires the indexing pipeline together: watch-set resolution,
// the admission gate, the parser, the bbolt sink and metrics. It provides
// lifecycle management for the watcher: create, run, close.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/corey/codetrail/internal/adapters/bbolt"
	fsw "github.com/corey/codetrail/internal/adapters/fsnotify"
	"github.com/corey/codetrail/internal/adapters/gitignore"
	"github.com/corey/codetrail/internal/adapters/prom"
	"github.com/corey/codetrail/internal/adapters/socket"
	"github.com/corey/codetrail/internal/adapters/web"
	"github.com/corey/codetrail/internal/config"
	"github.com/corey/codetrail/internal/domain/events"
	"github.com/corey/codetrail/internal/domain/gate"
	"github.com/corey/codetrail/internal/ports"
	"github.com/corey/codetrail/pkg/logger"
)

// sourceBuffer is the backend event buffer size.
const sourceBuffer = 4096

var errNoStore = errors.New("watcher has no local store")

// builtinIgnores are always excluded, ahead of the project's own rules.
var builtinIgnores = []string{".git/", ".codetrail/"}

// Config holds initialization parameters for the App.
type Config struct {
	Settings *config.Config
	Parser   ports.Parser
	Logger   logger.Logger       // optional: nop when nil
	Source   ports.EventSource   // optional: fsnotify when nil
	Sink     ports.Sink          // optional: bbolt store at Settings.StorePath() when nil
	Clock    clock.Clock         // optional: wall clock when nil
	Ignore   ports.IgnoreMatcher // optional: root .gitignore/.ignore plus Settings.Ignore when nil
}

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	ProjectID   string

	Store      *bbolt.Store // nil when a Sink was supplied
	Source     ports.EventSource
	Metrics    *prom.Metrics
	Dispatcher *Dispatcher
	Control    *socket.Server // nil when Settings.Socket is off
	HTTP       *web.Server    // nil when Settings.Metrics.Addr is empty

	settings  *config.Config
	log       logger.Logger
	languages []string
}

// New creates an App with all dependencies wired. Does not start watching.
func New(cfg Config) (*App, error) {
	s := cfg.Settings
	if s == nil || s.Root == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.Parser == nil {
		return nil, fmt.Errorf("parser required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	ignore := cfg.Ignore
	if ignore == nil {
		lines := append(append([]string{}, builtinIgnores...), s.Ignore...)
		m, err := gitignore.New(root, lines, log)
		if err != nil {
			return nil, fmt.Errorf("load ignore rules: %w", err)
		}
		ignore = m
	}

	ws, err := ResolveWatchSet(WatchTarget{Root: root, Files: s.Files, Dirs: s.Dirs}, ignore)
	if err != nil {
		return nil, err
	}

	a := &App{
		ProjectRoot: root,
		ProjectID:   filepath.Base(root),
		Metrics:     prom.New(),
		settings:    s,
		log:         log,
	}

	sink := cfg.Sink
	if sink == nil {
		if err := os.MkdirAll(filepath.Dir(s.StorePath()), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		store, err := bbolt.NewStore(s.StorePath())
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Store = store
		sink = store.Sink(a.ProjectID)
	}

	a.Source = cfg.Source
	if a.Source == nil {
		src, err := fsw.NewSource(sourceBuffer)
		if err != nil {
			a.closeStore()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.Source = src
	}

	deb := gate.NewDebouncer(time.Duration(s.Debounce), cfg.Clock)
	decider := gate.NewDecider(ignore, gate.NewExtensionFilter(s.Extensions, s.FoldCase), deb)

	if l, ok := cfg.Parser.(interface{ Languages() []string }); ok {
		a.languages = l.Languages()
	}
	if s.Socket {
		a.Control = socket.NewServer(socket.SocketPath(root), root, a, log)
	}
	if s.Metrics.Addr != "" {
		a.HTTP = web.NewServer(a, a.Metrics.Handler(), root)
	}

	a.Dispatcher = NewDispatcher(Options{
		Source:  a.Source,
		Watch:   ws,
		Decider: decider,
		Parser:  cfg.Parser,
		Sink:    sink,
		Metrics: a.Metrics,
		Logger:  log,
	})
	return a, nil
}

// Run registers the watch set, performs the initial scan when configured,
// then processes changes until ctx is done, a client requests shutdown or
// the backend fails. The HTTP server and the control socket, when
// configured, run alongside and stop with it.
func (a *App) Run(ctx context.Context) error {
	if a.Control != nil {
		if err := a.Control.Start(); err != nil {
			return fmt.Errorf("control socket: %w", err)
		}
		defer a.Control.Stop()
	}
	if a.HTTP != nil {
		if err := a.HTTP.Start(a.settings.Metrics.Addr); err != nil {
			return fmt.Errorf("http: %w", err)
		}
		defer a.HTTP.Stop()
		a.log.Info("metrics and API listening on %s", a.HTTP.Addr())
	}
	if err := a.Dispatcher.Start(); err != nil {
		return err
	}
	if a.settings.InitialScan {
		if _, err := a.Dispatcher.Scan(ctx); err != nil {
			return nil // cancelled mid-scan
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return a.Dispatcher.Run(runCtx)
	})
	if a.Control != nil {
		g.Go(func() error {
			select {
			case <-a.Control.ShutdownCh():
				a.log.Info("shutdown requested over %s", a.Control.Addr())
				stop()
			case <-runCtx.Done():
			}
			return nil
		})
	}
	return g.Wait()
}

// Status implements socket.Queries.
func (a *App) Status() socket.StatusResult {
	return socket.StatusResult{
		Root:        a.ProjectRoot,
		Indexed:     a.Dispatcher.Indexed(),
		WatchedDirs: a.Dispatcher.WatchedDirs(),
		Languages:   a.languages,
		Debounce:    a.Dispatcher.Debounce().String(),
	}
}

// IndexedPaths implements socket.Queries.
func (a *App) IndexedPaths() ([]string, error) {
	if a.Store == nil {
		return nil, errNoStore
	}
	return a.Store.Paths(a.ProjectID)
}

// Lookup implements socket.Queries.
func (a *App) Lookup(path string) (*events.FileEvents, error) {
	if a.Store == nil {
		return nil, errNoStore
	}
	return a.Store.Get(a.ProjectID, path)
}

// Close releases the backend and the store.
func (a *App) Close() error {
	var firstErr error
	if a.Source != nil {
		if err := a.Source.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.closeStore(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *App) closeStore() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

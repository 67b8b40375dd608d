package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/config"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/recipe"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/source"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

// session is one dataset built into a graph with a recipe applied.
type session struct {
	state   *graph.State
	stats   graph.BuildStats
	recipe  recipe.Recipe
	filters graph.Filters
	overlay graph.Overlay
}

// loadDataset reads path in the --input-format format, or the one its
// extension implies.
func (a *app) loadDataset(ctx context.Context, path string) (source.Dataset, error) {
	var (
		format source.Format
		err    error
	)
	if a.sourceFormat != "" {
		format, err = source.ParseFormat(a.sourceFormat)
	} else {
		format, err = source.DetectFormat(path)
	}
	if err != nil {
		return source.Dataset{}, withCode(ExitDataError, err)
	}
	ds, err := source.Load(ctx, path, format)
	if err != nil {
		return source.Dataset{}, withCode(ExitDataError, err)
	}
	a.logger.Debug("source loaded", "path", path, "format", format,
		"persons", len(ds.Persons), "publications", len(ds.Publications))
	return ds, nil
}

// loadRecipes returns the builtin recipes plus those in the recipe dir.
func (a *app) loadRecipes() (*recipe.Loader, error) {
	l := recipe.NewLoader()
	if dir := a.cfg.RecipesDir(); dir != "" {
		if err := l.LoadDir(dir); err != nil {
			return nil, withCode(ExitConfigError, err)
		}
	}
	return l, nil
}

// resolveRecipe looks up name, or the default recipe when name is empty.
func resolveRecipe(l *recipe.Loader, name string) (recipe.Recipe, error) {
	if name == "" {
		name = recipe.DefaultRecipe().Name
	}
	r, err := l.Get(name)
	if err != nil {
		return recipe.Recipe{}, withCode(ExitConfigError,
			fmt.Errorf("%w (available: %s)", err, strings.Join(l.Names(), ", ")))
	}
	return r, nil
}

// openSession loads path and applies the --recipe recipe.
func (a *app) openSession(ctx context.Context, path string) (*session, error) {
	l, err := a.loadRecipes()
	if err != nil {
		return nil, err
	}
	r, err := resolveRecipe(l, a.recipeName)
	if err != nil {
		return nil, err
	}
	ds, err := a.loadDataset(ctx, path)
	if err != nil {
		return nil, err
	}
	return newSession(ds, r, a.now(), a.logger)
}

func newSession(ds source.Dataset, r recipe.Recipe, now time.Time, logger *slog.Logger) (*session, error) {
	filters, err := r.Compile(now)
	if err != nil {
		return nil, withCode(ExitConfigError, fmt.Errorf("recipe %s: %w", r.Name, err))
	}
	state, stats := graph.Build(ds.OriginalAuthors, ds.Publications, ds.People())
	state.Options = r.View.Apply(graph.DefaultOptions())
	s := &session{
		state:   state,
		stats:   stats,
		recipe:  r,
		filters: filters,
		overlay: graph.ComputeOverlay(state, filters),
	}
	logger.Info("graph built",
		"recipe", r.Name,
		"publications", stats.Publications,
		"skipped", stats.Skipped,
		"authors", stats.Nodes,
		"links", stats.Links)
	return s, nil
}

// layout runs one layout of the drawn nodes to completion and binds the
// result into the session's graph.
func (s *session) layout(ctx context.Context, w layout.Worker, onProgress func(float64)) error {
	req := layout.NewRequest(s.state, s.overlay, layout.GraphWidth, layout.GraphHeight)
	s.state.Unbind()
	done, err := layout.Collect(ctx, w.Run(ctx, req), onProgress)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return layout.Apply(s.state, done)
}

// drawnNodes returns the nodes the overlay draws.
func (s *session) drawnNodes() []*graph.Node {
	var out []*graph.Node
	for _, n := range s.state.Nodes {
		if s.overlay.Node(n.Index).Drawn(s.overlay.JustDim) {
			out = append(out, n)
		}
	}
	return out
}

// frame plans a picture of the laid out graph fitted to the configured
// canvas.
func (s *session) frame(cfg config.Config, title string) render.Frame {
	ctrl := zoom.NewController(cfg.Viewport(), cfg.Zoom)
	ctrl.OnLayout(s.drawnNodes())
	opts := cfg.RenderOptions()
	opts.Title = title
	return render.Plan(s.state, s.overlay, ctrl.Transform(), ctrl.Viewport(), opts)
}

// worker returns the layout worker: in-process by default, or a child
// process running 'coauthors worker'.
func (a *app) worker(process bool) (layout.Worker, error) {
	if !process {
		return layout.LocalWorker{Config: a.cfg.Layout, Logger: a.logger}, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	return layout.ProcessWorker{Path: exe, Args: a.workerArgs(), Logger: a.logger, Stderr: a.logOut}, nil
}

// workerArgs passes the config file and log settings on, so the child uses
// the same layout settings and its stderr matches our log output.
func (a *app) workerArgs() []string {
	args := []string{"worker"}
	if a.configPath != "" {
		args = append(args, "--config", a.configPath)
	}
	if a.cfg.Log.Level != "" {
		args = append(args, "--log-level", a.cfg.Log.Level)
	}
	if a.cfg.Log.Format != "" {
		args = append(args, "--log-format", a.cfg.Log.Format)
	}
	return args
}

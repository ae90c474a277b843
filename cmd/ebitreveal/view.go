package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
	"github.com/nicky-ayoub/ebitreveal/internal/event"
	"github.com/nicky-ayoub/ebitreveal/internal/reveal"
	"github.com/nicky-ayoub/ebitreveal/internal/service"
	"github.com/nicky-ayoub/ebitreveal/internal/ui"
)

var (
	viewBefore string
	viewAfter  string
	viewTitle  string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the comparison viewer",
	Long: `Open the comparison viewer. With --before and --after a single comparison
is shown; otherwise the projects of the catalog are browsed.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&viewBefore, "before", "", "Before image path or URL")
	cmd.Flags().StringVar(&viewAfter, "after", "", "After image path or URL")
	cmd.Flags().StringVar(&viewTitle, "title", "", "Title used for labels")
}

// pairJob asks the pair loader for the images of props.
type pairJob struct {
	props  reveal.Props
	ticket reveal.Ticket
}

// pairResult holds the result of a background pair load.
type pairResult struct {
	props     reveal.Props
	ticket    reveal.Ticket
	res       service.PairResult
	info      string
	cancelled bool
}

// Game wires the comparison widget, the project list and the loaders into
// the Ebitengine loop.
type Game struct {
	logger *zap.Logger
	ctx    context.Context

	doc        *event.Document
	poller     *ui.InputPoller
	comparison *ui.Comparison
	selection  reveal.Selection

	projects     *ui.ProjectState
	strip        *ui.ProjectStrip
	stripVisible bool
	single       *reveal.Props
	tags         []string
	tagIndex     int

	ImageService   *service.ImageService
	ProjectService *service.ProjectService

	pairJobChan    chan pairJob
	pairResultChan chan pairResult
	reloadChan     chan []catalog.Project
	toDeallocate   []*ebiten.Image

	info     string
	showInfo bool

	screenWidth, screenHeight int
}

func runView(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g := &Game{
		logger:         logger,
		ctx:            ctx,
		doc:            event.NewDocument(),
		poller:         ui.NewInputPoller(),
		projects:       ui.NewProjectState(),
		stripVisible:   cfg.Strip.Visible,
		ImageService:   service.NewImageService(nil),
		pairJobChan:    make(chan pairJob, 1),
		pairResultChan: make(chan pairResult, 1),
		reloadChan:     make(chan []catalog.Project, 1),
		screenWidth:    cfg.Window.Width,
		screenHeight:   cfg.Window.Height,
	}
	g.comparison = ui.NewComparison(g.doc, cfg.Slider.Style(), cfg.Slider.Range(), logger)

	if viewBefore != "" || viewAfter != "" {
		g.single = &reveal.Props{BeforeURL: viewBefore, AfterURL: viewAfter, Title: viewTitle}
		g.stripVisible = false
	} else if err := g.initCatalog(ctx); err != nil {
		return err
	}

	// Start the background worker for loading comparison pairs.
	go g.pairLoader(ctx)

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	defer g.shutdown()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// initCatalog loads the project list and starts the catalog watcher.
func (g *Game) initCatalog(ctx context.Context) error {
	store := openStore()
	g.ProjectService = service.NewProjectService(store, g.logger)

	list, err := g.ProjectService.Projects(ctx)
	if err != nil {
		return err
	}
	g.setProjects(list)
	g.logger.Info("loaded catalog", zap.String("path", store.Path()), zap.Int("projects", len(list)))
	if len(list) == 0 {
		g.logger.Warn("catalog is empty; add projects with `ebitreveal catalog add`")
	}

	g.strip = ui.NewProjectStrip(g.projects, g.ImageService, cfg.Strip.Workers, g.logger)

	if cfg.Catalog.Watch {
		debounce, err := cfg.Catalog.DebounceDuration()
		if err != nil {
			return err
		}
		go func() {
			err := catalog.Watch(ctx, store.Path(), debounce, g.logger, func() {
				list, err := g.ProjectService.Projects(ctx)
				if err != nil {
					g.logger.Warn("reloading catalog", zap.Error(err))
					return
				}
				// Keep only the latest list.
				select {
				case <-g.reloadChan:
				default:
				}
				g.reloadChan <- list
			})
			if err != nil {
				g.logger.Warn("catalog watcher stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

func (g *Game) setProjects(list []catalog.Project) {
	g.projects.Replace(list)
	g.tags = service.Tags(list)
	if g.tagIndex >= len(g.tags) {
		g.tagIndex = 0
	}
}

func (g *Game) shutdown() {
	for _, img := range g.comparison.Unmount() {
		img.Deallocate()
	}
	if g.strip != nil {
		g.strip.Close()
	}
}

// pairLoader is a background worker that loads before/after pairs.
func (g *Game) pairLoader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-g.pairJobChan:
			res, err := g.ImageService.LoadPair(ctx, job.props.BeforeURL, job.props.AfterURL)
			result := pairResult{
				props:     job.props,
				ticket:    job.ticket,
				res:       res,
				info:      g.describe(job.props),
				cancelled: err != nil,
			}
			select {
			case g.pairResultChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// describe builds the info overlay text for local images.
func (g *Game) describe(props reveal.Props) string {
	var b strings.Builder
	for _, side := range []struct{ label, src string }{{"Before", props.BeforeURL}, {"After", props.AfterURL}} {
		fmt.Fprintf(&b, "%s: %s\n", side.label, side.src)
		if service.IsRemote(side.src) {
			continue
		}
		info, err := g.ImageService.GetImageInfo(side.src)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  %dx%d, %d bytes, %s\n", info.Width, info.Height, info.Size, info.ModTime.Format("2006-01-02 15:04"))
		for k, v := range info.EXIFData {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	return b.String()
}

// currentProps returns the props that should be mounted, if any.
func (g *Game) currentProps() (reveal.Props, bool) {
	if g.single != nil {
		return *g.single, true
	}
	p := g.projects.Current()
	if p == nil {
		return reveal.Props{}, false
	}
	return reveal.Props{BeforeURL: p.BeforeURL, AfterURL: p.AfterURL, Title: p.Title}, true
}

func (g *Game) requestPair(props reveal.Props, ticket reveal.Ticket) {
	// Replace a queued job that has not been picked up yet.
	select {
	case <-g.pairJobChan:
	default:
	}
	g.pairJobChan <- pairJob{props: props, ticket: ticket}
}

func (g *Game) Update() error {
	// Deallocate images replaced in the previous frame.
	for _, img := range g.toDeallocate {
		img.Deallocate()
	}
	g.toDeallocate = g.toDeallocate[:0]

	// 1. Poll all input at the beginning of the frame.
	input := g.poller.Poll()

	// 2. Handle non-state-dependent inputs immediately.
	if input.Quit {
		return ebiten.Termination
	}
	if input.ToggleFullscreen {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if input.ToggleStrip && g.strip != nil {
		g.stripVisible = !g.stripVisible
	}
	if input.ToggleInfo {
		g.showInfo = !g.showInfo
	}

	// 3. Apply a reloaded catalog.
	select {
	case list := <-g.reloadChan:
		g.setProjects(list)
	default:
	}

	// 4. Process results from the background pair loader.
	select {
	case result := <-g.pairResultChan:
		// Results for a selection that has since changed are dropped.
		if !result.cancelled && g.selection.Accept(result.ticket) {
			g.applyPair(result)
		} else {
			g.logger.Debug("dropping stale pair", zap.String("title", result.props.Title))
		}
	default:
	}

	// 5. Mount new props when the selection changed.
	if props, ok := g.currentProps(); !ok {
		if g.selection.Clear() {
			g.toDeallocate = append(g.toDeallocate, g.comparison.Unmount()...)
		}
	} else if ticket, changed := g.selection.Select(props); changed {
		g.toDeallocate = append(g.toDeallocate, g.comparison.Mount(props)...)
		g.info = ""
		g.requestPair(props, ticket)
	}

	// 6. Lay out, then run the frame's pointer input through the widget.
	g.comparison.Layout(g.viewport())
	consumed := g.comparison.Update(input)

	// 7. Navigation.
	g.handleNavigation(input)

	if g.strip != nil && g.stripVisible && !consumed && !g.comparison.State().Dragging {
		newIndex := g.strip.Update(input, g.screenWidth, g.screenHeight, g.projects.CurrentIndex())
		if newIndex != g.projects.CurrentIndex() {
			g.projects.SetIndex(newIndex)
		}
	}
	return nil
}

func (g *Game) applyPair(result pairResult) {
	var before, after *ebiten.Image
	if result.res.Before != nil {
		before = ebiten.NewImageFromImage(result.res.Before)
	}
	if result.res.After != nil {
		after = ebiten.NewImageFromImage(result.res.After)
	}
	if result.res.BeforeErr != nil {
		g.logger.Warn("loading before image", zap.String("src", result.props.BeforeURL), zap.Error(result.res.BeforeErr))
	}
	if result.res.AfterErr != nil {
		g.logger.Warn("loading after image", zap.String("src", result.props.AfterURL), zap.Error(result.res.AfterErr))
	}
	g.comparison.SetImages(before, after, result.res.BeforeErr, result.res.AfterErr)
	g.info = result.info
}

func (g *Game) handleNavigation(input ui.InputState) {
	if g.single != nil {
		return
	}
	switch {
	case input.NextProject:
		g.projects.Navigate(1)
	case input.PrevProject:
		g.projects.Navigate(-1)
	case input.NextTag && len(g.tags) > 0:
		g.projects.ApplyFilter(g.tags[g.tagIndex])
		g.tagIndex = (g.tagIndex + 1) % len(g.tags)
	case input.ClearFilter:
		g.projects.ClearFilter()
	case input.DeleteProject:
		g.deleteCurrent()
	}
}

// deleteCurrent removes the shown project from the catalog and the list.
// The watcher reload that follows finds the list already in sync.
func (g *Game) deleteCurrent() {
	p := g.projects.Current()
	if p == nil || g.ProjectService == nil {
		return
	}
	if err := g.ProjectService.Delete(g.ctx, p.ID); err != nil {
		g.logger.Warn("deleting project", zap.String("id", p.ID), zap.Error(err))
		return
	}
	if g.projects.Remove(p.ID) {
		g.logger.Info("catalog is now empty")
	}
}

// viewport is the screen area available to the comparison widget.
func (g *Game) viewport() image.Rectangle {
	h := g.screenHeight
	if g.strip != nil && g.stripVisible {
		h -= g.strip.Height()
	}
	if h < 0 {
		h = 0
	}
	return image.Rect(0, 0, g.screenWidth, h)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.comparison.Draw(screen)

	state := g.comparison.State()
	status := fmt.Sprintf("Position: %.1f%%", state.Position)
	if state.Dragging {
		status += " (dragging)"
	}
	if g.single == nil {
		status = fmt.Sprintf("%s\nProject: %d/%d", status, g.projects.CurrentIndex()+1, g.projects.Count())
		if g.projects.IsFiltered() {
			status += fmt.Sprintf("\nFilter: %s", g.projects.FilterTag())
		}
		if g.projects.Count() == 0 {
			status += "\nNo projects to show."
		}
	}
	geo := g.comparison.Geometry()
	ebitenutil.DebugPrintAt(screen, status, geo.Container.Min.X+6, geo.Container.Min.Y+22)

	if g.showInfo && g.info != "" {
		ebitenutil.DebugPrintAt(screen, g.info, geo.Container.Min.X+6, geo.Container.Min.Y+80)
	}

	if g.strip != nil && g.stripVisible {
		g.strip.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	// Logical size equals window size for a 1:1 pixel mapping.
	g.screenWidth, g.screenHeight = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

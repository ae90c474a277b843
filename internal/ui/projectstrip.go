package ui

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/service"
)

const (
	viewportWidth = 11 // Must be an odd number for a clear center
	thumbSize     = 80
	thumbSpacing  = 10
	stripHeight   = thumbSize + 2*thumbSpacing
)

// thumbnailJob represents a request to load the thumbnail of a project.
type thumbnailJob struct {
	id  string
	src string
}

// thumbnailResult holds a decoded image, ready to be converted to an ebiten.Image.
type thumbnailResult struct {
	id  string
	src string
	img image.Image
	err error
}

// ProjectStrip manages the state and rendering of the bottom project bar.
// Each project is represented by its before image.
type ProjectStrip struct {
	projects     *ProjectState
	imageService *service.ImageService
	logger       *zap.Logger

	thumbCache    map[string]*ebiten.Image
	failed        map[string]bool
	sources       map[string]string // source each cached or failed thumbnail was made from
	pendingJobs   map[string]bool
	jobQueue      chan thumbnailJob
	resultQueue   chan thumbnailResult
	cacheMu       sync.RWMutex
	pendingJobsMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	selectionBox *ebiten.Image
}

// NewProjectStrip creates the strip and starts workers background loaders.
func NewProjectStrip(ps *ProjectState, ivs *service.ImageService, workers int, logger *zap.Logger) *ProjectStrip {
	ctx, cancel := context.WithCancel(context.Background())
	st := &ProjectStrip{
		projects:     ps,
		imageService: ivs,
		logger:       logger,
		thumbCache:   make(map[string]*ebiten.Image),
		failed:       make(map[string]bool),
		sources:      make(map[string]string),
		pendingJobs:  make(map[string]bool),
		jobQueue:     make(chan thumbnailJob, 50),
		resultQueue:  make(chan thumbnailResult, 50),
		cancel:       cancel,
	}

	st.selectionBox = ebiten.NewImage(thumbSize, thumbSize)
	borderColor := color.RGBA{R: 0xff, G: 0xff, B: 0, A: 0xff} // Yellow
	vector.StrokeRect(st.selectionBox, 0, 0, float32(thumbSize), float32(thumbSize), 3, borderColor, false)

	for i := 0; i < workers; i++ {
		st.wg.Add(1)
		go st.loader(ctx)
	}
	return st
}

// Close stops the loaders and releases cached thumbnails.
func (st *ProjectStrip) Close() {
	st.cancel()
	st.wg.Wait()
	st.cacheMu.Lock()
	defer st.cacheMu.Unlock()
	for id, img := range st.thumbCache {
		img.Deallocate()
		delete(st.thumbCache, id)
	}
}

// Height returns the total height of the strip.
func (st *ProjectStrip) Height() int {
	return stripHeight
}

// loader is a background worker that processes thumbnail loading jobs.
func (st *ProjectStrip) loader(ctx context.Context) {
	defer st.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-st.jobQueue:
			img, err := st.imageService.Thumbnail(ctx, job.src)
			select {
			case st.resultQueue <- thumbnailResult{id: job.id, src: job.src, img: img, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Update processes loaded thumbnails, queues new ones and handles clicks.
// It returns the new view index if a thumbnail is clicked, otherwise it
// returns currentIndex.
func (st *ProjectStrip) Update(in InputState, screenWidth, screenHeight, currentIndex int) int {
	// 1. Collect finished loads. Images are created on the update goroutine.
	processing := true
	for processing {
		select {
		case result := <-st.resultQueue:
			st.pendingJobsMu.Lock()
			delete(st.pendingJobs, result.id)
			st.pendingJobsMu.Unlock()

			st.cacheMu.Lock()
			st.forgetUnlocked(result.id)
			st.sources[result.id] = result.src
			if result.err != nil {
				st.logger.Debug("thumbnail failed", zap.String("project", result.id), zap.Error(result.err))
				st.failed[result.id] = true
			} else {
				st.thumbCache[result.id] = ebiten.NewImageFromImage(result.img)
			}
			st.cacheMu.Unlock()
		default:
			processing = false
		}
	}

	// 2. Determine which thumbnails are needed for the current view.
	viewportItems, _ := st.projects.ViewportItems(currentIndex, viewportWidth)

	// 3. Queue jobs for missing thumbnails. Failed ones are not retried
	// unless the project now points at another image.
	for _, vpItem := range viewportItems {
		id, src := vpItem.Project.ID, vpItem.Project.BeforeURL

		st.cacheMu.Lock()
		if old, ok := st.sources[id]; ok && old != src {
			st.forgetUnlocked(id)
		}
		_, inCache := st.thumbCache[id]
		failed := st.failed[id]
		st.cacheMu.Unlock()
		if inCache || failed {
			continue
		}

		st.pendingJobsMu.Lock()
		if !st.pendingJobs[id] {
			select {
			case st.jobQueue <- thumbnailJob{id: id, src: src}:
				st.pendingJobs[id] = true
			default:
				// Job queue is full, we'll try again on the next frame.
			}
		}
		st.pendingJobsMu.Unlock()
	}

	// 4. Handle clicks and taps.
	if len(viewportItems) == 0 {
		return currentIndex
	}
	points := make([]image.Point, 0, 1+len(in.Touches))
	if in.MousePressed {
		points = append(points, image.Pt(in.MouseX, in.MouseY))
	}
	for _, t := range in.Touches {
		if t.Pressed {
			points = append(points, image.Pt(t.X, t.Y))
		}
	}
	for _, pt := range points {
		for i, vpItem := range viewportItems {
			if pt.In(slotRect(i, len(viewportItems), screenWidth, screenHeight)) {
				return vpItem.ViewIndex
			}
		}
	}
	return currentIndex
}

// forgetUnlocked drops everything known about the thumbnail of id. It must
// be called with cacheMu held.
func (st *ProjectStrip) forgetUnlocked(id string) {
	if img := st.thumbCache[id]; img != nil {
		img.Deallocate()
	}
	delete(st.thumbCache, id)
	delete(st.failed, id)
	delete(st.sources, id)
}

// slotRect is the screen rectangle of thumbnail slot i out of n.
func slotRect(i, n, screenWidth, screenHeight int) image.Rectangle {
	totalWidth := n*(thumbSize+thumbSpacing) - thumbSpacing
	startX := (screenWidth - totalWidth) / 2
	startY := screenHeight - stripHeight + thumbSpacing
	x := startX + i*(thumbSize+thumbSpacing)
	return image.Rect(x, startY, x+thumbSize, startY+thumbSize)
}

// Draw renders the strip onto the bottom of the screen.
func (st *ProjectStrip) Draw(screen *ebiten.Image) {
	viewportItems, centerIdx := st.projects.ViewportItems(st.projects.CurrentIndex(), viewportWidth)
	if len(viewportItems) == 0 {
		return
	}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	vector.DrawFilledRect(screen, 0, float32(sh-stripHeight), float32(sw), float32(stripHeight), color.RGBA{A: 0xc0}, false)

	st.cacheMu.RLock()
	defer st.cacheMu.RUnlock()

	for i, vpItem := range viewportItems {
		slot := slotRect(i, len(viewportItems), sw, sh)
		thumb, exists := st.thumbCache[vpItem.Project.ID]
		switch {
		case exists:
			op := &ebiten.DrawImageOptions{}
			// Scale the thumbnail to fit the slot, preserving aspect ratio.
			imgW, imgH := thumb.Bounds().Dx(), thumb.Bounds().Dy()
			scale := float64(thumbSize) / float64(imgW)
			if hScale := float64(thumbSize) / float64(imgH); hScale < scale {
				scale = hScale
			}
			op.GeoM.Scale(scale, scale)
			scaledW, scaledH := float64(imgW)*scale, float64(imgH)*scale
			op.GeoM.Translate(float64(slot.Min.X)+(thumbSize-scaledW)/2, float64(slot.Min.Y)+(thumbSize-scaledH)/2)
			screen.DrawImage(thumb, op)
		case st.failed[vpItem.Project.ID]:
			vector.DrawFilledRect(screen, float32(slot.Min.X), float32(slot.Min.Y), thumbSize, thumbSize, placeholderColor, false)
			ebitenutil.DebugPrintAt(screen, "?", slot.Min.X+thumbSize/2-3, slot.Min.Y+thumbSize/2-8)
		}

		if i == centerIdx {
			selOp := &ebiten.DrawImageOptions{}
			selOp.GeoM.Translate(float64(slot.Min.X), float64(slot.Min.Y))
			screen.DrawImage(st.selectionBox, selOp)
		}
	}
}

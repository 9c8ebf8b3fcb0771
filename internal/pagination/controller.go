// Package pagination owns the reader's position: it turns layout
// measurements into page boundaries, maps pages to a 0-100 progress value
// and back, and re-derives the current page from progress whenever the
// layout changes so position survives font and viewport adjustments.
package pagination

import (
	"math"
	"sync"
	"time"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/layout"
	"github.com/dmelton/folio/internal/logging"
)

// State is the controller's measurement lifecycle state.
type State int

const (
	// Idle means no document is loaded.
	Idle State = iota
	// Measuring means a layout measurement is pending or in flight.
	Measuring
	// Ready means the page model reflects the current document and config.
	Ready
)

func (s State) String() string {
	switch s {
	case Measuring:
		return "Measuring"
	case Ready:
		return "Ready"
	default:
		return "Idle"
	}
}

// PageModel is the derived pagination of a document under one render
// configuration. CurrentPage is always clamped to [0, TotalPages-1].
type PageModel struct {
	TotalPages  int
	CurrentPage int
}

// ProgressSink receives fire-and-forget progress writes after every
// position mutation. Implementations must not block.
type ProgressSink interface {
	SaveProgress(docID string, progress int)
}

// ReaderSession is the explicit reader state owned by the controller: the
// loaded document, its render configuration, the derived page model and the
// persisted progress percentage.
type ReaderSession struct {
	Doc      *document.Document
	Config   document.RenderConfig
	Pages    PageModel
	Progress int // 0..100
}

// DefaultDebounce is the settle delay between a layout-affecting change
// and the measurement it triggers, absorbing rapid adjustments such as
// font-size dragging.
const DefaultDebounce = 150 * time.Millisecond

// Controller drives measurement and navigation. Navigation operations are
// synchronous against the already-measured page model; measurement runs
// asynchronously and stale results are discarded by request token.
type Controller struct {
	measurer layout.Measurer
	sink     ProgressSink
	debounce time.Duration

	mu      sync.Mutex
	state   State
	session ReaderSession
	token   uint64
	timer   *time.Timer
}

// NewController creates a controller in the Idle state. sink may be nil.
func NewController(m layout.Measurer, sink ProgressSink) *Controller {
	return &Controller{
		measurer: m,
		sink:     sink,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the measurement settle delay.
func (c *Controller) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounce = d
}

// Load starts a session for a document. The previous session, if any, is
// replaced; progress resets to zero until JumpToProgress restores it.
func (c *Controller) Load(doc *document.Document, cfg document.RenderConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = ReaderSession{
		Doc:    doc,
		Config: cfg,
		Pages:  PageModel{TotalPages: 1},
	}
	c.scheduleLocked()
}

// SetConfig applies a new render configuration. Previously computed page
// boundaries are invalid from this point until measurement completes; the
// current page is re-derived from progress, not carried over.
func (c *Controller) SetConfig(cfg document.RenderConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Doc == nil {
		return
	}
	c.session.Config = cfg
	c.scheduleLocked()
}

// Remeasure re-triggers measurement with the current document and config,
// used after a transient measurement failure or a viewport change already
// reflected in the config.
func (c *Controller) Remeasure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Doc == nil {
		return
	}
	c.scheduleLocked()
}

// scheduleLocked bumps the request token and (re)arms the debounce timer.
// Only the newest request survives: earlier timers are stopped, and any
// in-flight measurement resolves against a stale token and is dropped.
func (c *Controller) scheduleLocked() {
	c.state = Measuring
	c.token++
	token := c.token
	doc := c.session.Doc
	cfg := c.session.Config

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		go c.measure(token, doc, cfg)
	})
}

// measure runs one measurement request and resolves it. The measurement
// primitive cannot be preempted, so supersession is detected at resolution
// time rather than by cancellation.
func (c *Controller) measure(token uint64, doc *document.Document, cfg document.RenderConfig) {
	ext, err := c.measurer.Measure(doc, cfg)
	c.resolve(token, ext, err)
}

// resolve applies a measurement result unless a newer request has started
// since. Errors leave the controller in Measuring and schedule a retry.
func (c *Controller) resolve(token uint64, ext layout.Extent, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		logging.Debugf("pagination: dropping stale measurement (token %d, latest %d)", token, c.token)
		return
	}
	if err != nil {
		logging.Warnf("pagination: measurement failed, retrying: %v", err)
		c.scheduleLocked()
		return
	}

	total := layout.PageCount(ext)
	c.session.Pages = PageModel{
		TotalPages:  total,
		CurrentPage: pageForProgress(c.session.Progress, total),
	}
	c.state = Ready
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a snapshot of the reader session.
func (c *Controller) Session() ReaderSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Pages returns a snapshot of the page model.
func (c *Controller) Pages() PageModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Pages
}

// Progress returns the current progress percentage.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Progress
}

// NextPage advances one page. It is a no-op on the last page or while no
// measurement is ready.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return
	}
	p := c.session.Pages
	if p.CurrentPage >= p.TotalPages-1 {
		return
	}
	c.session.Pages.CurrentPage++
	c.updateProgressLocked()
}

// PrevPage goes back one page. It is a no-op on the first page or while no
// measurement is ready.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return
	}
	if c.session.Pages.CurrentPage <= 0 {
		return
	}
	c.session.Pages.CurrentPage--
	c.updateProgressLocked()
}

// JumpToProgress restores a saved position. Usable in any state: the page
// is derived immediately when Ready, and again at the next resolution
// otherwise.
func (c *Controller) JumpToProgress(progress int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Progress = clampProgress(progress)
	if c.state == Ready {
		c.session.Pages.CurrentPage = pageForProgress(c.session.Progress, c.session.Pages.TotalPages)
	}
	c.saveLocked()
}

// SetProgressFromScrollOffset records progress in continuous-scroll mode,
// where progress is the scroll ratio rather than a page derivation.
func (c *Controller) SetProgressFromScrollOffset(ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.session.Progress = int(math.Round(ratio * 100))
	if c.state == Ready {
		c.session.Pages.CurrentPage = pageForProgress(c.session.Progress, c.session.Pages.TotalPages)
	}
	c.saveLocked()
}

// updateProgressLocked recomputes progress from the current page and emits
// it to the sink.
func (c *Controller) updateProgressLocked() {
	c.session.Progress = progressForPage(c.session.Pages.CurrentPage, c.session.Pages.TotalPages)
	c.saveLocked()
}

func (c *Controller) saveLocked() {
	if c.sink == nil || c.session.Doc == nil {
		return
	}
	c.sink.SaveProgress(c.session.Doc.ID, c.session.Progress)
}

// pageForProgress maps a 0-100 progress value onto a page index, clamped
// into [0, totalPages-1].
func pageForProgress(progress, totalPages int) int {
	if totalPages <= 1 {
		return 0
	}
	page := int(math.Round(float64(clampProgress(progress)) / 100 * float64(totalPages-1)))
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	return page
}

// progressForPage maps a page index onto a 0-100 progress value. The
// divisor substitutes 1 when totalPages-1 would be zero.
func progressForPage(page, totalPages int) int {
	div := totalPages - 1
	if div == 0 {
		div = 1
	}
	return int(math.Round(float64(page) / float64(div) * 100))
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

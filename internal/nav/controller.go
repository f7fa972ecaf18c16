package nav

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/internal/highlight"
	"github.com/gambitlab/chessview/internal/moveinfo"
)

// Provider loads games and evaluates positions. Satisfied by
// provider.Client.
type Provider interface {
	LoadGameByURL(ctx context.Context, url string, analyze bool) (*domain.Game, map[int]*analysis.Analysis, error)
	LoadGameByID(ctx context.Context, id string, analyze bool) (*domain.Game, map[int]*analysis.Analysis, error)
	Evaluate(ctx context.Context, fen string, depth int) (*analysis.Analysis, error)
}

type Config struct {
	Depth               int
	AutoplayInterval    time.Duration
	PreviewRestoreDelay time.Duration
	AnalysisEnabled     bool
}

const (
	defaultDepth               = 4
	defaultAutoplayInterval    = 2 * time.Second
	defaultPreviewRestoreDelay = 1500 * time.Millisecond
)

// Controller drives the navigation state machine. Every mutation runs on one
// event-loop goroutine fed by a closure channel: user intents are enqueued by
// the exported methods, fetch completions are posted by the orchestrator and
// timer fires post themselves, so the state and the analysis table have a
// single writer without locks.
type Controller struct {
	cfg      Config
	provider Provider
	logger   *zap.Logger

	events chan func()
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	onChange func(*domain.Game, State)

	// Loop-owned; never touched off the event goroutine.
	game *domain.Game
	orch *analysis.Orchestrator
	st   State
	gen  string

	previewTimer  *time.Timer
	autoplayTimer *time.Timer
}

func NewController(provider Provider, cfg Config, logger *zap.Logger) (*Controller, error) {
	if provider == nil {
		return nil, fmt.Errorf("game provider is required")
	}
	if cfg.Depth <= 0 {
		cfg.Depth = defaultDepth
	}
	if cfg.AutoplayInterval <= 0 {
		cfg.AutoplayInterval = defaultAutoplayInterval
	}
	if cfg.PreviewRestoreDelay <= 0 {
		cfg.PreviewRestoreDelay = defaultPreviewRestoreDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		events:   make(chan func(), 128),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnChange registers the state listener. Must be set before Start. The
// callback runs on the event loop with the loaded game and a deep state
// copy; it must not call back into the Controller, since methods like
// Snapshot and Game round-trip through the loop and would block it.
func (c *Controller) OnChange(fn func(*domain.Game, State)) { c.onChange = fn }

// Start spawns the event loop.
func (c *Controller) Start() {
	go c.run()
}

// Close stops the loop and all timers. Pending timer fires and fetch
// completions posted after Close are dropped.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			c.stopTimers()
			return
		case fn := <-c.events:
			fn()
		}
	}
}

func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.quit:
	}
}

// LoadGame fetches a game and installs it, resetting all navigation state and
// the analysis table. Input and provider errors return before any state is
// touched.
func (c *Controller) LoadGame(ctx context.Context, gameURL string, analyze bool) (*domain.Game, error) {
	game, seeded, err := c.provider.LoadGameByURL(ctx, gameURL, analyze)
	if err != nil {
		return nil, err
	}
	return c.installGame(game, seeded)
}

// LoadGameByID is LoadGame keyed by a live-game ID instead of a URL.
func (c *Controller) LoadGameByID(ctx context.Context, gameID string, analyze bool) (*domain.Game, error) {
	game, seeded, err := c.provider.LoadGameByID(ctx, gameID, analyze)
	if err != nil {
		return nil, err
	}
	return c.installGame(game, seeded)
}

func (c *Controller) installGame(game *domain.Game, seeded map[int]*analysis.Analysis) (*domain.Game, error) {
	installed := make(chan error, 1)
	c.post(func() { installed <- c.install(game, seeded) })
	select {
	case err := <-installed:
		if err != nil {
			return nil, err
		}
		return game, nil
	case <-c.quit:
		return nil, fmt.Errorf("controller closed")
	}
}

func (c *Controller) install(game *domain.Game, seeded map[int]*analysis.Analysis) error {
	gen := uuid.NewString()
	orch, err := analysis.NewOrchestrator(c.provider, analysis.OrchestratorConfig{
		Depth: c.cfg.Depth,
		Post:  c.post,
		OnReady: func(ply int) {
			if c.gen != gen {
				return
			}
			c.analysisReady(ply)
		},
		OnError: func(ply int, err error) {
			if c.gen != gen {
				return
			}
			c.st.Notice = fmt.Sprintf("position analysis failed: %v", err)
			c.notify()
		},
	}, c.logger)
	if err != nil {
		return err
	}
	for ply, a := range seeded {
		orch.Seed(ply, a)
	}

	c.stopTimers()
	c.game = game
	c.orch = orch
	c.gen = gen
	c.st = State{Index: -1} // forces the snapshot-free first transition to 0
	c.st = Transition(c.st, c.game, c.table(), 0)
	c.ensureCurrent()
	c.logger.Info("game installed",
		zap.String("game_id", game.ID),
		zap.Int("plies", game.PlyCount()),
		zap.Int("seeded_analyses", c.table().Len()),
	)
	c.notify()
	return nil
}

// GoTo navigates to a ply index; out-of-range indexes clamp.
func (c *Controller) GoTo(index int) {
	c.post(func() { c.goTo(index) })
}

// Next advances one ply.
func (c *Controller) Next() {
	c.post(func() { c.goTo(c.st.Index + 1) })
}

// Prev steps one ply back.
func (c *Controller) Prev() {
	c.post(func() { c.goTo(c.st.Index - 1) })
}

func (c *Controller) goTo(index int) {
	if c.game == nil {
		return
	}
	c.st = Transition(c.st, c.game, c.table(), index)
	c.ensureCurrent()
	c.notify()
}

// ToggleShowBestMove flips the single-best overlay. When the current ply has
// no analysis yet it requests one instead of toggling, regardless of the
// analysis-mode flag.
func (c *Controller) ToggleShowBestMove() {
	c.post(func() {
		if c.game == nil {
			return
		}
		if _, ok := c.table().Get(c.st.Index); !ok {
			c.requestAnalysis(c.st.Index)
			return
		}
		c.st = ToggleBest(c.st, c.game, c.table())
		c.notify()
	})
}

// PreviewSuggestedMove temporarily replaces the primary highlight; after the
// restore delay the ply's own highlight comes back. A second preview resets
// the delay rather than stacking a second restoration.
func (c *Controller) PreviewSuggestedMove(h highlight.Highlight) {
	c.post(func() { c.preview(h) })
}

// SelectCandidate resolves a candidate move against the current position and
// previews it with full move metadata.
func (c *Controller) SelectCandidate(uci string) {
	c.post(func() {
		if c.game == nil {
			return
		}
		info, err := moveinfo.Resolve(c.game.Positions[c.st.Index], uci)
		if err != nil {
			c.logger.Warn("candidate move did not resolve", zap.String("uci", uci), zap.Error(err))
			c.st.Notice = fmt.Sprintf("move %s is not playable here", uci)
			c.notify()
			return
		}
		h, err := highlight.Build(info.From, info.To, info.Piece, info.Color, highlight.Options{
			Capture:   info.Capture,
			Check:     info.Check,
			Checkmate: info.Checkmate,
			Castling:  info.Castling,
			Promotion: info.Promotion,
			Suggested: true,
		})
		if err != nil {
			c.logger.Warn("candidate highlight failed", zap.String("uci", uci), zap.Error(err))
			return
		}
		c.preview(h)
	})
}

func (c *Controller) preview(h highlight.Highlight) {
	if c.game == nil {
		return
	}
	c.st.Primary = &h
	c.st = Refresh(c.st, c.game, c.table())
	c.notify()

	if c.previewTimer != nil {
		c.previewTimer.Stop()
	}
	gen := c.gen
	c.previewTimer = time.AfterFunc(c.cfg.PreviewRestoreDelay, func() {
		c.post(func() { c.restorePrimary(gen) })
	})
}

func (c *Controller) restorePrimary(gen string) {
	if c.game == nil || gen != c.gen {
		return
	}
	c.st.Primary = PrimaryHighlight(c.game, c.st.Index)
	c.st = Refresh(c.st, c.game, c.table())
	c.notify()
}

// SetAutoplay starts or stops automatic forward stepping. Autoplay disables
// itself when the final ply is reached.
func (c *Controller) SetAutoplay(enabled bool) {
	c.post(func() {
		if c.game == nil || c.st.Autoplay == enabled {
			return
		}
		if !enabled {
			c.st.Autoplay = false
			if c.autoplayTimer != nil {
				c.autoplayTimer.Stop()
				c.autoplayTimer = nil
			}
			c.notify()
			return
		}
		if c.st.Index >= c.game.PlyCount() {
			return
		}
		c.st.Autoplay = true
		c.scheduleAdvance()
		c.notify()
	})
}

func (c *Controller) scheduleAdvance() {
	gen := c.gen
	c.autoplayTimer = time.AfterFunc(c.cfg.AutoplayInterval, func() {
		c.post(func() { c.advance(gen) })
	})
}

func (c *Controller) advance(gen string) {
	if c.game == nil || gen != c.gen || !c.st.Autoplay {
		return
	}
	c.goTo(c.st.Index + 1)
	if c.st.Index >= c.game.PlyCount() {
		c.st.Autoplay = false
		c.autoplayTimer = nil
		c.notify()
		return
	}
	c.scheduleAdvance()
}

// Snapshot returns a deep copy of the current state via the event loop.
func (c *Controller) Snapshot() State {
	out := make(chan State, 1)
	c.post(func() { out <- c.st.Clone() })
	select {
	case st := <-out:
		return st
	case <-c.quit:
		return State{}
	}
}

// Game returns the loaded game; the game is immutable after install.
func (c *Controller) Game() *domain.Game {
	out := make(chan *domain.Game, 1)
	c.post(func() { out <- c.game })
	select {
	case g := <-out:
		return g
	case <-c.quit:
		return nil
	}
}

func (c *Controller) analysisReady(ply int) {
	if ply == c.st.Index {
		c.st = Refresh(c.st, c.game, c.table())
	}
	c.notify()
}

func (c *Controller) ensureCurrent() {
	if !c.cfg.AnalysisEnabled {
		return
	}
	c.requestAnalysis(c.st.Index)
}

func (c *Controller) requestAnalysis(ply int) {
	if c.game == nil || ply < 0 || ply >= len(c.game.Positions) {
		return
	}
	c.orch.Ensure(ply, c.game.Positions[ply])
}

func (c *Controller) table() *analysis.Table {
	return c.orch.Table()
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.game, c.st.Clone())
}

func (c *Controller) stopTimers() {
	if c.previewTimer != nil {
		c.previewTimer.Stop()
		c.previewTimer = nil
	}
	if c.autoplayTimer != nil {
		c.autoplayTimer.Stop()
		c.autoplayTimer = nil
	}
}

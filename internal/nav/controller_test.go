package nav

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/internal/highlight"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	gate  chan struct{}

	game    *domain.Game
	seeded  map[int]*analysis.Analysis
	loadErr error
}

func newFakeProvider(game *domain.Game) *fakeProvider {
	return &fakeProvider{calls: map[string]int{}, game: game}
}

func (p *fakeProvider) LoadGameByURL(_ context.Context, _ string, _ bool) (*domain.Game, map[int]*analysis.Analysis, error) {
	if p.loadErr != nil {
		return nil, nil, p.loadErr
	}
	return p.game, p.seeded, nil
}

func (p *fakeProvider) LoadGameByID(ctx context.Context, _ string, analyze bool) (*domain.Game, map[int]*analysis.Analysis, error) {
	return p.LoadGameByURL(ctx, "", analyze)
}

func (p *fakeProvider) Evaluate(ctx context.Context, fen string, _ int) (*analysis.Analysis, error) {
	p.mu.Lock()
	p.calls[fen]++
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &analysis.Analysis{
		Evaluation: 0.4,
		BestMoves: []analysis.Candidate{
			{UCI: "d2d4", Evaluation: 0.5, IsBest: true},
			{UCI: "c2c4", Evaluation: 0.4},
		},
	}, nil
}

func (p *fakeProvider) callCount(fen string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[fen]
}

func ctrlGame(t *testing.T) *domain.Game {
	t.Helper()
	g := testGame(t)
	for i := range g.Positions {
		g.Positions[i] = fmt.Sprintf("fen-%d", i)
	}
	return g
}

func startController(t *testing.T, p Provider, cfg Config) *Controller {
	t.Helper()
	c, err := NewController(p, cfg, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.Start()
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestLoadGameInstallsFreshState(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{})

	game, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.PlyCount() != 4 {
		t.Fatalf("PlyCount = %d, want 4", game.PlyCount())
	}
	st := c.Snapshot()
	if st.Index != 0 || st.Primary != nil || st.Autoplay || st.ShowBestOnly {
		t.Fatalf("fresh state = %+v, want index 0 with no derived annotations", st)
	}
}

func TestOnChangeDeliversGameToCallback(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c, err := NewController(p, Config{}, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	// The callback runs on the event loop, so everything the renderer needs
	// has to arrive as arguments; reading it back through the Controller
	// would block the loop on itself.
	type change struct {
		id    string
		index int
	}
	changes := make(chan change, 16)
	c.OnChange(func(g *domain.Game, st State) {
		var id string
		if g != nil {
			id = g.ID
		}
		changes <- change{id: id, index: st.Index}
	})
	c.Start()
	t.Cleanup(c.Close)

	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	select {
	case got := <-changes:
		if got.id != "test" || got.index != 0 {
			t.Fatalf("first change = %+v, want the installed game at ply 0", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification after load")
	}
}

func TestLoadGameErrorLeavesStateIntact(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.GoTo(2)
	waitFor(t, func() bool { return c.Snapshot().Index == 2 }, "navigation to ply 2")

	p.mu.Lock()
	p.loadErr = fmt.Errorf("backend unavailable")
	p.mu.Unlock()
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/2", false); err == nil {
		t.Fatal("expected load error")
	}
	if st := c.Snapshot(); st.Index != 2 {
		t.Fatalf("Index = %d after failed load, want 2", st.Index)
	}
}

func TestNavigationSingleFlight(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	p.gate = make(chan struct{})
	c := startController(t, p, Config{AnalysisEnabled: true})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}

	// Revisits while the first fetch is in flight must not issue more
	// requests, and neither must the analyze-now path.
	c.GoTo(1)
	c.GoTo(2)
	c.GoTo(1)
	c.ToggleShowBestMove()
	waitFor(t, func() bool { return c.Snapshot().Index == 1 }, "navigation to settle")
	waitFor(t, func() bool { return p.callCount("fen-1") >= 1 }, "fetch to start")
	if n := p.callCount("fen-1"); n != 1 {
		t.Fatalf("evaluate calls for ply 1 = %d, want 1", n)
	}

	close(p.gate)
	waitFor(t, func() bool { return len(c.Snapshot().Best) > 0 }, "analysis to land")
	if n := p.callCount("fen-1"); n != 1 {
		t.Fatalf("evaluate calls for ply 1 after completion = %d, want 1", n)
	}
}

func TestToggleRequestsAnalysisWhenAbsent(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{AnalysisEnabled: false})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.GoTo(1)
	waitFor(t, func() bool { return c.Snapshot().Index == 1 }, "navigation")
	if n := p.callCount("fen-1"); n != 0 {
		t.Fatalf("navigation fetched despite analysis mode off (%d calls)", n)
	}

	// First toggle requests the missing analysis instead of flipping.
	c.ToggleShowBestMove()
	waitFor(t, func() bool { return len(c.Snapshot().Best) > 0 }, "analysis to land")
	if st := c.Snapshot(); st.ShowBestOnly {
		t.Fatal("toggle flipped while analysis was absent")
	}

	c.ToggleShowBestMove()
	waitFor(t, func() bool { return c.Snapshot().ShowBestOnly }, "toggle to flip")
	if st := c.Snapshot(); len(st.Best) != 1 {
		t.Fatalf("len(Best) = %d in show-best mode, want 1", len(st.Best))
	}
}

func TestAutoplayStopsAtFinalPly(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{AutoplayInterval: 5 * time.Millisecond})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.SetAutoplay(true)
	waitFor(t, func() bool {
		st := c.Snapshot()
		return st.Index == 4 && !st.Autoplay
	}, "autoplay to run out")

	// No further advances once stopped.
	time.Sleep(25 * time.Millisecond)
	if st := c.Snapshot(); st.Index != 4 || st.Autoplay {
		t.Fatalf("state after stop = index %d autoplay %v", st.Index, st.Autoplay)
	}
}

func TestAutoplayDisableCancelsPendingAdvance(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{AutoplayInterval: 60 * time.Millisecond})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.SetAutoplay(true)
	c.SetAutoplay(false)
	time.Sleep(150 * time.Millisecond)
	if st := c.Snapshot(); st.Index != 0 || st.Autoplay {
		t.Fatalf("cancelled autoplay still advanced: index %d autoplay %v", st.Index, st.Autoplay)
	}
}

func TestPreviewLastWins(t *testing.T) {
	p := newFakeProvider(ctrlGame(t))
	c := startController(t, p, Config{PreviewRestoreDelay: 60 * time.Millisecond})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.GoTo(1)
	waitFor(t, func() bool { return c.Snapshot().Index == 1 }, "navigation")

	h1, err := highlight.Build("d2", "d4", "pawn", "white", highlight.Options{Suggested: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	h2, err := highlight.Build("c2", "c4", "pawn", "white", highlight.Options{Suggested: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	c.PreviewSuggestedMove(h1)
	time.Sleep(30 * time.Millisecond)
	c.PreviewSuggestedMove(h2)

	// Past the first preview's deadline the second one must still be up.
	time.Sleep(45 * time.Millisecond)
	if st := c.Snapshot(); st.Primary == nil || st.Primary.ToCol != 2 {
		t.Fatalf("primary = %+v, want the second preview (c4)", st.Primary)
	}

	waitFor(t, func() bool {
		st := c.Snapshot()
		return st.Primary != nil && st.Primary.ToCol == 4 && st.Primary.ToRow == 4
	}, "primary highlight to restore")
}

func TestStaleFetchIgnoredAfterReload(t *testing.T) {
	first := ctrlGame(t)
	p := newFakeProvider(first)
	p.gate = make(chan struct{})
	c := startController(t, p, Config{AnalysisEnabled: true})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	c.GoTo(1)
	waitFor(t, func() bool { return p.callCount("fen-1") == 1 }, "first fetch to start")

	second := ctrlGame(t)
	second.ID = "reloaded"
	for i := range second.Positions {
		second.Positions[i] = fmt.Sprintf("other-%d", i)
	}
	p.mu.Lock()
	p.game = second
	p.mu.Unlock()
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/2", false); err != nil {
		t.Fatalf("reload: %v", err)
	}

	close(p.gate)
	// The reloaded game's own ply-0 fetch completes; the first game's ply-1
	// completion must neither navigate, refetch, nor post a notice.
	waitFor(t, func() bool { return len(c.Snapshot().Best) > 0 }, "reloaded game analysis")
	st := c.Snapshot()
	if st.Index != 0 || st.Notice != "" {
		t.Fatalf("stale completion leaked into new game state: %+v", st)
	}
	if n := p.callCount("fen-1"); n != 1 {
		t.Fatalf("evaluate calls for the unloaded game = %d, want 1", n)
	}
	if g := c.Game(); g.ID != "reloaded" {
		t.Fatalf("Game().ID = %q, want reloaded", g.ID)
	}
}

func TestSelectCandidatePreviews(t *testing.T) {
	g := testGame(t) // real FENs so the move resolver can work
	p := newFakeProvider(g)
	c := startController(t, p, Config{PreviewRestoreDelay: time.Minute})
	if _, err := c.LoadGame(context.Background(), "https://www.chess.com/game/live/1", false); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}

	c.SelectCandidate("g1f3")
	waitFor(t, func() bool {
		st := c.Snapshot()
		return st.Primary != nil && st.Primary.Suggested
	}, "candidate preview")
	st := c.Snapshot()
	if st.Primary.Piece != "N" || st.Primary.ToRow != 5 || st.Primary.ToCol != 5 {
		t.Fatalf("preview = %+v, want white knight to f3", st.Primary)
	}

	c.SelectCandidate("e2e5")
	waitFor(t, func() bool { return c.Snapshot().Notice != "" }, "illegal move notice")
}

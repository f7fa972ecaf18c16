package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Evaluator fetches an analysis for a position encoding at a fixed depth.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (*Analysis, error)
}

const fetchTimeout = 30 * time.Second

// Orchestrator owns a Table and decides when a ply needs an on-demand fetch.
// Ensure is called from the controller's event loop; fetches run on their own
// goroutine and report back through the post function, which must reschedule
// the callback onto that same loop. That keeps the table single-writer
// without locks.
type Orchestrator struct {
	table     *Table
	evaluator Evaluator
	depth     int
	post      func(func())
	onReady   func(ply int)
	onError   func(ply int, err error)
	logger    *zap.Logger
}

type OrchestratorConfig struct {
	Depth   int
	Post    func(func())
	OnReady func(ply int)
	OnError func(ply int, err error)
}

func NewOrchestrator(evaluator Evaluator, cfg OrchestratorConfig, logger *zap.Logger) (*Orchestrator, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.Post == nil {
		return nil, fmt.Errorf("post scheduler is required")
	}
	if cfg.Depth <= 0 {
		return nil, fmt.Errorf("analysis depth must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		table:     NewTable(),
		evaluator: evaluator,
		depth:     cfg.Depth,
		post:      cfg.Post,
		onReady:   cfg.OnReady,
		onError:   cfg.OnError,
		logger:    logger,
	}, nil
}

// Table exposes the owned table for reads.
func (o *Orchestrator) Table() *Table { return o.table }

// Seed installs analyses delivered with the game payload, keyed by ply.
func (o *Orchestrator) Seed(ply int, a *Analysis) {
	if a == nil {
		return
	}
	o.table.Put(ply, a)
}

// Ensure requests analysis for a ply unless it is already ready or a fetch is
// in flight. Revisiting the same ply while the first fetch is pending never
// issues a second request. A failed fetch leaves the ply absent; the caller
// retries only on a fresh navigation or explicit request.
func (o *Orchestrator) Ensure(ply int, fen string) {
	if !o.table.MarkPending(ply) {
		return
	}
	o.logger.Debug("requesting position analysis",
		zap.Int("ply", ply),
		zap.Int("depth", o.depth),
	)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		result, err := o.evaluator.Evaluate(ctx, fen, o.depth)
		o.post(func() {
			if err != nil {
				o.table.ClearPending(ply)
				o.logger.Warn("position analysis failed",
					zap.Int("ply", ply),
					zap.Error(err),
				)
				if o.onError != nil {
					o.onError(ply, err)
				}
				return
			}
			// Merged by ply key even if the user has navigated away.
			o.table.Put(ply, result)
			if o.onReady != nil {
				o.onReady(ply)
			}
		})
	}()
}

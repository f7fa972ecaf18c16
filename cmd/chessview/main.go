package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/board"
	"github.com/gambitlab/chessview/internal/cache"
	appcfg "github.com/gambitlab/chessview/internal/config"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/internal/highlight"
	"github.com/gambitlab/chessview/internal/nav"
	"github.com/gambitlab/chessview/internal/obslog"
	"github.com/gambitlab/chessview/internal/provider"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	opts := []provider.Option{
		provider.WithTimeout(cfg.ProviderTimeout),
		provider.WithLogger(logger),
	}
	if cfg.RedisURL != "" {
		store, err := cache.New(cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, provider.WithCache(store, time.Duration(cfg.EvalCacheTTLSec)*time.Second))
	}
	client := provider.NewClient(cfg.ProviderBaseURL, opts...)
	if err := client.Health(context.Background()); err != nil {
		logger.Warn("provider health check failed", zap.Error(err))
	}

	ctrl, err := nav.NewController(client, nav.Config{
		Depth:               cfg.AnalysisDepth,
		AutoplayInterval:    cfg.AutoplayInterval,
		PreviewRestoreDelay: cfg.PreviewRestoreDelay,
		AnalysisEnabled:     cfg.AnalyzeOnLoad,
	}, logger)
	if err != nil {
		log.Fatalf("controller init error: %v", err)
	}
	ctrl.OnChange(render)
	ctrl.Start()
	defer ctrl.Close()

	fmt.Println("chessview commands: load <url> | loadid <id> | g <ply> | n | p | b | a | c <uci> | q")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "load":
			if _, err := ctrl.LoadGame(context.Background(), strings.TrimSpace(arg), cfg.AnalyzeOnLoad); err != nil {
				fmt.Printf("load failed: %v\n", err)
			}
		case "loadid":
			if _, err := ctrl.LoadGameByID(context.Background(), strings.TrimSpace(arg), cfg.AnalyzeOnLoad); err != nil {
				fmt.Printf("load failed: %v\n", err)
			}
		case "g":
			ply, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil {
				fmt.Println("usage: g <ply>")
				continue
			}
			ctrl.GoTo(ply)
		case "n":
			ctrl.Next()
		case "p":
			ctrl.Prev()
		case "b":
			ctrl.ToggleShowBestMove()
		case "a":
			st := ctrl.Snapshot()
			ctrl.SetAutoplay(!st.Autoplay)
		case "c":
			ctrl.SelectCandidate(strings.TrimSpace(arg))
		case "q", "quit":
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func render(game *domain.Game, st nav.State) {
	if game == nil {
		return
	}
	grid := board.Decode(game.Positions[st.Index])

	fmt.Printf("\n%s vs %s, ply %d/%d\n", game.White.Username, game.Black.Username, st.Index, game.PlyCount())
	for row := 0; row < board.Size; row++ {
		fmt.Printf("%d ", 8-row)
		for col := 0; col < board.Size; col++ {
			cell := grid[row][col]
			if cell == "" {
				cell = "."
			}
			mark := " "
			if h, ok := st.Squares[board.Key(row, col)]; ok {
				mark = cellMark(h)
			}
			fmt.Printf("%s%s%s", mark, cell, mark)
		}
		fmt.Println()
	}
	fmt.Println("   a  b  c  d  e  f  g  h")

	if st.Index > 0 {
		move := game.Moves[st.Index-1]
		line := fmt.Sprintf("%d. %s", move.MoveNumber, move.SAN)
		if move.Evaluation != nil {
			line += " (" + analysis.FormatEval(*move.Evaluation) + ")"
		}
		if st.Quality != nil {
			line += fmt.Sprintf(" %s %s", st.Quality.Symbol, st.Quality.Label)
		}
		fmt.Println(line)
	}
	for _, h := range st.Best {
		suffix := ""
		if h.Evaluation != nil {
			suffix = " " + analysis.FormatEval(*h.Evaluation)
		}
		fmt.Printf("  best: %s%s\n", moveName(h), suffix)
	}
	for _, h := range st.Worst {
		fmt.Printf("  avoid: %s\n", moveName(h))
	}
	if st.Notice != "" {
		fmt.Println("! " + st.Notice)
	}
	fmt.Print("> ")
}

func moveName(h highlight.Highlight) string {
	from, err := board.SquareName(h.FromRow, h.FromCol)
	if err != nil {
		return "?"
	}
	to, err := board.SquareName(h.ToRow, h.ToCol)
	if err != nil {
		return "?"
	}
	return from + to
}

func cellMark(h highlight.Highlight) string {
	switch {
	case h.Best:
		return "*"
	case h.Worst:
		return "!"
	case h.Suggested, h.FromBest:
		return "+"
	case h.Capture:
		return "x"
	default:
		return "#"
	}
}

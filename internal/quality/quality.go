// Package quality grades a played move from the evaluation swing across its
// ply. Both inputs must already be normalized so that positive favors the
// mover; the caller negates black's white-relative scores.
package quality

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var labelFiles embed.FS

// Grade orders judgments from blunder (-3) to brilliant (+3).
type Grade int

const (
	Blunder    Grade = -3
	Mistake    Grade = -2
	Inaccuracy Grade = -1
	Book       Grade = 0
	Good       Grade = 1
	Excellent  Grade = 2
	Brilliant  Grade = 3
)

// Judgment is the display form of a grade.
type Judgment struct {
	Label    string
	Symbol   string
	Severity int
}

// Classify grades a move from gain = evalBefore - evalAfter. The branch order
// is part of the contract: the equal band is checked before the negative
// bands, so a small negative gain inside (-0.2, 0.2) is Book, not Inaccuracy,
// and every comparison is strict.
func Classify(evalAfter, evalBefore float64) Grade {
	gain := evalBefore - evalAfter
	switch {
	case gain > 2:
		return Brilliant
	case gain > 1:
		return Excellent
	case gain > 0.5:
		return Good
	case math.Abs(gain) < 0.2:
		return Book
	case gain < -2:
		return Blunder
	case gain < -1:
		return Mistake
	case gain < -0.5:
		return Inaccuracy
	default:
		return Book
	}
}

// Judge classifies and resolves the grade against the label catalog.
func Judge(evalAfter, evalBefore float64) Judgment {
	return Classify(evalAfter, evalBefore).Judgment()
}

func (g Grade) Judgment() Judgment {
	entry := catalog()[g.key()]
	return Judgment{Label: entry.Label, Symbol: entry.Symbol, Severity: int(g)}
}

func (g Grade) Symbol() string { return g.Judgment().Symbol }

func (g Grade) String() string { return g.key() }

func (g Grade) key() string {
	switch g {
	case Brilliant:
		return "brilliant"
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Blunder:
		return "blunder"
	case Mistake:
		return "mistake"
	case Inaccuracy:
		return "inaccuracy"
	default:
		return "book"
	}
}

type catalogEntry struct {
	Label  string `yaml:"label"`
	Symbol string `yaml:"symbol"`
}

var (
	catalogOnce sync.Once
	catalogData map[string]catalogEntry
)

// fallback mirrors labels.yaml so a broken embed cannot take grading down.
var fallback = map[string]catalogEntry{
	"brilliant":  {Label: "Brilliant", Symbol: "!!"},
	"excellent":  {Label: "Excellent", Symbol: "!"},
	"good":       {Label: "Good", Symbol: "!?"},
	"book":       {Label: "Book", Symbol: "="},
	"inaccuracy": {Label: "Inaccuracy", Symbol: "?!"},
	"mistake":    {Label: "Mistake", Symbol: "?"},
	"blunder":    {Label: "Blunder", Symbol: "??"},
}

func catalog() map[string]catalogEntry {
	catalogOnce.Do(func() {
		catalogData = fallback
		raw, err := fs.ReadFile(labelFiles, "labels.yaml")
		if err != nil {
			return
		}
		var doc struct {
			Labels map[string]catalogEntry `yaml:"labels"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return
		}
		merged := make(map[string]catalogEntry, len(fallback))
		for k, v := range fallback {
			merged[k] = v
		}
		for k, v := range doc.Labels {
			if v.Label == "" || v.Symbol == "" {
				continue
			}
			merged[k] = v
		}
		catalogData = merged
	})
	return catalogData
}

// Describe renders a judgment for logs and the CLI, e.g. "Mistake (?)".
func (j Judgment) Describe() string {
	return fmt.Sprintf("%s (%s)", j.Label, j.Symbol)
}

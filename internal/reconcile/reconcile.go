package reconcile

import (
	"fmt"
	"strings"

	"github.com/clubarchiv/ingest/internal/domain/match"
	"github.com/clubarchiv/ingest/internal/normalize"
	"github.com/clubarchiv/ingest/internal/parser"
)

// Side tags a record with the team block it belongs to.
type Side int

const (
	SideHome Side = iota
	SideAway
)

// Appearance is one player's reconciled participation in a match.
type Appearance struct {
	Side    Side
	Name    string
	Shirt   int
	Starter bool
	Entry   parser.Clock
	Exit    *parser.Clock
}

// CardEvent is one reconciled booking. Minute stays nil for cards that
// only appear as lineup-cell glyphs without a timeline entry.
type CardEvent struct {
	Side     Side
	Name     string
	Minute   *int
	Stoppage int
	Kind     string
}

// GoalEvent is one goal with its scoring side resolved from the running
// score. Scorer can be empty for unattributed opponent own-goals.
type GoalEvent struct {
	Side   Side
	Clock  parser.Clock
	Score  parser.Score
	Scorer string
	Assist string
	Kind   string
}

// SubstitutionEvent is one reconciled substitution with its side resolved.
type SubstitutionEvent struct {
	Side  Side
	Clock parser.Clock
	In    string
	Out   string
}

// MatchEvents is the reconciled form of one match sheet, still name-based.
type MatchEvents struct {
	Appearances   []Appearance
	Cards         []CardEvent
	Goals         []GoalEvent
	Substitutions []SubstitutionEvent
	Warnings      []string
}

// Reconciler merges raw lineup blocks, goal lines, substitution lines and
// card glyphs into coherent per-player records.
type Reconciler struct {
	norm *normalize.Normalizer
}

func New(norm *normalize.Normalizer) *Reconciler {
	return &Reconciler{norm: norm}
}

// Reconcile applies the participation rules: non-reserve rows start,
// reserve-only players named in a substitution enter at its minute, every
// substitution closes the outgoing appearance and opens the incoming one.
func (r *Reconciler) Reconcile(sheet *parser.MatchSheet) *MatchEvents {
	events := &MatchEvents{}

	appearances := make([]*Appearance, 0, 32)
	reserves := make(map[Side][]parser.LineupCell)
	cardIndex := make(map[string]int)

	// one booking per (side, player, kind): the same card can show up as a
	// lineup-cell glyph and again on the substitution line that removes the
	// player, and the timed sighting wins
	addCard := func(side Side, name string, minute *int, stoppage int, kind string) {
		key := fmt.Sprintf("%d|%s|%s", side, r.norm.Fold(name), kind)
		if i, seen := cardIndex[key]; seen {
			if events.Cards[i].Minute == nil && minute != nil {
				events.Cards[i].Minute = minute
				events.Cards[i].Stoppage = stoppage
			}
			return
		}
		cardIndex[key] = len(events.Cards)
		events.Cards = append(events.Cards, CardEvent{
			Side: side, Name: name, Minute: minute, Stoppage: stoppage, Kind: kind,
		})
	}

	blocks := []struct {
		side  Side
		block parser.LineupBlock
	}{
		{SideHome, sheet.Home},
		{SideAway, sheet.Away},
	}
	for _, b := range blocks {
		side, block := b.side, b.block
		for _, cell := range block.Starters {
			appearances = append(appearances, &Appearance{
				Side: side, Name: cell.Name, Shirt: cell.Shirt, Starter: true,
			})
			for _, kind := range cell.Cards {
				addCard(side, cell.Name, nil, 0, kind)
			}
		}
		reserves[side] = block.Reserves
		for _, cell := range block.Reserves {
			for _, kind := range cell.Cards {
				addCard(side, cell.Name, nil, 0, kind)
			}
		}
	}

	findAppearance := func(name string) *Appearance {
		for _, app := range appearances {
			if r.sameName(app.Name, name) {
				return app
			}
		}
		return nil
	}

	for _, sub := range sheet.Substitutions {
		out := findAppearance(sub.Out)
		if out == nil {
			events.Warnings = append(events.Warnings,
				fmt.Sprintf("substitution at %d.: outgoing player %q not in any lineup", sub.Clock.Minute, sub.Out))
			continue
		}
		exit := sub.Clock
		out.Exit = &exit

		in := findAppearance(sub.In)
		if in == nil {
			shirt := r.reserveShirt(reserves[out.Side], sub.In)
			in = &Appearance{Side: out.Side, Name: sub.In, Shirt: shirt}
			appearances = append(appearances, in)
		}
		in.Entry = sub.Clock

		events.Substitutions = append(events.Substitutions, SubstitutionEvent{
			Side: out.Side, Clock: sub.Clock, In: sub.In, Out: sub.Out,
		})

		// card glyphs on the substitution line belong to the player
		// leaving the pitch at that minute
		for _, kind := range sub.Cards {
			minute := sub.Clock.Minute
			addCard(out.Side, sub.Out, &minute, sub.Clock.Stoppage, kind)
		}
	}

	prev := parser.Score{}
	for _, goal := range sheet.Goals {
		side := SideAway
		if goal.Score.Home > prev.Home {
			side = SideHome
		}
		prev = goal.Score

		kind := match.GoalKindOrdinary
		switch {
		case parser.IsPenaltyMarker(goal.Kind):
			kind = match.GoalKindPenalty
		case parser.IsOwnGoalMarker(goal.Kind):
			kind = match.GoalKindOwnGoal
		}

		events.Goals = append(events.Goals, GoalEvent{
			Side: side, Clock: goal.Clock, Score: goal.Score,
			Scorer: goal.Scorer, Assist: goal.Assist, Kind: kind,
		})
	}

	for _, app := range appearances {
		events.Appearances = append(events.Appearances, *app)
	}
	return events
}

// sameName compares a lineup cell name with an event line name. Event
// lines frequently carry only the last name.
func (r *Reconciler) sameName(cellName, eventName string) bool {
	cell := r.norm.Fold(cellName)
	event := r.norm.Fold(eventName)
	if cell == event {
		return true
	}
	cellFields := strings.Fields(cell)
	eventFields := strings.Fields(event)
	if len(cellFields) == 0 || len(eventFields) == 0 {
		return false
	}
	return cellFields[len(cellFields)-1] == eventFields[len(eventFields)-1]
}

func (r *Reconciler) reserveShirt(reserves []parser.LineupCell, name string) int {
	for _, cell := range reserves {
		if r.sameName(cell.Name, name) {
			return cell.Shirt
		}
	}
	return 0
}

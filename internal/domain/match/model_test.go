package match

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestLineupValidation_ExitMinuteRange(t *testing.T) {
	validate := validator.New()

	exit := 75
	lineup := Lineup{
		MatchID: 1, TeamID: 2, PlayerID: 3,
		ShirtNumber: 9, Starter: true, ExitMinute: &exit,
	}
	if err := validate.Struct(lineup); err != nil {
		t.Fatalf("valid lineup rejected: %v", err)
	}

	lineup.ExitMinute = nil
	if err := validate.Struct(lineup); err != nil {
		t.Fatalf("lineup without exit rejected: %v", err)
	}

	// a malformed substitution line must not smuggle its minute through
	bad := 999
	lineup.ExitMinute = &bad
	if err := validate.Struct(lineup); err == nil {
		t.Fatalf("exit minute 999 accepted")
	}
}

func TestCardValidation_MinuteRange(t *testing.T) {
	validate := validator.New()

	card := Card{MatchID: 1, PlayerID: 3, Kind: CardYellow}
	if err := validate.Struct(card); err != nil {
		t.Fatalf("minute-less card rejected: %v", err)
	}

	minute := 88
	card.Minute = &minute
	if err := validate.Struct(card); err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}

	bad := 999
	card.Minute = &bad
	if err := validate.Struct(card); err == nil {
		t.Fatalf("card minute 999 accepted")
	}
}

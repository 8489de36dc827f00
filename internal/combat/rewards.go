package combat

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// crToXP maps a challenge rating to its XP reward. The table is shared by
// the combat engine and manual reward tooling.
var crToXP = map[string]int{
	"0":   10,
	"1/8": 25,
	"1/4": 50,
	"1/2": 100,
	"1":   200,
	"2":   450,
	"3":   700,
	"4":   1100,
	"5":   1800,
	"6":   2300,
	"7":   2900,
	"8":   3900,
	"9":   5000,
	"10":  5900,
	"11":  7200,
	"12":  8400,
	"13":  10000,
	"14":  11500,
	"15":  13000,
	"16":  15000,
	"17":  18000,
	"18":  20000,
	"19":  22000,
	"20":  25000,
	"21":  33000,
	"22":  41000,
	"23":  50000,
	"24":  62000,
	"25":  75000,
	"26":  90000,
	"27":  105000,
	"28":  120000,
	"29":  135000,
	"30":  155000,
}

// XPForCR returns the XP reward for defeating or neutralizing an opponent of
// the given challenge rating.
func XPForCR(cr string) (int, error) {
	xp, ok := crToXP[strings.TrimSpace(cr)]
	if !ok {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidChallengeRating,
			fmt.Sprintf("unknown challenge rating %q", cr),
			map[string]string{"cr": cr})
	}
	return xp, nil
}

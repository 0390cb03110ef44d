// Package fingerprint encodes match scorelines into the categorical descriptor
// shared by the simulator and the pattern matcher.
package fingerprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/true-odds/internal/models"
)

// Result is the outcome of a period from the home side's point of view
type Result byte

const (
	ResultWin  Result = 'W'
	ResultDraw Result = 'D'
	ResultLoss Result = 'L'
)

func (r Result) String() string {
	return string(r)
}

func compare(home, away int) Result {
	switch {
	case home > away:
		return ResultWin
	case home < away:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// Fingerprint is the rich categorical descriptor of one scoreline
type Fingerprint struct {
	HTResult        Result `json:"ht_result"`
	FTResult        Result `json:"ft_result"`
	HTBTTS          bool   `json:"ht_btts"`
	FTBTTS          bool   `json:"ft_btts"`
	TotalGoals      int    `json:"total_goals"`
	Margin          int    `json:"margin"`
	SecondHalfGoals int    `json:"second_half_goals"`
}

// Encode derives the fingerprint of a scoreline. It fails with
// models.ErrInvalidScoreline when the record is malformed.
func Encode(s models.MatchScoreline) (Fingerprint, error) {
	if err := s.Validate(); err != nil {
		return Fingerprint{}, err
	}
	margin := s.HomeFT - s.AwayFT
	if margin < 0 {
		margin = -margin
	}
	return Fingerprint{
		HTResult:        compare(s.HomeHT, s.AwayHT),
		FTResult:        compare(s.HomeFT, s.AwayFT),
		HTBTTS:          s.HomeHT > 0 && s.AwayHT > 0,
		FTBTTS:          s.HomeFT > 0 && s.AwayFT > 0,
		TotalGoals:      s.HomeFT + s.AwayFT,
		Margin:          margin,
		SecondHalfGoals: (s.HomeFT - s.HomeHT) + (s.AwayFT - s.AwayHT),
	}, nil
}

// HTGoals returns total first half goals
func (f Fingerprint) HTGoals() int {
	return f.TotalGoals - f.SecondHalfGoals
}

// SignedMargin returns the full time goal difference, home minus away
func (f Fingerprint) SignedMargin() int {
	if f.FTResult == ResultLoss {
		return -f.Margin
	}
	return f.Margin
}

// Over reports whether full time goals cross a line such as 2.5
func (f Fingerprint) Over(line float64) bool {
	return float64(f.TotalGoals) > line
}

// HTOver reports whether first half goals cross a line
func (f Fingerprint) HTOver(line float64) bool {
	return float64(f.HTGoals()) > line
}

// String renders the compact code, e.g. "WD-NG-3-0-2":
// HT/FT result, HT/FT btts, total goals, margin, second half goals.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%c%c-%c%c-%d-%d-%d",
		f.HTResult, f.FTResult, flag(f.HTBTTS), flag(f.FTBTTS),
		f.TotalGoals, f.Margin, f.SecondHalfGoals)
}

func flag(b bool) byte {
	if b {
		return 'G'
	}
	return 'N'
}

// Parse decodes a code produced by String
func Parse(code string) (Fingerprint, error) {
	parts := strings.Split(code, "-")
	if len(parts) != 5 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return Fingerprint{}, fmt.Errorf("malformed fingerprint code %q", code)
	}

	var f Fingerprint
	var err error
	if f.HTResult, err = parseResult(parts[0][0]); err != nil {
		return Fingerprint{}, err
	}
	if f.FTResult, err = parseResult(parts[0][1]); err != nil {
		return Fingerprint{}, err
	}
	if f.HTBTTS, err = parseFlag(parts[1][0]); err != nil {
		return Fingerprint{}, err
	}
	if f.FTBTTS, err = parseFlag(parts[1][1]); err != nil {
		return Fingerprint{}, err
	}

	nums := make([]int, 3)
	for i, raw := range parts[2:] {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return Fingerprint{}, fmt.Errorf("malformed fingerprint count %q in %q", raw, code)
		}
		nums[i] = n
	}
	f.TotalGoals, f.Margin, f.SecondHalfGoals = nums[0], nums[1], nums[2]

	if f.SecondHalfGoals > f.TotalGoals || f.Margin > f.TotalGoals {
		return Fingerprint{}, fmt.Errorf("inconsistent fingerprint code %q", code)
	}
	if (f.Margin == 0) != (f.FTResult == ResultDraw) {
		return Fingerprint{}, fmt.Errorf("inconsistent fingerprint code %q", code)
	}
	return f, nil
}

func parseResult(b byte) (Result, error) {
	switch Result(b) {
	case ResultWin, ResultDraw, ResultLoss:
		return Result(b), nil
	}
	return 0, fmt.Errorf("unknown result class %q", b)
}

func parseFlag(b byte) (bool, error) {
	switch b {
	case 'G':
		return true, nil
	case 'N':
		return false, nil
	}
	return false, fmt.Errorf("unknown btts flag %q", b)
}

package lieng

import (
	"fmt"
	"lieng-server/pkg/deck"
	"sort"
)

// Category is the class of a three card hand
type Category int

// Categories from weakest to strongest
const (
	// CategoryPoint (Điểm) is any hand that is not one of the others
	CategoryPoint Category = iota
	// CategoryFace (Ảnh) is three cards from J, Q, K that are not a straight
	CategoryFace
	// CategoryStraight (Liêng) is three consecutive values, including A-Q-K
	CategoryStraight
	// CategoryTriple (Sáp) is three cards of the same rank
	CategoryTriple
)

// score bands, every hand in a band beats every hand below it
const (
	tripleBase   = 900
	straightBase = 800
	faceScore    = 700
)

func (c Category) String() string {
	switch c {
	case CategoryTriple:
		return "SAP"
	case CategoryStraight:
		return "LIENG"
	case CategoryFace:
		return "ANH"
	case CategoryPoint:
		return "DIEM"
	default:
		return "UNKNOWN"
	}
}

// MarshalText allows the category to be used as a JSON value
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category written by MarshalText
func (c *Category) UnmarshalText(text []byte) error {
	for _, cat := range []Category{CategoryPoint, CategoryFace, CategoryStraight, CategoryTriple} {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}

	return fmt.Errorf("unknown category %q", text)
}

// HandResult contains the analysis of a 3-card hand
// Score alone is a total order over all hands: a higher score wins, equal scores tie.
type HandResult struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Label    string   `json:"label"`
}

// Evaluator scores a hand
type Evaluator func(cards []*deck.Card) HandResult

// EvaluateHand analyzes a 3-card hand
//
// Triples score 900 plus the card value (A=1 .. K=13), straights score 800 plus the
// highest value in the run (A-Q-K counts as 13), all-face hands score a flat 700 and
// everything else scores the sum of point values modulo 10.
func EvaluateHand(cards []*deck.Card) HandResult {
	if len(cards) != 3 {
		return HandResult{}
	}

	values := []int{cards[0].StraightValue(), cards[1].StraightValue(), cards[2].StraightValue()}
	sort.Ints(values)

	if values[0] == values[1] && values[1] == values[2] {
		return HandResult{
			Category: CategoryTriple,
			Score:    tripleBase + values[0],
			Label:    "Sáp " + cards[0].RankString(),
		}
	}

	isRun := values[1] == values[0]+1 && values[2] == values[1]+1
	isAceQueenKing := values[0] == 1 && values[1] == deck.Queen && values[2] == deck.King
	if isRun || isAceQueenKing {
		return HandResult{
			Category: CategoryStraight,
			Score:    straightBase + values[2],
			Label:    "Liêng",
		}
	}

	if cards[0].IsFace() && cards[1].IsFace() && cards[2].IsFace() {
		return HandResult{
			Category: CategoryFace,
			Score:    faceScore,
			Label:    "Ảnh",
		}
	}

	points := (cards[0].PointValue() + cards[1].PointValue() + cards[2].PointValue()) % 10
	return HandResult{
		Category: CategoryPoint,
		Score:    points,
		Label:    fmt.Sprintf("%d Điểm", points),
	}
}

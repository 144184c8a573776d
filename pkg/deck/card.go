package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
)

// Suits is the order suits are laid out in a new deck
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Card is an individual playing card
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// face cards
const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

func (c *Card) String() string {
	var suit string
	switch c.Suit {
	case Spades:
		suit = "♠"
	case Hearts:
		suit = "♥"
	case Diamonds:
		suit = "♦"
	case Clubs:
		suit = "♣"
	default:
		panic("unknown suit")
	}

	return c.RankString() + suit
}

// RankString returns the rank as printed on the card
func (c *Card) RankString() string {
	switch c.Rank {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return strconv.Itoa(c.Rank)
	}
}

// StraightValue is the value used for triples and straights: A=1, J=11, Q=12, K=13
func (c *Card) StraightValue() int {
	if c.Rank == Ace {
		return 1
	}

	return c.Rank
}

// PointValue is the value used when counting points: A=1, 2-9 as printed, 10 and faces are worth nothing
func (c *Card) PointValue() int {
	switch {
	case c.Rank == Ace:
		return 1
	case c.Rank >= 10:
		return 0
	default:
		return c.Rank
	}
}

// IsFace returns true for jacks, queens and kings
func (c *Card) IsFace() bool {
	return c.Rank >= Jack && c.Rank <= King
}

var cardRx = regexp.MustCompile(`(?i)^(1[0-4]|[2-9]|[jqka])([cdhs])\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where rank is 2-14 or one of J, Q, K, A and suit in [cdhs]
func CardFromString(s string) *Card {
	if s == "" {
		return nil
	}

	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	var rank int
	switch strings.ToUpper(match[1]) {
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		var err error
		rank, err = strconv.Atoi(match[1])
		if err != nil {
			panic(fmt.Sprintf("could not parse card `%s`: %v", s, err))
		}
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	default:
		// should never be hit due to the regexp
		panic("unknown suit")
	}

	return &Card{
		Rank: rank,
		Suit: suit,
	}
}

// CardsFromString will returns a slice of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]*Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = CardFromString(strings.TrimSpace(card))
	}

	return cards
}

// CardToString converts a card (Ace of Clubs) to a string (14c)
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	return fmt.Sprintf("%d%c", card.Rank, card.Suit[0])
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}

package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, 11, Jack)
	assert.Equal(t, 12, Queen)
	assert.Equal(t, 13, King)
	assert.Equal(t, 14, Ace)
}

func TestCard_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("2♥", (&Card{Rank: 2, Suit: Hearts}).String())
	a.Equal("10♣", (&Card{Rank: 10, Suit: Clubs}).String())
	a.Equal("J♣", (&Card{Rank: Jack, Suit: Clubs}).String())
	a.Equal("Q♦", (&Card{Rank: Queen, Suit: Diamonds}).String())
	a.Equal("K♠", (&Card{Rank: King, Suit: Spades}).String())
	a.Equal("A♠", (&Card{Rank: Ace, Suit: Spades}).String())
}

func TestCard_values(t *testing.T) {
	tests := []struct {
		card     string
		straight int
		point    int
		face     bool
	}{
		{"As", 1, 1, false},
		{"2h", 2, 2, false},
		{"9d", 9, 9, false},
		{"10c", 10, 0, false},
		{"Js", 11, 0, true},
		{"Qh", 12, 0, true},
		{"Kd", 13, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.card, func(t *testing.T) {
			c := CardFromString(tt.card)
			assert.Equal(t, tt.straight, c.StraightValue())
			assert.Equal(t, tt.point, c.PointValue())
			assert.Equal(t, tt.face, c.IsFace())
		})
	}
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)
	a.Equal(&Card{Rank: 14, Suit: Clubs}, CardFromString("14c"))
	a.Equal(&Card{Rank: 14, Suit: Clubs}, CardFromString("Ac"))
	a.Equal(&Card{Rank: 12, Suit: Hearts}, CardFromString("qH"))
	a.Equal(&Card{Rank: 10, Suit: Spades}, CardFromString("10s"))
	a.Nil(CardFromString(""))
	a.Panics(func() { CardFromString("1x") })
	a.Panics(func() { CardFromString("15s") })
}

func TestCardsToString(t *testing.T) {
	cards := CardsFromString("3s, 3h,Kd")
	assert.Equal(t, "3s,3h,13d", CardsToString(cards))
	assert.Equal(t, "3♠ 3♥ K♦", Hand(cards).String())
	assert.Equal(t, []*Card{}, CardsFromString(""))
}

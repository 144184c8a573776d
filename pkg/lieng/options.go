package lieng

// MinPlayers is the fewest players a game can start with
const MinPlayers = 2

// MaxPlayers is bounded by a single deck: three cards each
const MaxPlayers = 52 / cardsPerHand

const cardsPerHand = 3

// Options are options for creating a new Liêng game
type Options struct {
	BetAmount    int // the ante every player pays and the default raise size
	DealerButton int // seat of the dealer, the seat after it acts first
}

// DefaultOptions returns the default options for a Liêng game
func DefaultOptions() Options {
	return Options{
		BetAmount:    1000,
		DealerButton: 0,
	}
}

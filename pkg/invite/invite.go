package invite

import (
	"fmt"
	"lieng-server/pkg/messenger"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Decision is a response to an invite
type Decision string

// decisions, the values double as the button actions
const (
	DecisionJoin    Decision = "join"
	DecisionDecline Decision = "decline"
)

// DecisionFromString parses a decision
func DecisionFromString(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionJoin, DecisionDecline:
		return d, nil
	}

	return "", ErrInvalidDecision
}

// Key identifies an invite, the game it turns into uses the same ID
type Key struct {
	Location messenger.Location
	GameID   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Location, k.GameID)
}

// NewGameID returns a new game ID, e.g. lieng_1b9d6bcd
func NewGameID() string {
	return "lieng_" + strings.Split(uuid.New().String(), "-")[0]
}

// Invite is an open invitation to a game
// An invite is only mutated while its manager holds the lock.
type Invite struct {
	Key       Key
	CreatorID string
	Mentioned []string
	BetAmount int
	ExpiresAt time.Time

	confirmed map[string]bool
	declined  map[string]bool
	message   messenger.MessageRef
	timer     *time.Timer
}

// Status is a snapshot of the responses to an invite
type Status struct {
	Key       Key
	Confirmed []string
	Declined  []string
	Pending   int
	Resolved  bool
}

func (i *Invite) isMentioned(userID string) bool {
	for _, id := range i.Mentioned {
		if id == userID {
			return true
		}
	}

	return false
}

// respond moves the user into one set and out of the other
func (i *Invite) respond(userID string, decision Decision) {
	switch decision {
	case DecisionJoin:
		i.confirmed[userID] = true
		delete(i.declined, userID)
	case DecisionDecline:
		i.declined[userID] = true
		delete(i.confirmed, userID)
	}
}

func (i *Invite) quorum() bool {
	return len(i.confirmed)+len(i.declined) == len(i.Mentioned)
}

// status lists players in mention order
func (i *Invite) status() Status {
	s := Status{
		Key:       i.Key,
		Confirmed: make([]string, 0, len(i.confirmed)),
		Declined:  make([]string, 0, len(i.declined)),
	}

	for _, id := range i.Mentioned {
		if i.confirmed[id] {
			s.Confirmed = append(s.Confirmed, id)
		} else if i.declined[id] {
			s.Declined = append(s.Declined, id)
		}
	}

	s.Pending = len(i.Mentioned) - len(s.Confirmed) - len(s.Declined)
	return s
}

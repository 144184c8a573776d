package livestate

import (
	"context"
	"errors"
	"fmt"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"time"
)

// ErrNotFound is returned when no snapshot is stored for the game
var ErrNotFound = errors.New("live state not found")

// Snapshot is the last known state of a running game
type Snapshot struct {
	Location  messenger.Location `json:"location"`
	GameID    string             `json:"gameId"`
	CreatorID string             `json:"creatorId"`
	Game      *lieng.State       `json:"game"`
	Updated   time.Time          `json:"updated"`
}

// Tracker stores snapshots of running games
type Tracker interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, loc messenger.Location, gameID string) (*Snapshot, error)
	Remove(ctx context.Context, loc messenger.Location, gameID string) error
}

func key(loc messenger.Location, gameID string) string {
	return fmt.Sprintf("lieng:%s:%s:%s", loc.ClanID, loc.ChannelID, gameID)
}

package livestate

import (
	"context"
	"lieng-server/pkg/messenger"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshots outlive a crashed process for a day at most
const snapshotTTL = time.Hour * 24

// Redis stores snapshots as JSON strings
type Redis struct {
	rdclient *redis.Client
}

// NewRedis returns a Redis tracker
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		rdclient: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping checks the connection
func (r *Redis) Ping(ctx context.Context) error {
	return errors.Wrap(r.rdclient.Ping(ctx).Err(), "could not ping redis")
}

// Save stores the snapshot
func (r *Redis) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "could not marshal snapshot")
	}

	err = r.rdclient.Set(ctx, key(snap.Location, snap.GameID), data, snapshotTTL).Err()
	return errors.Wrap(err, "could not save snapshot")
}

// Load returns the snapshot
func (r *Redis) Load(ctx context.Context, loc messenger.Location, gameID string) (*Snapshot, error) {
	data, err := r.rdclient.Get(ctx, key(loc, gameID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "could not load snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal snapshot")
	}

	return &snap, nil
}

// Remove deletes the snapshot
func (r *Redis) Remove(ctx context.Context, loc messenger.Location, gameID string) error {
	return errors.Wrap(r.rdclient.Del(ctx, key(loc, gameID)).Err(), "could not remove snapshot")
}

// Close closes the client
func (r *Redis) Close() error {
	return r.rdclient.Close()
}

package record

import (
	"context"
	"testing"

	"lieng-server/internal/dbtest"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

func testStore(t *testing.T, s Store) {
	id := "lieng_" + uuid.New().String()[:8]
	g := &Game{
		ID:        id,
		Location:  messenger.Location{ClanID: "c", ChannelID: "ch"},
		CreatorID: "a",
		BetAmount: 100,
		PlayerIDs: []string{"a", "b"},
	}

	require.NoError(t, s.Create(cbg, g))

	rec, err := s.Get(cbg, id)
	require.NoError(t, err)
	assert.True(t, rec.Active)
	assert.Equal(t, []string{"a", "b"}, rec.PlayerIDs)
	assert.Equal(t, "ch", rec.Location.ChannelID)
	assert.Nil(t, rec.Summary)

	summary := &Summary{
		State:  &lieng.State{ID: id, Round: lieng.RoundShowdown, Pot: 200},
		Unpaid: map[string]int{"b": 200},
	}
	require.NoError(t, s.End(cbg, id, summary))

	rec, err = s.Get(cbg, id)
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.False(t, rec.Ended.IsZero())
	assert.Equal(t, 200, rec.Summary.State.Pot)
	assert.Equal(t, 200, rec.Summary.Unpaid["b"])

	assert.Equal(t, ErrNotFound, s.End(cbg, "lieng_missing", summary))
	_, err = s.Get(cbg, "lieng_missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	p := NewPostgres(dbtest.Open(t))
	testStore(t, p)

	active, err := p.ActiveGames(cbg)
	assert.NoError(t, err)
	for _, g := range active {
		assert.True(t, g.Active)
	}
}

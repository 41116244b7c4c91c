package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledRoom() WaitingRoomEnabled {
	return WaitingRoomEnabled{
		MinTrades:          2,
		MaxParticipants:    3,
		WalletLimitPercent: 10,
		Closure:            ParticipantCount{Count: 3},
	}
}

func TestAdmitBuyDisabledRoomIsNoop(t *testing.T) {
	p := newToyPool(t)
	err := p.AdmitBuy(0, 1000, 0, 1000, 50, true)
	assert.NoError(t, err)
}

func TestAdmitBuyMinTrades(t *testing.T) {
	p := newToyPool(t)
	p.WaitingRoom = enabledRoom()

	err := p.AdmitBuy(0, 1000, 1, 10, 5, true)
	assert.ErrorIs(t, err, ErrInsufficientTrades)

	err = p.AdmitBuy(0, 1000, 2, 10, 5, true)
	assert.NoError(t, err)
}

func TestAdmitBuyWalletLimit(t *testing.T) {
	p := newToyPool(t)
	p.WaitingRoom = enabledRoom()

	// 10% of 1000 supply = 100 post-buy tokens allowed.
	err := p.AdmitBuy(0, 1000, 5, 101, 5, true)
	assert.ErrorIs(t, err, ErrExceedsWalletLimit)

	err = p.AdmitBuy(0, 1000, 5, 100, 5, true)
	assert.NoError(t, err)
}

func TestAdmitBuyParticipantCapAndClosure(t *testing.T) {
	p := newToyPool(t)
	room := enabledRoom()
	room.MaxParticipants = 2
	room.Closure = ParticipantCount{Count: 2}
	p.WaitingRoom = room

	require.NoError(t, p.AdmitBuy(0, 1000, 5, 10, 5, true))
	require.NoError(t, p.AdmitBuy(0, 1000, 5, 10, 5, true))

	got := p.WaitingRoom.(WaitingRoomEnabled)
	assert.Equal(t, uint32(2), got.Participants)
	assert.True(t, got.Closed, "closure condition met")

	// Closed room admits everyone, qualification no longer applies.
	err := p.AdmitBuy(0, 1000, 0, 999, 5, true)
	assert.NoError(t, err)
}

func TestAdmitBuyVolumeClosure(t *testing.T) {
	p := newToyPool(t)
	room := enabledRoom()
	room.MinTrades = 0
	room.Closure = BuyVolume{Volume: 100}
	p.WaitingRoom = room

	require.NoError(t, p.AdmitBuy(0, 1000, 0, 10, 60, true))
	assert.False(t, p.WaitingRoom.(WaitingRoomEnabled).Closed)

	require.NoError(t, p.AdmitBuy(0, 1000, 0, 10, 40, false))
	got := p.WaitingRoom.(WaitingRoomEnabled)
	assert.True(t, got.Closed)
	assert.Equal(t, uint64(100), got.TotalBuyVolume)
	assert.Equal(t, uint32(1), got.Participants)
}

func TestAdmitBuyTimeClosure(t *testing.T) {
	p := newToyPool(t)
	room := enabledRoom()
	room.MinTrades = 0
	room.Closure = TimeBased{Deadline: 500}
	p.WaitingRoom = room

	require.NoError(t, p.AdmitBuy(499, 1000, 0, 10, 5, true))
	assert.False(t, p.WaitingRoom.(WaitingRoomEnabled).Closed)

	require.NoError(t, p.AdmitBuy(500, 1000, 0, 10, 5, false))
	assert.True(t, p.WaitingRoom.(WaitingRoomEnabled).Closed)
}

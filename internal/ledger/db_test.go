package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/guildmaster/internal/types"
)

func openTestDB(t *testing.T) *DB {
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordEvent(t *testing.T) {
	db := openTestDB(t)

	// Test case 1: Journal a quantity change
	err := db.RecordEvent(1, types.QuantityChanged{
		MaterialID: "iron-ore",
		Delta:      5,
		Quantity:   5,
	})
	assert.NoError(t, err)

	entries, err := db.RecentEvents(10)
	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Day)
	assert.Equal(t, string(types.EventQuantityChanged), entries[0].Kind)
	assert.Equal(t, "iron-ore", entries[0].EntityID)
	assert.Contains(t, entries[0].Payload, `"delta":5`)

	// Test case 2: RecentEvents honors the limit, newest first
	err = db.RecordEvent(2, types.QuantityChanged{
		MaterialID: "iron-ore",
		Delta:      -2,
		Quantity:   3,
	})
	assert.NoError(t, err)

	entries, err = db.RecentEvents(1)
	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Day)
}

func TestRecordDebtPayment(t *testing.T) {
	db := openTestDB(t)

	err := db.RecordEvent(90, types.DebtPayment{
		DebtID:           "debt-1",
		Amount:           1500,
		Day:              90,
		RemainingBalance: 18500,
	})
	assert.NoError(t, err)

	// A debt payment lands in both tables
	entries, err := db.EventsByKind(types.EventDebtPayment)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	payments, err := db.Payments()
	assert.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 90, payments[0].Day)
	assert.Equal(t, "debt-1", payments[0].DebtID)
	assert.Equal(t, 1500, payments[0].Amount)
	assert.Equal(t, 18500, payments[0].Remaining)
}

func TestEventsByKind(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordEvent(1, types.QuantityChanged{MaterialID: "a", Delta: 1, Quantity: 1}))
	require.NoError(t, db.RecordEvent(1, types.StatChanged{PartyID: "p", Stat: types.StatCombat, Value: 11}))
	require.NoError(t, db.RecordEvent(2, types.QuantityChanged{MaterialID: "b", Delta: 2, Quantity: 2}))

	entries, err := db.EventsByKind(types.EventQuantityChanged)
	assert.NoError(t, err)
	require.Len(t, entries, 2)
	// Oldest first
	assert.Equal(t, "a", entries[0].EntityID)
	assert.Equal(t, "b", entries[1].EntityID)
}

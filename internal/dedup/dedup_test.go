package dedup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func tx(region, kind string, count int64, amount int64) pulse.AggregatedTransaction {
	return pulse.AggregatedTransaction{
		At:              pulse.Coordinate{Region: region, Year: 2023, Quarter: 2},
		TransactionType: kind,
		Count:           count,
		Amount:          decimal.NewFromInt(amount),
	}
}

func TestSet_FirstSeenWins(t *testing.T) {
	s := New()

	assert.Equal(t, Kept, s.Admit(tx("Karnataka", "Recharge", 100, 5000)))
	assert.Equal(t, Duplicate, s.Admit(tx("Karnataka", "Recharge", 100, 5000)))
	assert.Equal(t, Conflict, s.Admit(tx("Karnataka", "Recharge", 100, 9999)))
	assert.Equal(t, Kept, s.Admit(tx("Karnataka", "Merchant", 100, 5000)))
	assert.Equal(t, Kept, s.Admit(tx("Goa", "Recharge", 100, 5000)))
	assert.Equal(t, 3, s.Len())
}

func TestSet_ConflictComparesAgainstKeptRecord(t *testing.T) {
	s := New()
	s.Admit(tx("Goa", "Recharge", 1, 1))

	assert.Equal(t, Conflict, s.Admit(tx("Goa", "Recharge", 2, 2)))
	assert.Equal(t, Duplicate, s.Admit(tx("Goa", "Recharge", 1, 1)), "later conflict never replaces the kept record")
}

func TestSet_DecimalScaleDoesNotConflict(t *testing.T) {
	s := New()
	a := tx("Goa", "Recharge", 1, 0)
	a.Amount = decimal.RequireFromString("5000")
	b := a
	b.Amount = decimal.RequireFromString("5000.00")

	s.Admit(a)
	assert.Equal(t, Duplicate, s.Admit(b))
}

func TestSet_KeysAreCategorySpecific(t *testing.T) {
	s := New()
	at := pulse.Coordinate{Region: "Karnataka", Year: 2023, Quarter: 1}

	assert.Equal(t, Kept, s.Admit(pulse.MapUser{At: at, District: "Mysuru", RegisteredUsers: 1}))
	other := pulse.Coordinate{Region: "Goa", Year: 2023, Quarter: 1}
	assert.Equal(t, Conflict, s.Admit(pulse.MapUser{At: other, District: "Mysuru", RegisteredUsers: 2}),
		"map-user keys ignore the state")
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "conflict", Conflict.String())
}

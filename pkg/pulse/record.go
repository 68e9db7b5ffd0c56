package pulse

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Coordinate locates a quarter file in the corpus. Year and Quarter always
// come from the path, never from document content.
type Coordinate struct {
	Region  string
	Year    int
	Quarter int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s/%d/Q%d", c.Region, c.Year, c.Quarter)
}

// Key is the natural key of a record within one run.
// Scope is the state, or the district for map-user.
// Sub distinguishes records sharing a scope (transaction type, brand,
// district, pincode or instrument ordinal); it is empty when unused.
type Key struct {
	Year    int
	Quarter int
	Scope   string
	Sub     string
}

func (k Key) String() string {
	if k.Sub == "" {
		return fmt.Sprintf("(%d, %d, %s)", k.Year, k.Quarter, k.Scope)
	}
	return fmt.Sprintf("(%d, %d, %s, %s)", k.Year, k.Quarter, k.Scope, k.Sub)
}

// Record is one normalized row ready for loading.
type Record interface {
	Category() Category
	Coordinate() Coordinate
	Key() Key
	// Values returns the column values in Category().Table() order.
	Values() []any
}

// AggregatedTransaction is one payment instrument of a transaction type in a state.
type AggregatedTransaction struct {
	At              Coordinate
	TransactionType string
	Count           int64
	Amount          decimal.Decimal
}

func (r AggregatedTransaction) Category() Category     { return CategoryAggregatedTransaction }
func (r AggregatedTransaction) Coordinate() Coordinate { return r.At }
func (r AggregatedTransaction) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.TransactionType}
}
func (r AggregatedTransaction) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.TransactionType, r.Count, r.Amount}
}

// AggregatedUser is one device brand of a state, carrying the state's user totals.
type AggregatedUser struct {
	At              Coordinate
	RegisteredUsers int64
	AppOpens        int64
	Brand           string
	DeviceCount     int64
	Percentage      float64
}

func (r AggregatedUser) Category() Category     { return CategoryAggregatedUser }
func (r AggregatedUser) Coordinate() Coordinate { return r.At }
func (r AggregatedUser) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.Brand}
}
func (r AggregatedUser) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.RegisteredUsers, r.AppOpens,
		r.Brand, r.DeviceCount, r.Percentage}
}

// AggregatedInsurance is one payment instrument of a state's insurance totals.
// Instrument is the instrument's position in the document.
type AggregatedInsurance struct {
	At         Coordinate
	Instrument int
	Count      int64
	Amount     decimal.Decimal
}

func (r AggregatedInsurance) Category() Category     { return CategoryAggregatedInsurance }
func (r AggregatedInsurance) Coordinate() Coordinate { return r.At }
func (r AggregatedInsurance) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: strconv.Itoa(r.Instrument)}
}
func (r AggregatedInsurance) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.Count, r.Amount}
}

// MapTransaction is the transaction total of one district.
type MapTransaction struct {
	At       Coordinate
	District string
	Count    int64
	Amount   decimal.Decimal
}

func (r MapTransaction) Category() Category     { return CategoryMapTransaction }
func (r MapTransaction) Coordinate() Coordinate { return r.At }
func (r MapTransaction) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.District}
}
func (r MapTransaction) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.District, r.Count, r.Amount}
}

// MapUser is the user total of one district. Its key is district scoped,
// and the district name is stored in the table's state column.
type MapUser struct {
	At              Coordinate
	District        string
	RegisteredUsers int64
	AppOpens        int64
}

func (r MapUser) Category() Category     { return CategoryMapUser }
func (r MapUser) Coordinate() Coordinate { return r.At }
func (r MapUser) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.District}
}
func (r MapUser) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.District, r.RegisteredUsers, r.AppOpens}
}

// MapInsurance is the insurance total of one district.
type MapInsurance struct {
	At       Coordinate
	District string
	Count    int64
	Amount   decimal.Decimal
}

func (r MapInsurance) Category() Category     { return CategoryMapInsurance }
func (r MapInsurance) Coordinate() Coordinate { return r.At }
func (r MapInsurance) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.District}
}
func (r MapInsurance) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.District, r.Count, r.Amount}
}

// TopTransaction is a top pincode by transactions within a state.
type TopTransaction struct {
	At      Coordinate
	Pincode string
	Count   int64
	Amount  decimal.Decimal
}

func (r TopTransaction) Category() Category     { return CategoryTopTransaction }
func (r TopTransaction) Coordinate() Coordinate { return r.At }
func (r TopTransaction) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.Pincode}
}
func (r TopTransaction) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.Pincode, LevelTypePincode, r.Count, r.Amount}
}

// TopUser is a top pincode by registered users within a state.
type TopUser struct {
	At              Coordinate
	Pincode         string
	RegisteredUsers int64
}

func (r TopUser) Category() Category     { return CategoryTopUser }
func (r TopUser) Coordinate() Coordinate { return r.At }
func (r TopUser) Key() Key {
	return Key{Year: r.At.Year, Quarter: r.At.Quarter, Scope: r.At.Region, Sub: r.Pincode}
}
func (r TopUser) Values() []any {
	return []any{r.At.Year, r.At.Quarter, r.At.Region, r.Pincode, LevelTypePincode, r.RegisteredUsers}
}

var (
	_ Record = AggregatedTransaction{}
	_ Record = AggregatedUser{}
	_ Record = AggregatedInsurance{}
	_ Record = MapTransaction{}
	_ Record = MapUser{}
	_ Record = MapInsurance{}
	_ Record = TopTransaction{}
	_ Record = TopUser{}
)

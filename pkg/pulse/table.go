package pulse

// ColumnType is the logical type of a table column; dialects map it to SQL types.
type ColumnType int

const (
	ColumnSmallInt ColumnType = iota // year, quarter
	ColumnBigInt                     // counts
	ColumnText                       // names
	ColumnDecimal                    // monetary amounts
	ColumnFloat                      // percentages
)

// Column is one column of a destination table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is the destination contract for one category.
// Columns are listed in the order Record.Values returns them.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in insert order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var (
	colYear     = Column{Name: "year", Type: ColumnSmallInt}
	colQuarter  = Column{Name: "quarter", Type: ColumnSmallInt}
	colState    = Column{Name: "state", Type: ColumnText}
	colDistrict = Column{Name: "district", Type: ColumnText}
	colEntity   = Column{Name: "state_or_district_or_pincode", Type: ColumnText}
	colLevel    = Column{Name: "level_type", Type: ColumnText}
	colUsers    = Column{Name: "registered_users", Type: ColumnBigInt}
	colOpens    = Column{Name: "app_opens", Type: ColumnBigInt}
	colTxCount  = Column{Name: "transaction_count", Type: ColumnBigInt}
	colTxAmount = Column{Name: "transaction_amount", Type: ColumnDecimal}
	colInCount  = Column{Name: "insurance_count", Type: ColumnBigInt}
	colInAmount = Column{Name: "insurance_amount", Type: ColumnDecimal}
)

var tables = map[Category]Table{
	CategoryAggregatedTransaction: {
		Name: "aggregated_transactions",
		Columns: []Column{colYear, colQuarter, colState,
			{Name: "transaction_type", Type: ColumnText}, colTxCount, colTxAmount},
	},
	CategoryAggregatedUser: {
		Name: "aggregated_users",
		Columns: []Column{colYear, colQuarter, colState, colUsers, colOpens,
			{Name: "device_brand", Type: ColumnText},
			{Name: "device_count", Type: ColumnBigInt},
			{Name: "device_percentage", Type: ColumnFloat}},
	},
	CategoryAggregatedInsurance: {
		Name:    "aggregated_insurances",
		Columns: []Column{colYear, colQuarter, colState, colInCount, colInAmount},
	},
	CategoryMapTransaction: {
		Name:    "map_transactions",
		Columns: []Column{colYear, colQuarter, colState, colDistrict, colTxCount, colTxAmount},
	},
	// The dashboard reads district names from map_users.state.
	CategoryMapUser: {
		Name:    "map_users",
		Columns: []Column{colYear, colQuarter, colState, colUsers, colOpens},
	},
	CategoryMapInsurance: {
		Name:    "map_insurances",
		Columns: []Column{colYear, colQuarter, colState, colDistrict, colInCount, colInAmount},
	},
	CategoryTopTransaction: {
		Name:    "top_transactions",
		Columns: []Column{colYear, colQuarter, colState, colEntity, colLevel, colTxCount, colTxAmount},
	},
	CategoryTopUser: {
		Name:    "top_users",
		Columns: []Column{colYear, colQuarter, colState, colEntity, colLevel, colUsers},
	},
}

// Table returns the destination table of the category.
func (c Category) Table() Table {
	return tables[c]
}

// Package schema holds the static table definitions: ordered field lists,
// search-by categories and their column mappings, per table kind.
// Schemas are built once and shared read-only by every store of that kind.
package schema

// Field names, in canonical header order.
const (
	FieldFullName       = "Full Name"
	FieldStreet         = "Street"
	FieldBuilding       = "Building"
	FieldApartment      = "Apartment"
	FieldFloor          = "Floor"
	FieldHomePhone      = "Home Phone"
	FieldMobilePhone    = "Mobile Phone"
	FieldDriver         = "Driver"
	FieldReferrer       = "Referrer"
	FieldNotes          = "Notes"
	FieldOriginalDriver = "Original Driver"
	FieldExitDate       = "Exit Date"
	FieldManager        = "Manager"
	FieldDate           = "Date"
	FieldReceived       = "Received"
)

// Category is a symbolic search-by key resolved to one or more columns.
type Category string

const (
	ByName     Category = "name"
	ByStreet   Category = "street"
	ByPhone    Category = "phone"
	ByDriver   Category = "driver"
	ByReferrer Category = "referrer"
	ByManager  Category = "manager"
	ByReceived Category = "received"
)

// Border thickness of the record cell style, per table kind.
const (
	BorderMedium = "medium"
	BorderThin   = "thin"
)

// Schema describes one table kind.
type Schema struct {
	// Fields is the ordered field list; Fields[i] occupies column i+1.
	Fields []string
	// Key is the field that must be unique within a store.
	Key string
	// TableName is the named growable table range the backing file must
	// carry; empty when the table kind has none.
	TableName string
	// StyleField names the style-encoded column, empty when none.
	StyleField string
	// Border is the record style border thickness.
	Border string

	defaultBy Category
	columns   map[Category][]int
}

// Columns resolves a search-by category to zero-based column indices.
// Unknown or empty categories fall back to the default category.
func (s *Schema) Columns(by Category) []int {
	if cols, ok := s.columns[by]; ok {
		return cols
	}
	return s.columns[s.defaultBy]
}

// Column returns the zero-based column index of a field name.
func (s *Schema) Column(field string) (int, bool) {
	for i, f := range s.Fields {
		if f == field {
			return i, true
		}
	}
	return 0, false
}

// HasCategory reports whether the category is defined for this table kind.
func (s *Schema) HasCategory(by Category) bool {
	_, ok := s.columns[by]
	return ok
}

var families = &Schema{
	Fields: []string{
		FieldFullName, FieldStreet, FieldBuilding, FieldApartment, FieldFloor,
		FieldHomePhone, FieldMobilePhone, FieldDriver, FieldReferrer, FieldNotes,
	},
	Key:       FieldFullName,
	TableName: "Families",
	Border:    BorderMedium,
	defaultBy: ByName,
	columns: map[Category][]int{
		ByName:     {0},
		ByStreet:   {1},
		ByPhone:    {5, 6},
		ByDriver:   {7},
		ByReferrer: {8},
	},
}

var history = &Schema{
	Fields: []string{
		FieldFullName, FieldStreet, FieldBuilding, FieldApartment, FieldFloor,
		FieldHomePhone, FieldMobilePhone, FieldOriginalDriver, FieldExitDate,
	},
	Key:       FieldFullName,
	TableName: "History",
	Border:    BorderMedium,
	defaultBy: ByName,
	columns: map[Category][]int{
		ByName:   {0},
		ByStreet: {1},
		ByPhone:  {5, 6},
		ByDriver: {7},
	},
}

// Holiday tables are duplicated family files carrying the same table name.
var holiday = &Schema{
	Fields:    families.Fields,
	Key:       FieldFullName,
	TableName: "Families",
	Border:    BorderMedium,
	defaultBy: ByName,
	columns:   families.columns,
}

var report = &Schema{
	Fields: []string{
		FieldFullName, FieldManager, FieldDriver, FieldDate, FieldReceived,
	},
	Key:        FieldFullName,
	StyleField: FieldReceived,
	Border:     BorderThin,
	defaultBy:  ByName,
	columns: map[Category][]int{
		ByName:     {0},
		ByManager:  {1},
		ByDriver:   {2},
		ByReceived: {4},
	},
}

// Families returns the schema of the main beneficiary table.
func Families() *Schema { return families }

// History returns the schema of the removed-family history table.
func History() *Schema { return history }

// Holiday returns the schema of per-holiday family tables.
func Holiday() *Schema { return holiday }

// Report returns the schema of receipt report tables.
func Report() *Schema { return report }

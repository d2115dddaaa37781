package store

// TriState is the logical value of a style-encoded field: unset, true-like
// or false-like. The zero value is Unset, which is also what unmapped
// styles resolve to.
type TriState int

const (
	Unset TriState = iota
	Received
	NotReceived
)

// MarshalJSON encodes Unset as null, Received as true and NotReceived as
// false, matching the wire shape clients expect.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Received:
		return []byte("true"), nil
	case NotReceived:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// StyleMap resolves a logical style name to the tri-state it encodes.
// Callers supply it per query, keeping the mapping out of the engine.
type StyleMap map[string]TriState

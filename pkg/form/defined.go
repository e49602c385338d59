package form

// IsDefined reports whether value carries something: nil and the empty
// string are not defined. Zero numbers, false and empty maps or slices are.
func IsDefined(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

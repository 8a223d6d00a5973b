package attrstore

// ErrNotFound is returned when no attribution record exists for a document.
type ErrNotFound struct {
	Document string
}

func (e ErrNotFound) Error() string {
	if e.Document == "" {
		return "attribution record not found"
	}

	return "attribution record not found: " + e.Document
}

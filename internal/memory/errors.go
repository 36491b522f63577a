package memory

import "errors"

var (
	// ErrRecordNotFound indicates no record exists for the given user and key.
	ErrRecordNotFound = errors.New("memory record not found")
	// ErrInvalidImportance indicates an importance outside the 1-10 range.
	ErrInvalidImportance = errors.New("importance must be between 1 and 10")
	// ErrInvalidCategory indicates a category outside the known set.
	ErrInvalidCategory = errors.New("unknown memory category")
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryPersonal, CategoryPreference, CategoryContext, CategoryFact:
		return true
	}
	return false
}

package types

import "fmt"

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// ValidationError reports malformed or constraint-violating input with
// field-level detail.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DuplicateNameError reports a name collision on a create path. The
// quick-create path resolves the same condition as an idempotent lookup.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q already exists", e.Name)
}

// CycleError reports a rejected ingredient link that would make an edible
// contain itself, directly or transitively.
type CycleError struct {
	EdibleID     uint64
	IngredientID uint64
}

func (e *CycleError) Error() string {
	if e.EdibleID == e.IngredientID {
		return fmt.Sprintf("edible %d cannot contain itself", e.EdibleID)
	}
	return fmt.Sprintf("adding edible %d as ingredient of %d would create a cycle", e.IngredientID, e.EdibleID)
}

// GraphIntegrityError reports a cycle encountered on a read path. The write
// path prevents cycles, so hitting this means the stored relation is corrupt.
type GraphIntegrityError struct {
	EdibleID uint64
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("ingredient graph of edible %d contains a cycle", e.EdibleID)
}

// ReferencedError reports a blocked delete: the record is still referenced
// by historical data and must not cascade.
type ReferencedError struct {
	Entity string
	ID     uint64
	Count  int64
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s %d is referenced by %d record(s) and cannot be deleted", e.Entity, e.ID, e.Count)
}

// CrossCategoryError reports an entry that combines a category with an
// option belonging to a different category.
type CrossCategoryError struct {
	CategoryID uint64
	OptionID   uint64
}

func (e *CrossCategoryError) Error() string {
	return fmt.Sprintf("option %d does not belong to category %d", e.OptionID, e.CategoryID)
}

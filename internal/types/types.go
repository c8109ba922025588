// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, service, and storage can all import types without depending
// on each other.
package types

// Student represents a student record in our system.
//
// Only ID is assigned by the application (well, by the database on
// insert). Every other constraint — NOT NULL on surname/name/age and
// the 1.00..5.00 range on AverageMark — is enforced by the storage
// layer, not here.
//
// Patronymic is a pointer because the column is nullable: a nil pointer
// encodes to JSON null and is stored as SQL NULL.
type Student struct {
	ID          int64   `json:"id"`
	Surname     string  `json:"surname"`
	Name        string  `json:"name"`
	Patronymic  *string `json:"patronymic"`
	Age         int     `json:"age"`
	AverageMark float64 `json:"averageMark"`
}

// StudentPatch is the body of PATCH /records/{id}.
//
// Every field is an Optional so the service can tell "the client did not
// send this field" apart from "the client sent a zero value". Without the
// wrapper, `"age": 0` and a missing age would look identical.
type StudentPatch struct {
	Surname     Optional[string]  `json:"surname"`
	Name        Optional[string]  `json:"name"`
	Patronymic  Optional[string]  `json:"patronymic"`
	Age         Optional[int]     `json:"age"`
	AverageMark Optional[float64] `json:"averageMark"`
}

// ApplyTo copies every set field of p onto s and returns the merged
// record. Unset fields leave the existing value untouched. The ID is
// never changed by a patch.
func (p StudentPatch) ApplyTo(s Student) Student {
	if v, ok := p.Surname.Get(); ok {
		s.Surname = v
	}
	if v, ok := p.Name.Get(); ok {
		s.Name = v
	}
	if v, ok := p.Patronymic.Get(); ok {
		s.Patronymic = &v
	}
	if v, ok := p.Age.Get(); ok {
		s.Age = v
	}
	if v, ok := p.AverageMark.Get(); ok {
		s.AverageMark = v
	}
	return s
}

// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, validation and query can all import types without
// depending on each other.
package types

// Student represents a student record in our system.
//
// Every Student held by a store satisfies full validation. The ID is
// assigned by the store on creation and never changes afterwards.
type Student struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Major string  `json:"major"`
	GPA   float64 `json:"gpa"`
}

// StudentPayload is the request body for POST, PUT and PATCH.
//
// Every field is a pointer so a decoded payload can tell "not provided"
// (nil) apart from "provided with a zero value" ("" or 0). A gpa of 0.0 is
// a legal value, so presence cannot be inferred from the value itself.
type StudentPayload struct {
	Name  *string  `json:"name"`
	Email *string  `json:"email"`
	Major *string  `json:"major"`
	GPA   *float64 `json:"gpa"`
}

// Student converts a fully validated payload into a Student without an ID.
// Missing fields become zero values, so callers validate with requireAll
// before calling it.
func (p StudentPayload) Student() Student {
	var s Student
	p.ApplyTo(&s)
	return s
}

// ApplyTo overwrites the fields of s that are present in the payload and
// leaves the rest untouched. The ID is never modified.
func (p StudentPayload) ApplyTo(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Major != nil {
		s.Major = *p.Major
	}
	if p.GPA != nil {
		s.GPA = *p.GPA
	}
}

// IsEmpty reports whether no field was supplied.
func (p StudentPayload) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Major == nil && p.GPA == nil
}

// StudentPage is the body of GET /api/v1/students.
//
// Total counts the filtered set before pagination so a client can compute
// the number of pages.
type StudentPage struct {
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Data  []Student `json:"data"`
}

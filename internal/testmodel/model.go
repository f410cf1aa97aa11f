// Package testmodel holds persistent types shared by tests and examples.
package testmodel

import (
	"time"

	"github.com/google/uuid"

	"ocm-mapper/proxy"
)

// Main is the root document.
type Main struct {
	Path     string
	Title    string
	Created  time.Time
	Tags     []string
	Priority int8
	Detail   *proxy.Ref[Detail]
	Extras   *proxy.List[Detail]
	Owner    *Person
}

// Detail is a leaf node referenced lazily from Main.
type Detail struct {
	Path  string
	Field string
}

// Person is referenced eagerly and carries a generated identifier.
type Person struct {
	Path    string
	ID      uuid.UUID
	Name    string
	Age     int
	Status  Status
	Timeout time.Duration
	Friends []*Person
	Avatar  []byte
	Cents   Amount
	secret  string
}

// Status is a string enum stored as its text.
type Status string

const (
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusRetired
}

// Amount is stored as integer cents and converted by a named converter.
type Amount struct {
	Units int64
	Cents int64
}

// AmountFromCents converts stored cents into an Amount.
func AmountFromCents(cents int64) Amount {
	return Amount{Units: cents / 100, Cents: cents % 100}
}

// AmountToCents is the inverse of AmountFromCents.
func AmountToCents(a Amount) int64 {
	return a.Units*100 + a.Cents
}

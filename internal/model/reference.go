package model

import (
	"fmt"
	"strings"
)

// ReferenceKind names the tables whose rows are a bare name.
type ReferenceKind string

const (
	KindPublisher ReferenceKind = "publisher"
	KindLanguage  ReferenceKind = "language"
	KindGenre     ReferenceKind = "genre"
	KindSeries    ReferenceKind = "series"
)

var ReferenceKinds = []ReferenceKind{KindPublisher, KindLanguage, KindGenre, KindSeries}

func (k ReferenceKind) Valid() bool {
	for _, kind := range ReferenceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Reference is a publisher, language, genre or series.
type Reference struct {
	ID   int32  `json:"id"`
	Name string `json:"name" validate:"required,max=255"`
}

type Author struct {
	ID        int32  `json:"id"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	FirstName string `json:"first_name,omitempty"`
	Alias     string `json:"alias,omitempty"`
}

// FullName is "<first> <last>", or the last name alone.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Location is a shelf address. Zone, column and floor together act as the
// natural key during imports.
type Location struct {
	ID          int32  `json:"id"`
	Column      int32  `json:"column" validate:"gte=0"`
	Floor       string `json:"floor" validate:"required,max=64,nospace"`
	Zone        string `json:"zone,omitempty"`
	Description string `json:"description,omitempty"`
}

// String renders "<zone> C<column> E<floor>".
func (l *Location) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s C%d E%s", l.Zone, l.Column, l.Floor))
}

// Work is a titled piece that can be bound inside several books.
type Work struct {
	ID      int32  `json:"id"`
	Title   string `json:"title" validate:"required,max=512"`
	Summary string `json:"summary,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

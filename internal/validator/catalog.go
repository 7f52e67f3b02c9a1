package validator

import (
	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

// ValidateBook checks the scalar fields of a submitted book.
func ValidateBook(book *model.Book) error {
	if book == nil {
		return errors.New("book is nil")
	}
	return Struct(book)
}

func ValidateReference(ref *model.Reference) error {
	return Struct(ref)
}

func ValidateAuthor(author *model.Author) error {
	return Struct(author)
}

func ValidateLocation(location *model.Location) error {
	return Struct(location)
}

// ValidateBookLinks checks the roles and page ranges of the links submitted
// with a book. Both are written inside parentheses on export.
func ValidateBookLinks(authors []model.BookAuthorInput, works []model.BookWorkInput) error {
	for i := range authors {
		if err := Struct(&authors[i]); err != nil {
			return err
		}
	}
	for i := range works {
		if err := Struct(&works[i]); err != nil {
			return err
		}
	}
	return nil
}

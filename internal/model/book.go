package model // import "github.com/Xunop/library-tracker/internal/model"

// Zero values stand for absent optional fields: an ID of 0 is no reference,
// an empty string is no value, and a work order of 0 is unordered.

type Book struct {
	ID           int32  `json:"id"`
	Title        string `json:"title" validate:"required,max=512"`
	PublisherID  int32  `json:"publisher_id,omitempty"`
	LanguageID   int32  `json:"language_id,omitempty"`
	SeriesID     int32  `json:"series_id,omitempty"`
	SeriesNumber int32  `json:"series_number,omitempty" validate:"gte=0"`
	LocationID   int32  `json:"location_id,omitempty"`
	// Cover is the generated file name shared by the original and its thumbnail.
	Cover     string `json:"cover,omitempty"`
	CreatedTs int64  `json:"created_ts"`
	UpdatedTs int64  `json:"updated_ts"`

	Publisher *Reference    `json:"publisher,omitempty"`
	Language  *Reference    `json:"language,omitempty"`
	Series    *Reference    `json:"series,omitempty"`
	Location  *Location     `json:"location,omitempty"`
	Authors   []*BookAuthor `json:"authors"`
	Genres    []*Reference  `json:"genres"`
	Works     []*BookWork   `json:"works"`
}

// BookAuthor links a book to an author under a free text role. The same
// author may appear several times with different roles.
type BookAuthor struct {
	Author *Author `json:"author"`
	Role   string  `json:"role,omitempty"`
}

// BookWork places a work inside a book. A work appears at most once per book.
type BookWork struct {
	Work  *Work  `json:"work"`
	Order int32  `json:"order,omitempty"`
	Pages string `json:"pages,omitempty"`
}

type BookSort string

const (
	SortTitleAsc    BookSort = "title_asc"
	SortTitleDesc   BookSort = "title_desc"
	SortCreatedAsc  BookSort = "created_asc"
	SortCreatedDesc BookSort = "created_desc"
)

// ParseBookSort falls back to newest first for unknown keys.
func ParseBookSort(s string) BookSort {
	switch BookSort(s) {
	case SortTitleAsc, SortTitleDesc, SortCreatedAsc:
		return BookSort(s)
	}
	return SortCreatedDesc
}

// BookPageSize is the fixed number of books per catalog page.
const BookPageSize = 20

// FindBook holds the catalog filters. Filters compose conjunctively and
// zero values are ignored.
type FindBook struct {
	ID          *int32
	Title       string
	GenreID     int32
	PublisherID int32
	SeriesID    int32
	Author      string
	Zone        string
	Column      *int32
	Floor       string
	Sort        BookSort
	Page        int
}

type BookPage struct {
	Books    []*Book `json:"books"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	Pages    int     `json:"pages"`
	PageSize int     `json:"page_size"`
}

// BookAuthorInput and BookWorkInput carry the link sets submitted with a
// book. They replace the existing links entirely.
type BookAuthorInput struct {
	AuthorID int32
	Role     string `validate:"max=255,balanced"`
}

type BookWorkInput struct {
	// WorkID wins over Title when both are set.
	WorkID int32
	Title  string
	Order  int32
	Pages  string `validate:"max=255,balanced"`
}

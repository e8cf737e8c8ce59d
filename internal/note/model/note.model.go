package model

import (
	"beleske/pkg/form"
	"beleske/store"
)

// NoteForm is the create/edit form. Fields are taken as submitted; storage
// enforces the column limits.
type NoteForm struct {
	Title   string `form:"note_title"`
	Content string `form:"note_content"`
}

type SearchForm struct {
	Searched string `form:"searched" validate:"required"`
}

// SearchPage is the data of the search results page.
type SearchPage struct {
	Searched string
	Notes    []store.Note
	Errors   form.Errors
}

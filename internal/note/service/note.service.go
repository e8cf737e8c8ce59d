package service

import (
	"context"
	"errors"

	"beleske/socket"
	"beleske/store"
)

var (
	ErrForbidden       = errors.New("no access to this note")
	ErrUnauthenticated = errors.New("authentication required")
)

type Repository interface {
	Create(ctx context.Context, note *store.Note) error
	Get(ctx context.Context, id uint) (*store.Note, error)
	ListAll(ctx context.Context) ([]store.Note, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]store.Note, error)
	Update(ctx context.Context, note *store.Note) error
	Delete(ctx context.Context, id uint) error
	SearchTitle(ctx context.Context, query string, ownerID *uint) ([]store.Note, error)
}

// Publisher receives note change events; *socket.Hub implements it.
type Publisher interface {
	Publish(room uint, msg socket.WSMessage)
}

type Options struct {
	// Accounts enables per-user ownership. When false every note is public.
	Accounts bool
	// StrictOwnership also gates deletion on ownership and scopes search to
	// the caller's notes.
	StrictOwnership bool
}

// NoteService applies the ownership rules. userID 0 means an anonymous caller.
type NoteService struct {
	Repo Repository
	Hub  Publisher
	Opts Options
}

func NewNoteService(repo Repository, hub Publisher, opts Options) *NoteService {
	return &NoteService{Repo: repo, Hub: hub, Opts: opts}
}

// List returns the notes visible on the listing page. Anonymous callers get
// an empty list when accounts are enabled.
func (s *NoteService) List(ctx context.Context, userID uint) ([]store.Note, error) {
	if !s.Opts.Accounts {
		return s.Repo.ListAll(ctx)
	}
	if userID == 0 {
		return []store.Note{}, nil
	}
	return s.Repo.ListByOwner(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID uint, title, content string) (*store.Note, error) {
	note := &store.Note{Title: title, Content: content}
	if s.Opts.Accounts {
		if userID == 0 {
			return nil, ErrUnauthenticated
		}
		note.OwnerID = &userID
	}

	if err := s.Repo.Create(ctx, note); err != nil {
		return nil, err
	}
	s.publish(socket.NoteCreatedType, note)
	return note, nil
}

// Get looks a note up and, with accounts enabled, refuses it to anyone but
// its owner.
func (s *NoteService) Get(ctx context.Context, userID, id uint) (*store.Note, error) {
	note, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Opts.Accounts && !note.OwnedBy(userID) {
		return nil, ErrForbidden
	}
	return note, nil
}

// Update overwrites title and content. The ownership check runs before the
// write; concurrent updates are last-write-wins.
func (s *NoteService) Update(ctx context.Context, userID, id uint, title, content string) (*store.Note, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	note.Title = title
	note.Content = content
	if err := s.Repo.Update(ctx, note); err != nil {
		return nil, err
	}
	s.publish(socket.NoteUpdatedType, note)
	return note, nil
}

// Delete removes a note. Ownership is only enforced in strict mode.
func (s *NoteService) Delete(ctx context.Context, userID, id uint) error {
	note, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.strict() && !note.OwnedBy(userID) {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishDeleted(note)
	return nil
}

// Search matches query against every note title, case-insensitively, sorted
// by title. In strict mode only the caller's notes are searched.
func (s *NoteService) Search(ctx context.Context, userID uint, query string) ([]store.Note, error) {
	var owner *uint
	if s.strict() {
		owner = &userID
	}
	return s.Repo.SearchTitle(ctx, query, owner)
}

func (s *NoteService) strict() bool {
	return s.Opts.Accounts && s.Opts.StrictOwnership
}

func (s *NoteService) publish(kind string, note *store.Note) {
	if s.Hub == nil {
		return
	}
	payload := &socket.NotePayload{ID: note.ID, Title: note.Title, Content: note.Content}
	s.Hub.Publish(note.Owner(), socket.WSMessage{Type: kind, NoteID: note.ID, Payload: payload})
}

func (s *NoteService) publishDeleted(note *store.Note) {
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(note.Owner(), socket.WSMessage{Type: socket.NoteDeletedType, NoteID: note.ID})
}

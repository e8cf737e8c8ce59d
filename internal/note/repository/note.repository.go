package repository

import (
	"context"
	"errors"
	"strings"

	"beleske/pkg/logger"
	"beleske/store"

	"gorm.io/gorm"
)

type NoteRepository struct {
	DB *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *store.Note) error {
	err := r.DB.WithContext(ctx).Create(note).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to create note: %v", err)
	}
	return store.Classify(err)
}

func (r *NoteRepository) Get(ctx context.Context, id uint) (*store.Note, error) {
	var note store.Note
	err := r.DB.WithContext(ctx).First(&note, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Sugar.Errorf("Failed to get note %d: %v", id, err)
		}
		return nil, store.Classify(err)
	}
	return &note, nil
}

func (r *NoteRepository) ListAll(ctx context.Context) ([]store.Note, error) {
	var notes []store.Note
	err := r.DB.WithContext(ctx).Order("id").Find(&notes).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes: %v", err)
	}
	return notes, store.Classify(err)
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]store.Note, error) {
	var notes []store.Note
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&notes).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes for user %d: %v", ownerID, err)
	}
	return notes, store.Classify(err)
}

// Update overwrites title and content of an existing note.
func (r *NoteRepository) Update(ctx context.Context, note *store.Note) error {
	result := r.DB.WithContext(ctx).Model(note).Updates(map[string]any{
		"title":   note.Title,
		"content": note.Content,
	})
	if result.Error != nil {
		logger.Sugar.Errorf("Failed to update note %d: %v", note.ID, result.Error)
		return store.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&store.Note{}, id)
	if result.Error != nil {
		logger.Sugar.Errorf("Failed to delete note %d: %v", id, result.Error)
		return store.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SearchTitle returns the notes whose title contains query, ignoring case,
// sorted by title. A non-nil ownerID restricts the search to that user's notes.
func (r *NoteRepository) SearchTitle(ctx context.Context, query string, ownerID *uint) ([]store.Note, error) {
	pattern := "%" + escapeLike(query) + "%"
	tx := r.DB.WithContext(ctx).Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, pattern)
	if ownerID != nil {
		tx = tx.Where("owner_id = ?", *ownerID)
	}

	var notes []store.Note
	err := tx.Order("title ASC").Order("id").Find(&notes).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to search notes for %q: %v", query, err)
	}
	return notes, store.Classify(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

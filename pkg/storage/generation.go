package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Generation records one generation request and its outcome.
type Generation struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Mode            string  `gorm:"not null;default:'';index"`
	Genre           string  `gorm:"not null;default:'';index"`
	DurationSeconds int     `gorm:"not null;default:0"`
	Temperature     float64 `gorm:"not null;default:0"`
	Preset          string  `gorm:"not null;default:''"`
	Prompt          string  `gorm:"not null;default:''"`
	Status          string  `gorm:"not null;default:''"`
	Output          string  `gorm:"not null;default:''"`
}

func (s *Store) GetGeneration(ctx context.Context, id string) (*Generation, error) {
	var v Generation
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get generation %s: %w", id, err)
	}
	return &v, nil
}

func (s *Store) SetGeneration(ctx context.Context, v *Generation) error {
	if err := s.db.Save(v).Error; err != nil {
		return fmt.Errorf("storage: failed to set generation %s: %w", v.ID, err)
	}
	return nil
}

func (s *Store) DeleteGeneration(ctx context.Context, id string) error {
	if err := s.db.Delete(&Generation{ID: id}, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("storage: failed to delete generation %s: %w", id, err)
	}
	return nil
}

func (s *Store) ListGenerations(ctx context.Context, page, size int, orderBy string, filter ...Filter) ([]*Generation, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size
	vs := []*Generation{}

	q := s.db.Offset(offset).Limit(size)
	for _, f := range filter {
		q = q.Where(f.Query, f.Args...)
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	if err := q.Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("storage: failed to list generations: %w", err)
	}
	return vs, nil
}

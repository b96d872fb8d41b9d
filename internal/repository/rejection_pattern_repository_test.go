package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"arbitrage/internal/models"
)

func TestRejectionPatternRepositoryGetByTypeAndKey_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM rejection_patterns WHERE pattern_type = \$1 AND pattern_key = \$2`).
		WithArgs(models.PatternTypeAccessoryWord, "case").
		WillReturnError(sql.ErrNoRows)

	repo := &RejectionPatternRepository{db: db}
	_, err = repo.GetByTypeAndKey(models.PatternTypeAccessoryWord, "case")
	if !errors.Is(err, ErrRejectionPatternNotFound) {
		t.Errorf("expected ErrRejectionPatternNotFound, got %v", err)
	}
}

func TestRejectionPatternRepositoryGetActiveByType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "pattern_type", "pattern_key", "pattern_data", "hit_count", "confidence", "is_active"}).
		AddRow(1, models.PatternTypeAccessoryWord, "case", nil, 3, 0.8, true)
	mock.ExpectQuery(`SELECT .+ FROM rejection_patterns WHERE pattern_type = \$1 AND is_active = true`).
		WithArgs(models.PatternTypeAccessoryWord).
		WillReturnRows(rows)

	repo := NewRejectionPatternRepository(db)
	out, err := repo.GetActiveByType(models.PatternTypeAccessoryWord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].PatternKey != "case" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestRejectionPatternRepositoryUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO rejection_patterns`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hit_count", "confidence"}).AddRow(1, 4, 0.9))

	repo := NewRejectionPatternRepository(db)
	p := &models.RejectionPattern{PatternType: models.PatternTypeAccessoryWord, PatternKey: "case", Confidence: 0.8}
	if err := repo.Upsert(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HitCount != 4 || p.Confidence != 0.9 {
		t.Errorf("unexpected upsert result: %+v", p)
	}
}

func TestRejectionPatternRepositoryDeactivate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE rejection_patterns SET is_active = false WHERE id = \$1`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRejectionPatternRepository(db)
	err = repo.Deactivate(999)
	if !errors.Is(err, ErrRejectionPatternNotFound) {
		t.Errorf("expected ErrRejectionPatternNotFound, got %v", err)
	}
}

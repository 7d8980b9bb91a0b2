package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gescom-backend/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository covers the queries that cut across the three document
// tables: numero uniqueness scans for the sequence generator and the shared
// totals write used by the totals engine.
type DocumentRepository interface {
	// MaxNumeroSuffix returns the highest numeric suffix among all numeros
	// starting with prefix, soft-deleted rows included. Returns 0 when none.
	MaxNumeroSuffix(ctx context.Context, docType, prefix string) (int, error)
	// NumeroExists reports whether a numero is already taken, soft-deleted
	// rows included.
	NumeroExists(ctx context.Context, docType, numero string) (bool, error)
	// UpdateTotals persists the four derived monetary fields of a document.
	UpdateTotals(ctx context.Context, doc model.Document) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) numeroQuery(ctx context.Context, docType string) (*gorm.DB, string, error) {
	db := GetDB(ctx, r.db).Unscoped()
	switch docType {
	case model.DocTypeDevis:
		return db.Model(&model.Quote{}), "numero", nil
	case model.DocTypeOrdre:
		return db.Model(&model.WorkOrder{}), "numero", nil
	case model.DocTypeFacture:
		return db.Model(&model.Invoice{}), "numero", nil
	case model.DocTypeAvoir:
		// Credit-note numbers live on cancellation records.
		return db.Model(&model.Cancellation{}), "numero_avoir", nil
	default:
		return nil, "", fmt.Errorf("unknown document type %q", docType)
	}
}

func (r *documentRepository) MaxNumeroSuffix(ctx context.Context, docType, prefix string) (int, error) {
	query, column, err := r.numeroQuery(ctx, docType)
	if err != nil {
		return 0, err
	}

	var numeros []string
	if err := query.Where(column+" LIKE ?", prefix+"%").Pluck(column, &numeros).Error; err != nil {
		return 0, err
	}

	max := 0
	for _, numero := range numeros {
		if suffix, ok := parseSuffix(numero); ok && suffix > max {
			max = suffix
		}
	}
	return max, nil
}

func (r *documentRepository) NumeroExists(ctx context.Context, docType, numero string) (bool, error) {
	query, column, err := r.numeroQuery(ctx, docType)
	if err != nil {
		return false, err
	}

	var count int64
	if err := query.Where(column+" = ?", numero).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *documentRepository) UpdateTotals(ctx context.Context, doc model.Document) error {
	ht, tva, css, ttc := doc.Totals()
	return GetDB(ctx, r.db).Model(doc).Updates(map[string]interface{}{
		"montant_ht":  ht,
		"montant_tva": tva,
		"montant_css": css,
		"montant_ttc": ttc,
	}).Error
}

// parseSuffix extracts the trailing numeric segment of a numero
// (FAC-2025-0042 -> 42).
func parseSuffix(numero string) (int, bool) {
	idx := strings.LastIndex(numero, "-")
	if idx < 0 || idx == len(numero)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(numero[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

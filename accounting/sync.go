package accounting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoiceflow/logger"
	"invoiceflow/metrics"
	"invoiceflow/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Publisher hands a journal entry to the external bookkeeping system and
// returns its reference there.
type Publisher interface {
	Publish(ctx context.Context, entry models.JournalEntry) (string, error)
}

// LogPublisher is the default publisher. It only logs the entry.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, entry models.JournalEntry) (string, error) {
	ref := entry.ExternalRef
	if ref == "" {
		ref = "je-" + uuid.NewString()
	}
	log := logger.WithComponent("accounting")
	log.Info().
		Uint("invoice_id", entry.InvoiceID).
		Str("invoice_type", string(entry.InvoiceType)).
		Str("debit", entry.DebitTotal.StringFixed(2)).
		Str("credit", entry.CreditTotal.StringFixed(2)).
		Int("revision", entry.Revision).
		Str("ref", ref).
		Msg("journal entry published")
	return ref, nil
}

type Syncer struct {
	Publisher Publisher
	Now       func() time.Time
}

func NewSyncer(p Publisher) *Syncer {
	if p == nil {
		p = LogPublisher{}
	}
	return &Syncer{Publisher: p, Now: time.Now}
}

// Entry builds the journal entry row for an invoice without saving it.
func Entry(inv models.Invoice) (models.JournalEntry, error) {
	j, err := BuildJournal(inv.Type, inv.Totals())
	if err != nil {
		return models.JournalEntry{}, err
	}
	raw, err := json.Marshal(j.Lines)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("encode journal lines: %w", err)
	}
	debit, credit := j.Sums()
	return models.JournalEntry{
		InvoiceID:   inv.ID,
		InvoiceType: inv.Type,
		Lines:       datatypes.JSON(raw),
		DebitTotal:  debit,
		CreditTotal: credit,
	}, nil
}

// Sync upserts the invoice's journal entry, publishes it and records the
// external reference on both the entry and the invoice. Running it twice
// updates the same entry.
func (s *Syncer) Sync(ctx context.Context, tx *gorm.DB, inv *models.Invoice) (models.JournalEntry, error) {
	entry, err := Entry(*inv)
	if err != nil {
		metrics.JournalSyncs.WithLabelValues("invalid").Inc()
		return models.JournalEntry{}, err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "invoice_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"invoice_type": entry.InvoiceType,
			"lines":        entry.Lines,
			"debit_total":  entry.DebitTotal,
			"credit_total": entry.CreditTotal,
			"revision":     gorm.Expr("journal_entries.revision + 1"),
			"updated_at":   s.Now(),
		}),
	}).Create(&entry).Error; err != nil {
		metrics.JournalSyncs.WithLabelValues("error").Inc()
		return models.JournalEntry{}, fmt.Errorf("upsert journal entry: %w", err)
	}

	// reload: on conflict the in-memory row lacks id, revision and the previous ref
	if err := tx.Where("invoice_id = ?", inv.ID).First(&entry).Error; err != nil {
		return models.JournalEntry{}, err
	}

	ref, err := s.Publisher.Publish(ctx, entry)
	if err != nil {
		metrics.JournalSyncs.WithLabelValues("error").Inc()
		return models.JournalEntry{}, fmt.Errorf("publish journal entry: %w", err)
	}

	now := s.Now()
	entry.ExternalRef = ref
	entry.SyncedAt = &now
	if err := tx.Model(&entry).Updates(map[string]interface{}{
		"external_ref": ref,
		"synced_at":    now,
	}).Error; err != nil {
		return models.JournalEntry{}, err
	}

	inv.QuickBooksRef = &ref
	inv.SyncedAt = &now
	if err := tx.Model(inv).Updates(map[string]interface{}{
		"quick_books_ref": ref,
		"synced_at":       now,
	}).Error; err != nil {
		return models.JournalEntry{}, err
	}

	metrics.JournalSyncs.WithLabelValues("ok").Inc()
	return entry, nil
}

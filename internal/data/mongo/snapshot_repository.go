// Package mongo stores the raw ledger snapshots captured during scenario runs.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// SnapshotCollectionName is the name of the snapshot collection in MongoDB
	SnapshotCollectionName = "ledger_snapshots"
)

// Amounts are stored as decimal strings so they round-trip exactly

type accountDocument struct {
	ID         string `bson:"id"`
	CustomerID string `bson:"customer_id"`
	Type       string `bson:"type"`
	Balance    string `bson:"balance"`
}

type transactionDocument struct {
	ID          string `bson:"id"`
	AccountID   string `bson:"account_id"`
	Type        string `bson:"type"`
	Date        string `bson:"date"`
	Amount      string `bson:"amount"`
	Description string `bson:"description"`
}

type snapshotDocument struct {
	RunID        string                `bson:"run_id"`
	Scenario     string                `bson:"scenario"`
	Stage        string                `bson:"stage"`
	AccountID    string                `bson:"account_id"`
	Account      *accountDocument      `bson:"account,omitempty"`
	Transactions []transactionDocument `bson:"transactions"`
	CapturedAt   time.Time             `bson:"captured_at"`
}

// SnapshotRepository implements the report.SnapshotRepository interface for MongoDB
type SnapshotRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSnapshotRepository creates a new MongoDB snapshot repository
func NewSnapshotRepository(logger *slog.Logger, db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

var _ report.SnapshotRepository = (*SnapshotRepository)(nil)

// EnsureIndexes creates the run_id lookup index if it is missing
func (r *SnapshotRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(SnapshotCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "run_id", Value: 1}, {Key: "captured_at", Value: 1}},
	})
	if err != nil {
		r.logger.Error("Failed to create snapshot index", "error", err)
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}
	return nil
}

// Save stores one snapshot
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *report.Snapshot) error {
	collection := r.db.Collection(SnapshotCollectionName)

	if _, err := collection.InsertOne(ctx, toDocument(snapshot)); err != nil {
		r.logger.Error("Failed to save ledger snapshot",
			"run_id", snapshot.RunID.String(),
			"stage", snapshot.Stage,
			"error", err)
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	return nil
}

// GetByRunID returns every snapshot of a run in capture order
func (r *SnapshotRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*report.Snapshot, error) {
	collection := r.db.Collection(SnapshotCollectionName)

	filter := bson.M{"run_id": runID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "captured_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get ledger snapshots",
			"run_id", runID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []snapshotDocument
	if err := cursor.All(ctx, &documents); err != nil {
		r.logger.Error("Failed to decode ledger snapshots",
			"run_id", runID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger snapshots: %w", err)
	}

	snapshots := make([]*report.Snapshot, 0, len(documents))
	for i := range documents {
		snapshot, err := fromDocument(&documents[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert snapshot %s of run %s: %w", documents[i].Stage, runID, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func toDocument(s *report.Snapshot) snapshotDocument {
	doc := snapshotDocument{
		RunID:        s.RunID.String(),
		Scenario:     s.Scenario,
		Stage:        s.Stage,
		AccountID:    s.AccountID,
		Transactions: make([]transactionDocument, 0, len(s.Transactions)),
		CapturedAt:   s.CapturedAt,
	}
	if s.Account != nil {
		doc.Account = &accountDocument{
			ID:         s.Account.ID,
			CustomerID: s.Account.CustomerID,
			Type:       string(s.Account.Type),
			Balance:    s.Account.Balance.String(),
		}
	}
	for _, tx := range s.Transactions {
		doc.Transactions = append(doc.Transactions, transactionDocument{
			ID:          tx.ID,
			AccountID:   tx.AccountID,
			Type:        string(tx.Type),
			Date:        tx.Date,
			Amount:      tx.Amount.String(),
			Description: tx.Description,
		})
	}
	return doc
}

func fromDocument(doc *snapshotDocument) (*report.Snapshot, error) {
	runID, err := uuid.Parse(doc.RunID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", doc.RunID, err)
	}

	s := &report.Snapshot{
		RunID:      runID,
		Scenario:   doc.Scenario,
		Stage:      doc.Stage,
		AccountID:  doc.AccountID,
		CapturedAt: doc.CapturedAt,
	}

	if doc.Account != nil {
		balance, err := decimal.NewFromString(doc.Account.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q: %w", doc.Account.Balance, err)
		}
		s.Account = &account.Account{
			ID:         doc.Account.ID,
			CustomerID: doc.Account.CustomerID,
			Type:       account.Type(doc.Account.Type),
			Balance:    balance,
		}
	}

	for _, txDoc := range doc.Transactions {
		amount, err := decimal.NewFromString(txDoc.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q in transaction %s: %w", txDoc.Amount, txDoc.ID, err)
		}
		s.Transactions = append(s.Transactions, transaction.Transaction{
			ID:          txDoc.ID,
			AccountID:   txDoc.AccountID,
			Type:        transaction.Type(txDoc.Type),
			Date:        txDoc.Date,
			Amount:      amount,
			Description: txDoc.Description,
		})
	}
	return s, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const failuresCollection = "failure_reports"

// FailureRepository appends failure reports to the failure_reports
// collection. Documents are never updated.
type FailureRepository struct {
	coll *mongo.Collection
}

var _ ports.FailureSink = (*FailureRepository)(nil)

func NewFailureRepository(db *mongo.Database) *FailureRepository {
	return &FailureRepository{coll: db.Collection(failuresCollection)}
}

// EnsureIndexes creates the lookup indexes used when auditing a user's
// history, plus a 90 day expiry on the report time.
func (r *FailureRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "target", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "op", Value: 1}, {Key: "kind", Value: 1}}},
		{
			Keys:    bson.D{{Key: "at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("failure_reports indexes: %w", err)
	}
	return nil
}

func (r *FailureRepository) Record(ctx context.Context, report domain.FailureReport) error {
	if _, err := r.coll.InsertOne(ctx, failureDocument(report)); err != nil {
		return fmt.Errorf("insert failure report: %w", err)
	}
	return nil
}

func failureDocument(report domain.FailureReport) bson.M {
	doc := bson.M{
		"op":          report.Op,
		"kind":        report.Kind(),
		"at":          report.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if report.Target != "" {
		doc["target"] = report.Target
	}
	if report.Actor != "" {
		doc["actor"] = report.Actor
	}
	if report.Err != nil {
		doc["error"] = report.Err.Error()
	}
	var netErr *domain.NetworkError
	if errors.As(report.Err, &netErr) && netErr.Status != 0 {
		doc["status"] = netErr.Status
	}
	return doc
}

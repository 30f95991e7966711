package entity

import (
	"time"

	"ims-storefront-bridge/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSyncRunDoc represents one sync report in MongoDB
type MongoSyncRunDoc struct {
	ID           primitive.ObjectID       `bson:"_id,omitempty"`
	SellerNumber string                   `bson:"sellerNumber"`
	Shop         string                   `bson:"shop"`
	StartedAt    time.Time                `bson:"startedAt"`
	FinishedAt   time.Time                `bson:"finishedAt"`
	Created      int                      `bson:"created"`
	Skipped      int                      `bson:"skipped"`
	Failed       int                      `bson:"failed"`
	Outcomes     []MongoProductOutcomeDoc `bson:"outcomes"`
}

// MongoProductOutcomeDoc is one product line of a stored sync report
type MongoProductOutcomeDoc struct {
	ProductNumber string `bson:"productNumber"`
	Status        string `bson:"status"`
	StorefrontID  uint64 `bson:"storefrontId,omitempty"`
	Variants      int    `bson:"variants"`
	Images        int    `bson:"images"`
	Stage         string `bson:"stage,omitempty"`
	Error         string `bson:"error,omitempty"`
}

// ToDomain converts the MongoDB document to a domain report
func (d *MongoSyncRunDoc) ToDomain() *domain.SyncReport {
	outcomes := make([]domain.ProductOutcome, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		outcomes = append(outcomes, domain.ProductOutcome{
			ProductNumber: o.ProductNumber,
			Status:        domain.SyncStatus(o.Status),
			StorefrontID:  o.StorefrontID,
			Variants:      o.Variants,
			Images:        o.Images,
			Stage:         domain.SyncStage(o.Stage),
			Error:         o.Error,
		})
	}

	return &domain.SyncReport{
		SellerNumber: d.SellerNumber,
		Shop:         d.Shop,
		StartedAt:    d.StartedAt,
		FinishedAt:   d.FinishedAt,
		Created:      d.Created,
		Skipped:      d.Skipped,
		Failed:       d.Failed,
		Outcomes:     outcomes,
	}
}

// MongoSyncRunDocFromDomain converts a domain report to a MongoDB document
func MongoSyncRunDocFromDomain(report *domain.SyncReport) *MongoSyncRunDoc {
	outcomes := make([]MongoProductOutcomeDoc, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		outcomes = append(outcomes, MongoProductOutcomeDoc{
			ProductNumber: o.ProductNumber,
			Status:        string(o.Status),
			StorefrontID:  o.StorefrontID,
			Variants:      o.Variants,
			Images:        o.Images,
			Stage:         string(o.Stage),
			Error:         o.Error,
		})
	}

	return &MongoSyncRunDoc{
		SellerNumber: report.SellerNumber,
		Shop:         report.Shop,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Created:      report.Created,
		Skipped:      report.Skipped,
		Failed:       report.Failed,
		Outcomes:     outcomes,
	}
}

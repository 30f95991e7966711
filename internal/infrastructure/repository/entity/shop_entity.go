package entity

import (
	"time"

	"ims-storefront-bridge/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents an installed shop in MongoDB
type MongoShopDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Shop           string             `bson:"shop"`
	EncryptedToken string             `bson:"encryptedToken"`
	Scope          string             `bson:"scope"`
	InstalledAt    time.Time          `bson:"installedAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity. The token stays encrypted.
func (d *MongoShopDoc) ToDomain() *domain.ShopCredential {
	return &domain.ShopCredential{
		Shop:           d.Shop,
		EncryptedToken: d.EncryptedToken,
		Scope:          d.Scope,
		InstalledAt:    d.InstalledAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(cred *domain.ShopCredential) *MongoShopDoc {
	return &MongoShopDoc{
		Shop:           cred.Shop,
		EncryptedToken: cred.EncryptedToken,
		Scope:          cred.Scope,
		InstalledAt:    cred.InstalledAt,
		UpdatedAt:      cred.UpdatedAt,
	}
}

package pickupinstore

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// StorePickupPointModel is the persistence model for StorePickupPoint
type StorePickupPointModel struct {
	models.BaseModel
	StoreID      *uuid.UUID       `gorm:"type:uuid;index"`
	AddressID    uuid.UUID        `gorm:"type:uuid;not null"`
	Name         string           `gorm:"type:varchar(400);not null"`
	Description  string           `gorm:"type:text"`
	OpeningHours string           `gorm:"type:varchar(400)"`
	PickupFee    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	DisplayOrder int              `gorm:"not null;default:0"`
	Latitude     *decimal.Decimal `gorm:"type:decimal(18,8)"`
	Longitude    *decimal.Decimal `gorm:"type:decimal(18,8)"`
}

// TableName returns the table name for GORM
func (StorePickupPointModel) TableName() string {
	return "store_pickup_point"
}

// ToDomain converts the model to the domain entity
func (m *StorePickupPointModel) ToDomain() *StorePickupPoint {
	return &StorePickupPoint{
		BaseEntity:   m.Identity(),
		StoreID:      m.StoreID,
		AddressID:    m.AddressID,
		Name:         m.Name,
		Description:  m.Description,
		OpeningHours: m.OpeningHours,
		PickupFee:    m.PickupFee,
		DisplayOrder: m.DisplayOrder,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
	}
}

// StorePickupPointModelFromDomain creates a model from the domain entity
func StorePickupPointModelFromDomain(p *StorePickupPoint) *StorePickupPointModel {
	m := &StorePickupPointModel{
		StoreID:      p.StoreID,
		AddressID:    p.AddressID,
		Name:         p.Name,
		Description:  p.Description,
		OpeningHours: p.OpeningHours,
		PickupFee:    p.PickupFee,
		DisplayOrder: p.DisplayOrder,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// NewStorePickupPointRepository creates the repository for pickup points
func NewStorePickupPointRepository(db *gorm.DB) *persistence.GormRepository[StorePickupPoint, StorePickupPointModel] {
	return persistence.NewGormRepository(db, StorePickupPointModelFromDomain, (*StorePickupPointModel).ToDomain)
}

// createTable creates the plugin table unless it exists
func createTable(db *gorm.DB) error {
	m := db.Migrator()
	if m.HasTable(&StorePickupPointModel{}) {
		return nil
	}
	return m.CreateTable(&StorePickupPointModel{})
}

// dropTable removes the plugin table
func dropTable(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&StorePickupPointModel{}) {
		return nil
	}
	return m.DropTable(&StorePickupPointModel{})
}

package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/stores"
)

// StoreModel is the persistence model for the Store domain entity.
type StoreModel struct {
	BaseModel
	Name              string     `gorm:"type:varchar(400);not null"`
	URL               string     `gorm:"column:url;type:varchar(400);not null"`
	SSLEnabled        bool       `gorm:"column:ssl_enabled;not null;default:false"`
	Hosts             string     `gorm:"type:varchar(1000)"`
	DefaultCurrency   string     `gorm:"type:varchar(5)"`
	DefaultLanguageID *uuid.UUID `gorm:"type:uuid"`
	DisplayOrder      int        `gorm:"not null;default:0"`
	CompanyName       string     `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "store"
}

// ToDomain converts the persistence model to a domain Store entity.
func (m *StoreModel) ToDomain() *stores.Store {
	return &stores.Store{
		BaseEntity:        m.Identity(),
		Name:              m.Name,
		URL:               m.URL,
		SSLEnabled:        m.SSLEnabled,
		Hosts:             m.Hosts,
		DefaultCurrency:   m.DefaultCurrency,
		DefaultLanguageID: m.DefaultLanguageID,
		DisplayOrder:      m.DisplayOrder,
		CompanyName:       m.CompanyName,
	}
}

// StoreModelFromDomain creates a persistence model from a domain Store entity.
func StoreModelFromDomain(s *stores.Store) *StoreModel {
	m := &StoreModel{
		Name:              s.Name,
		URL:               s.URL,
		SSLEnabled:        s.SSLEnabled,
		Hosts:             s.Hosts,
		DefaultCurrency:   s.DefaultCurrency,
		DefaultLanguageID: s.DefaultLanguageID,
		DisplayOrder:      s.DisplayOrder,
		CompanyName:       s.CompanyName,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

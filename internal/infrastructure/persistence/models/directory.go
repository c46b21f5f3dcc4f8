package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/directory"
)

// CountryModel is the persistence model for the Country domain entity.
type CountryModel struct {
	BaseModel
	Name               string `gorm:"type:varchar(100);not null"`
	TwoLetterIsoCode   string `gorm:"type:varchar(2);index"`
	ThreeLetterIsoCode string `gorm:"type:varchar(3);index"`
	NumericIsoCode     int    `gorm:"not null;default:0"`
	AllowsBilling      bool   `gorm:"not null"`
	AllowsShipping     bool   `gorm:"not null"`
	Published          bool   `gorm:"not null"`
	DisplayOrder       int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CountryModel) TableName() string {
	return "country"
}

// ToDomain converts the persistence model to a domain Country entity.
func (m *CountryModel) ToDomain() *directory.Country {
	return &directory.Country{
		BaseEntity:         m.Identity(),
		Name:               m.Name,
		TwoLetterIsoCode:   m.TwoLetterIsoCode,
		ThreeLetterIsoCode: m.ThreeLetterIsoCode,
		NumericIsoCode:     m.NumericIsoCode,
		AllowsBilling:      m.AllowsBilling,
		AllowsShipping:     m.AllowsShipping,
		Published:          m.Published,
		DisplayOrder:       m.DisplayOrder,
	}
}

// CountryModelFromDomain creates a persistence model from a domain Country entity.
func CountryModelFromDomain(c *directory.Country) *CountryModel {
	m := &CountryModel{
		Name:               c.Name,
		TwoLetterIsoCode:   c.TwoLetterIsoCode,
		ThreeLetterIsoCode: c.ThreeLetterIsoCode,
		NumericIsoCode:     c.NumericIsoCode,
		AllowsBilling:      c.AllowsBilling,
		AllowsShipping:     c.AllowsShipping,
		Published:          c.Published,
		DisplayOrder:       c.DisplayOrder,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// StateProvinceModel is the persistence model for the StateProvince domain entity.
type StateProvinceModel struct {
	BaseModel
	CountryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Abbreviation string    `gorm:"type:varchar(100);index"`
	Published    bool      `gorm:"not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StateProvinceModel) TableName() string {
	return "state_province"
}

// ToDomain converts the persistence model to a domain StateProvince entity.
func (m *StateProvinceModel) ToDomain() *directory.StateProvince {
	return &directory.StateProvince{
		BaseEntity:   m.Identity(),
		CountryID:    m.CountryID,
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		Published:    m.Published,
		DisplayOrder: m.DisplayOrder,
	}
}

// StateProvinceModelFromDomain creates a persistence model from a domain StateProvince entity.
func StateProvinceModelFromDomain(s *directory.StateProvince) *StateProvinceModel {
	m := &StateProvinceModel{
		CountryID:    s.CountryID,
		Name:         s.Name,
		Abbreviation: s.Abbreviation,
		Published:    s.Published,
		DisplayOrder: s.DisplayOrder,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// CurrencyModel is the persistence model for the Currency domain entity.
type CurrencyModel struct {
	BaseModel
	Name         string          `gorm:"type:varchar(50);not null"`
	CurrencyCode string          `gorm:"type:varchar(5);not null;uniqueIndex"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	Published    bool            `gorm:"not null"`
	DisplayOrder int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string {
	return "currency"
}

// ToDomain converts the persistence model to a domain Currency entity.
func (m *CurrencyModel) ToDomain() *directory.Currency {
	return &directory.Currency{
		BaseEntity:   m.Identity(),
		Name:         m.Name,
		CurrencyCode: m.CurrencyCode,
		Rate:         m.Rate,
		Published:    m.Published,
		DisplayOrder: m.DisplayOrder,
	}
}

// CurrencyModelFromDomain creates a persistence model from a domain Currency entity.
func CurrencyModelFromDomain(c *directory.Currency) *CurrencyModel {
	m := &CurrencyModel{
		Name:         c.Name,
		CurrencyCode: c.CurrencyCode,
		Rate:         c.Rate,
		Published:    c.Published,
		DisplayOrder: c.DisplayOrder,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/common"
)

// AddressModel is the persistence model for the Address domain entity.
type AddressModel struct {
	BaseModel
	FirstName       string     `gorm:"type:varchar(100)"`
	LastName        string     `gorm:"type:varchar(100)"`
	Email           string     `gorm:"type:varchar(200)"`
	Company         string     `gorm:"type:varchar(200)"`
	CountryID       *uuid.UUID `gorm:"type:uuid;index"`
	StateProvinceID *uuid.UUID `gorm:"type:uuid;index"`
	County          string     `gorm:"type:varchar(100)"`
	City            string     `gorm:"type:varchar(100)"`
	Address1        string     `gorm:"column:address1;type:varchar(400)"`
	Address2        string     `gorm:"column:address2;type:varchar(400)"`
	ZipPostalCode   string     `gorm:"type:varchar(20)"`
	PhoneNumber     string     `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "address"
}

// ToDomain converts the persistence model to a domain Address entity.
// Country and StateProvince are left for the caller to load.
func (m *AddressModel) ToDomain() *common.Address {
	return &common.Address{
		BaseEntity:      m.Identity(),
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           m.Email,
		Company:         m.Company,
		CountryID:       m.CountryID,
		StateProvinceID: m.StateProvinceID,
		County:          m.County,
		City:            m.City,
		Address1:        m.Address1,
		Address2:        m.Address2,
		ZipPostalCode:   m.ZipPostalCode,
		PhoneNumber:     m.PhoneNumber,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address entity.
func AddressModelFromDomain(a *common.Address) *AddressModel {
	m := &AddressModel{
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Company:         a.Company,
		CountryID:       a.CountryID,
		StateProvinceID: a.StateProvinceID,
		County:          a.County,
		City:            a.City,
		Address1:        a.Address1,
		Address2:        a.Address2,
		ZipPostalCode:   a.ZipPostalCode,
		PhoneNumber:     a.PhoneNumber,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

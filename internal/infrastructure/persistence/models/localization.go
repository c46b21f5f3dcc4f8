package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/localization"
)

// LanguageModel is the persistence model for the Language domain entity.
type LanguageModel struct {
	BaseModel
	Name            string `gorm:"type:varchar(100);not null"`
	LanguageCulture string `gorm:"type:varchar(20);not null"`
	UniqueSeoCode   string `gorm:"type:varchar(2)"`
	Published       bool   `gorm:"not null"`
	DisplayOrder    int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LanguageModel) TableName() string {
	return "language"
}

// ToDomain converts the persistence model to a domain Language entity.
func (m *LanguageModel) ToDomain() *localization.Language {
	return &localization.Language{
		BaseEntity:      m.Identity(),
		Name:            m.Name,
		LanguageCulture: m.LanguageCulture,
		UniqueSeoCode:   m.UniqueSeoCode,
		Published:       m.Published,
		DisplayOrder:    m.DisplayOrder,
	}
}

// LanguageModelFromDomain creates a persistence model from a domain Language entity.
func LanguageModelFromDomain(l *localization.Language) *LanguageModel {
	m := &LanguageModel{
		Name:            l.Name,
		LanguageCulture: l.LanguageCulture,
		UniqueSeoCode:   l.UniqueSeoCode,
		Published:       l.Published,
		DisplayOrder:    l.DisplayOrder,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// LocaleStringResourceModel is the persistence model for the LocaleStringResource domain entity.
type LocaleStringResourceModel struct {
	BaseModel
	LanguageID    uuid.UUID `gorm:"type:uuid;not null;index:idx_locale_resource_language_name,priority:1"`
	ResourceName  string    `gorm:"type:varchar(200);not null;index:idx_locale_resource_language_name,priority:2"`
	ResourceValue string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (LocaleStringResourceModel) TableName() string {
	return "locale_string_resource"
}

// ToDomain converts the persistence model to a domain LocaleStringResource entity.
func (m *LocaleStringResourceModel) ToDomain() *localization.LocaleStringResource {
	return &localization.LocaleStringResource{
		BaseEntity:    m.Identity(),
		LanguageID:    m.LanguageID,
		ResourceName:  m.ResourceName,
		ResourceValue: m.ResourceValue,
	}
}

// LocaleStringResourceModelFromDomain creates a persistence model from a domain LocaleStringResource entity.
func LocaleStringResourceModelFromDomain(r *localization.LocaleStringResource) *LocaleStringResourceModel {
	m := &LocaleStringResourceModel{
		LanguageID:    r.LanguageID,
		ResourceName:  r.ResourceName,
		ResourceValue: r.ResourceValue,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

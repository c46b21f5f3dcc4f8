package localization

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Language is a language the store is translated into.
type Language struct {
	shared.BaseEntity
	Name            string
	LanguageCulture string
	UniqueSeoCode   string
	Published       bool
	DisplayOrder    int
}

// LocaleStringResource is one translated string. ResourceName is compared
// case-insensitively.
type LocaleStringResource struct {
	shared.BaseEntity
	LanguageID    uuid.UUID
	ResourceName  string
	ResourceValue string
}

package stores

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Store is one storefront served by this installation.
type Store struct {
	shared.BaseEntity
	Name              string
	URL               string
	SSLEnabled        bool
	Hosts             string
	DefaultCurrency   string
	DefaultLanguageID *uuid.UUID
	DisplayOrder      int
	CompanyName       string
}

// ParseHostValues splits the comma separated Hosts field.
func (s *Store) ParseHostValues() []string {
	if s.Hosts == "" {
		return nil
	}
	parts := strings.Split(s.Hosts, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			hosts = append(hosts, p)
		}
	}
	return hosts
}

// ContainsHostValue reports whether host is listed in Hosts.
func (s *Store) ContainsHostValue(host string) bool {
	host = strings.TrimSpace(host)
	if host == "" {
		return false
	}
	for _, h := range s.ParseHostValues() {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// StoreContext resolves the store that serves the current request.
type StoreContext interface {
	CurrentStore(ctx context.Context) (*Store, error)
	// ActiveStoreScopeConfiguration returns the store an administrator is
	// editing settings for, or uuid.Nil for all stores.
	ActiveStoreScopeConfiguration(ctx context.Context) (uuid.UUID, error)
}

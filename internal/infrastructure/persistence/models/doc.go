// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Every model converts to its domain entity with ToDomain and back with a
// FromDomain constructor. Table names are singular to match the installation
// scripts under migrations/ and App_Data/Install/.
package models

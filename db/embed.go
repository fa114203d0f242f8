// Package db provides the embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed data used when no database is configured and by cmd/seed-db.
var (
	//go:embed seed/parts.json
	Parts []byte

	//go:embed seed/products.json
	Products []byte

	//go:embed seed/devices.json
	Devices []byte
)

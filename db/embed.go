// Package db embeds the SQL schema applied on startup.
package db

import _ "embed"

// Schema holds the idempotent DDL for every storefront table. It is applied
// by RunMigrations on boot; statements use IF NOT EXISTS so reruns are safe.
//
//go:embed migrations/001_schema.sql
var Schema string

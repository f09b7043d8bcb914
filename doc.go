// Package magesync synchronizes a Magento 1 store into a WoowUp CRM account.
//
// Each run imports one kind of record: customers created in the last days,
// orders placed in a date window, or products updated in the last months.
// Records are read through the store's RPC web services, mapped to WoowUp
// customers, purchases and products, and reconciled against the account so
// that running the same window twice creates nothing new.
//
// # Quick Start
//
//	magesync config init --config magesync.yaml
//	magesync customers --days 5
//	magesync orders --days 30 --to 2024-03-01 --update
//	magesync products --months 6
//
// # Key Packages
//
//	cmd/magesync                   - Command line entry point
//	internal/pipeline              - Date windows, mapping and import runs
//	internal/filters               - Built-in mapping filters
//	pkg/connector/source/magento   - Source sessions, retries and records
//	pkg/connector/destination/woowup - Destination API and reconciliation
//	pkg/config                     - YAML configuration with env overrides
//	pkg/errors                     - Structured error handling
//	pkg/logger                     - Structured logging
//	pkg/metrics                    - Prometheus metrics
//
// # Configuration
//
// Configuration is a single YAML document with source, destination, sync,
// reliability, logging and observability sections.
// Environment variables are supported with ${VAR_NAME} syntax, and a .env
// file in the working directory is loaded before the configuration.
package magesync

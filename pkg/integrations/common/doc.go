// Package common holds the strategy contracts shared by the per-platform
// integrations and the platform strategy table.
package common

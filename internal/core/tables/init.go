// Package tables registers every editor panel with the core registry.
// Import this package for its side effects before opening panels.
package tables

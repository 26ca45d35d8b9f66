// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text from the main content of a page, skipping
// scripts, styles and navigation.
package html

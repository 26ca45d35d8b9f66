// Package normalisers provides implementations of the Normaliser interface
// for the document formats found in process libraries. Each normaliser knows
// how to extract plain text from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; see Defaults.
package normalisers

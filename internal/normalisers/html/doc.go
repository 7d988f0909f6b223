// Package html turns help-center article HTML into clean plain text.
//
// The Cleaner parses markup permissively, drops scripts, styles and images,
// rewrites links as "text (href)", emits one line per block-level element
// and normalises whitespace. Normaliser wraps it as a driven.Normaliser.
package html

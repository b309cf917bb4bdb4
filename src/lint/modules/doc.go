// Package modules contains the built-in lint rules.
// Import this package to register all rules via their init() functions.
package modules

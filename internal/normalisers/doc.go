// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract page
// text from files with specific extensions.
//
// Normalisers are registered with a Registry at startup; NewDefaultRegistry
// wires every built-in format.
package normalisers

// Package html provides a Normaliser for HTML documents. It keeps the
// visible text, stripping tags, scripts and styles and decoding entities.
package html

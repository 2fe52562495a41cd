// Package normalisers turns uploaded files into plain text. Each
// sub-package handles a family of formats; Registry dispatches on MIME type.
package normalisers

// Package backend defines the capability shared by the numerical backends
// that solve a model by backward induction. Two implementations exist: an
// in-process solver (package interpreted) and a wrapper around an external
// executable (package compiled). Both take a locked, ready model and return
// it with solution artifacts attached.
package backend

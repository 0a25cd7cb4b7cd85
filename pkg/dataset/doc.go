// Package dataset exposes the reference data behind the car form: the sorted
// set of legal values per categorical field and the brand to model mapping
// used for cascading selections. Byte loading strategies live under
// internal/dataset/loader; this package only parses and answers queries.
package dataset

// Package statemap keeps the independently keyed namespaces of a model
// consistent: state-entry keys discovered from derivative linkage, derived
// initial-value names used to seed continued runs, and the symbolic-name
// to location mapping users address parameters through.
package statemap

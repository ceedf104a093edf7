// Package catalog holds the read-only variable inventory of a black-box
// dynamical model: name, causality, variability, start value, description,
// unit and derivative linkage for every exposed variable.
//
// The catalog is produced once when a model is loaded and never mutates.
// Everything downstream — state-entry discovery, location mapping, output
// selection and value resolution — keys off it:
//
//	cat, err := catalog.New(mdl.Variables())
//	if err != nil {
//	    // malformed catalog, cannot proceed
//	}
//	v, ok := cat.Lookup("bioreactor.V")
package catalog

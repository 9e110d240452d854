package medintel

import "github.com/procheck/medintel/store"

// ErrInvalidGraphDefinition is returned when a knowledge-graph definition
// fails structural validation at initialization (duplicate concept ids,
// dangling relationship references, out-of-range weights). It aliases the
// store's sentinel so errors.Is works against either name.
var ErrInvalidGraphDefinition = store.ErrInvalidDefinition

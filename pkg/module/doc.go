// Package module models loaded code units and how they are resolved.
//
// A Module is an ordered list of named exports. Routes produce modules for
// the server renderer and the hydrator loads them by component tag through
// a Loader. SelectComponent applies the single selection rule used by both.
package module

// Package publish uploads tagged client modules, and the manifest that
// lists them, to object storage so browsers can load them by module ID.
//
// Object keys mirror module IDs under a prefix: the module
// /widgets/counter.go is stored at <prefix>/widgets/counter.go and the
// manifest at <prefix>/openrsc.manifest.json.
package publish

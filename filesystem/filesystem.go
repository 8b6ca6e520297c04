// Package filesystem holds the process-wide afero backend.
//
// Everything that touches disk goes through API so tests can swap in an
// in-memory filesystem.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

func API() afero.Afero {
	return backend
}

// SetOsFs switches to the real filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a fresh in-memory filesystem.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

package repository

import "github.com/spf13/afero"

// FileSystem is the storage surface the run journal writes through. Tests
// swap in an in-memory implementation.
type FileSystem interface {
	afero.Fs
}

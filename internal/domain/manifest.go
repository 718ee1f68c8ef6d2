package domain

// Manifest is the version-bearing slice of a project manifest file
// (package.json). Only the fields this tool reads are modeled; writes are
// always delegated to the package tool.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Private bool   `json:"private"`
}

package backup

import "fmt"

// NewDestination creates a destination backend by type name.
// Supported kinds are "filesystem" (dir is the storage root) and
// "memory" (testing only).
func NewDestination(kind, dir string) (Destination, error) {
	switch kind {
	case "", "filesystem":
		if dir == "" {
			return nil, fmt.Errorf("filesystem backup destination requires a directory")
		}
		return NewFileSystemDestination(dir)
	case "memory":
		return NewMemoryDestination(), nil
	default:
		return nil, fmt.Errorf("unknown backup destination type: %s", kind)
	}
}

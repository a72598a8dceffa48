// Package ports defines the infrastructure contracts core packages depend
// on. Implementations live in adapters/.
package ports

import "time"

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts unique identifier generation. Generation runs are
// tagged with one ID each.
type IDGenerator interface {
	New() string
}

package cache

import "time"

// Record is the last observed dependency list of one source file
type Record struct {
	// File is the source file, relative to the project root
	File string `json:"file"`

	// ComputedAt is when the compiler was asked for the list. A record is
	// only trustworthy while nothing it names has been modified since.
	ComputedAt time.Time `json:"computed_at"`

	// Dependencies lists every file File includes, File itself among them
	Dependencies []string `json:"dependencies"`
}

// Stats summarizes what a cache holds
type Stats struct {
	Records  int
	Warnings int

	// Size of the database file in bytes
	Size int64
}

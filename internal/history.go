package internal

import "time"

// Commit is one saved revision of the snapshot history.
type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
	Parents   []string
}

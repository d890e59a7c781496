package db

import "time"

// Video represents a row in the videos table.
type Video struct {
	ID        int64
	Path      string
	Filename  string
	Extension string
	Filesize  int64
	Duration  float64
	HasAudio  bool
	OpenedAt  time.Time
}

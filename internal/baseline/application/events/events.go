package events

import "time"

// PartitionCalculated is published once per day type partition.
type PartitionCalculated struct {
	SubjectID  string
	DayType    string
	X          int
	Y          int
	Records    int
	Undefined  int
	OccurredAt time.Time
}

// BaselineCalculated is published after all partitions are concatenated.
type BaselineCalculated struct {
	SubjectID  string
	Records    int
	Defined    int
	FirstAt    time.Time
	LastAt     time.Time
	Duration   time.Duration
	OccurredAt time.Time
}

package hierarchy

// Level is a tier of the water distribution hierarchy, from bulk supply (L1)
// down to end-user metering (L4). Levels are independently metered record
// sets, not nested subsets; the relation between them is an accounting one.
type Level string

const (
	LevelL1 Level = "L1"
	LevelL2 Level = "L2"
	LevelL3 Level = "L3"
	LevelL4 Level = "L4"
)

// Levels lists the tiers from upstream to downstream.
func Levels() []Level {
	return []Level{LevelL1, LevelL2, LevelL3, LevelL4}
}

// IsValid checks if the level is one of the supported tiers.
func (l Level) IsValid() bool {
	switch l {
	case LevelL1, LevelL2, LevelL3, LevelL4:
		return true
	}
	return false
}

package session

// LevelThreshold returns the total experience needed to reach level.
// Level 1 starts at 0 and each level L above it costs another 100*L.
func LevelThreshold(level int) int {
	total := 0
	for l := 2; l <= level; l++ {
		total += 100 * l
	}
	return total
}

// LevelFor returns the level earned with xp experience.
func LevelFor(xp int) int {
	level := 1
	for xp >= LevelThreshold(level+1) {
		level++
	}
	return level
}

// LevelProgress reports how far xp is into its level: the experience
// earned since the level started, and the experience the level spans.
func LevelProgress(xp int) (into, span int) {
	level := LevelFor(xp)
	start := LevelThreshold(level)
	return xp - start, LevelThreshold(level+1) - start
}

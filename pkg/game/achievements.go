package game

// Achievement names. Each is awarded at most once per session.
const (
	AchievementFirstSteps = "First Steps"
	AchievementExplorer   = "Explorer"
	AchievementCollector  = "Collector"
	AchievementSurvivor   = "Survivor"
	AchievementBraveHeart = "Brave Heart"
	AchievementFullHealth = "Full Health"
)

// CheckAchievements evaluates every trigger against the current state
// and records the ones newly satisfied, returning them. Triggers are
// re-checked on every turn, so a condition that becomes true late
// still fires — but never twice. Triggers are independent: a single
// health swing may legitimately fire more than one.
func (s *Session) CheckAchievements() []string {
	triggers := []struct {
		name string
		met  bool
	}{
		{AchievementFirstSteps, s.TurnCount == 1},
		{AchievementExplorer, len(s.MapNodes) >= 5},
		{AchievementCollector, len(s.Inventory) >= 3},
		{AchievementSurvivor, s.TurnCount >= 10},
		{AchievementBraveHeart, s.Health <= 30 && s.IsAlive},
		{AchievementFullHealth, s.Health == MaxHealth && s.TurnCount > 1},
	}

	var unlocked []string
	for _, t := range triggers {
		if !t.met || s.hasAchievement(t.name) {
			continue
		}
		s.Achievements = append(s.Achievements, t.name)
		unlocked = append(unlocked, t.name)
	}
	return unlocked
}

func (s *Session) hasAchievement(name string) bool {
	for _, a := range s.Achievements {
		if a == name {
			return true
		}
	}
	return false
}

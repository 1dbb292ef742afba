package report

import "github.com/rpggio/pmbot/internal/domain/project"

// GroupReminders groups stale projects by lead identity. Groups appear in the
// order their owner is first seen; projects keep their relative order.
// Projects without a lead share one group with an empty owner.
func GroupReminders(stale []project.Project) []ReminderGroup {
	var groups []ReminderGroup
	index := make(map[string]int)
	for _, p := range stale {
		owner := p.Owner()
		i, ok := index[owner.ID]
		if !ok {
			i = len(groups)
			index[owner.ID] = i
			groups = append(groups, ReminderGroup{Owner: owner})
		}
		groups[i].Projects = append(groups[i].Projects, p)
	}
	return groups
}

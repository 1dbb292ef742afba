package project

import "time"

// Partition splits projects by whether their latest update is recent.
type Partition struct {
	Updated []Project
	Stale   []Project
}

// Len returns the number of projects across both sides.
func (p Partition) Len() int {
	return len(p.Updated) + len(p.Stale)
}

// PartitionByRecency puts a project in Updated when its most recent update was
// created no more than cutoff before now, and in Stale otherwise. Projects
// without updates are always stale. Input order is preserved on both sides.
func PartitionByRecency(projects []Project, cutoff time.Duration, now time.Time) (Partition, error) {
	if cutoff <= 0 {
		return Partition{}, ErrInvalidCutoff
	}
	part := Partition{
		Updated: make([]Project, 0, len(projects)),
		Stale:   make([]Project, 0, len(projects)),
	}
	threshold := now.Add(-cutoff)
	for _, p := range projects {
		latest, ok := p.LatestUpdate()
		if ok && !latest.CreatedAt.Before(threshold) {
			part.Updated = append(part.Updated, p)
			continue
		}
		part.Stale = append(part.Stale, p)
	}
	return part, nil
}

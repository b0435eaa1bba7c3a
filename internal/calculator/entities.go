package calculator

import (
	"slices"

	"github.com/shopspring/decimal"
)

// AggregateToEntities collapses participants into settlement entities.
//
// Each group becomes one entity whose totals are the sums over its members;
// Members keeps every member's own balance for drill-down. Participants in no
// group become individual entities. An entity is placed where its first
// member appears in balances. Groups with no member in balances are omitted.
//
// Overlapping groups are not rejected: a participant named by two groups is
// counted in both. Callers must keep memberships disjoint.
func AggregateToEntities(balances []ParticipantBalance, groups []GroupDefinition) []EntityBalance {
	memberOf := make(map[string][]int)
	for gi, g := range groups {
		for _, id := range g.MemberIDs {
			if !slices.Contains(memberOf[id], gi) {
				memberOf[id] = append(memberOf[id], gi)
			}
		}
	}

	entities := make([]EntityBalance, 0, len(balances))
	placed := make(map[int]int, len(groups))

	for _, b := range balances {
		gis := memberOf[b.Participant.ID]
		if len(gis) == 0 {
			entities = append(entities, EntityBalance{
				ID:          b.Participant.ID,
				DisplayName: b.Participant.DisplayName,
				Avatar:      b.Participant.Avatar,
				Type:        EntityIndividual,
				TotalPaid:   b.TotalPaid,
				TotalOwed:   b.TotalOwed,
				NetBalance:  b.NetBalance,
			})
			continue
		}

		for _, gi := range gis {
			pos, ok := placed[gi]
			if !ok {
				g := groups[gi]
				pos = len(entities)
				placed[gi] = pos
				entities = append(entities, EntityBalance{
					ID:          g.ID,
					DisplayName: g.DisplayName,
					Avatar:      g.Avatar,
					Type:        EntityGroup,
					TotalPaid:   decimal.Zero,
					TotalOwed:   decimal.Zero,
					NetBalance:  decimal.Zero,
				})
			}
			e := &entities[pos]
			e.TotalPaid = e.TotalPaid.Add(b.TotalPaid)
			e.TotalOwed = e.TotalOwed.Add(b.TotalOwed)
			e.NetBalance = e.NetBalance.Add(b.NetBalance)
			e.Members = append(e.Members, b)
		}
	}

	return entities
}

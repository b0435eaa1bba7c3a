package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/calculator"
	"github.com/mmynk/tripsettle/internal/models"
	"github.com/mmynk/tripsettle/internal/money"
	"github.com/mmynk/tripsettle/pkg/api"
)

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func tripToAPI(t *models.Trip) *api.Trip {
	return &api.Trip{
		ID:           t.ID,
		Name:         t.Name,
		BaseCurrency: t.BaseCurrency,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
	}
}

func participantToAPI(p *models.Participant) *api.Participant {
	return &api.Participant{
		ID:          p.ID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Type:        string(p.Type),
	}
}

func groupToAPI(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Avatar:    g.Avatar,
		MemberIDs: g.MemberIDs,
	}
}

func expenseToAPI(e *models.Expense) *api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{ParticipantID: s.ParticipantID, Amount: s.Amount}
		if s.Percentage.Valid {
			pct := s.Percentage.Decimal
			splits[i].Percentage = &pct
		}
	}
	return &api.Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Currency:     e.Currency,
		ExchangeRate: e.ExchangeRate,
		PaidBy:       e.PaidBy,
		Splits:       splits,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}

func settlementToAPI(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		From:      s.FromParticipantID,
		To:        s.ToParticipantID,
		Amount:    s.Amount,
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func splitsFromAPI(in []api.Split) []models.Split {
	out := make([]models.Split, len(in))
	for i, s := range in {
		out[i] = models.Split{ParticipantID: s.ParticipantID, Amount: s.Amount}
		if s.Percentage != nil {
			out[i].Percentage = decimal.NewNullDecimal(*s.Percentage)
		}
	}
	return out
}

func splitsFromCalculator(in []calculator.Split) []models.Split {
	out := make([]models.Split, len(in))
	for i, s := range in {
		out[i] = models.Split{ParticipantID: s.ParticipantID, Amount: s.Amount, Percentage: s.Percentage}
	}
	return out
}

// reportInput converts persisted trip records into engine input.
func reportInput(participants []*models.Participant, expenses []*models.Expense, settlements []*models.Settlement, groups []*models.Group) calculator.ReportInput {
	in := calculator.ReportInput{
		Participants: make([]calculator.Participant, len(participants)),
		Expenses:     make([]calculator.Expense, len(expenses)),
		Settlements:  make([]calculator.PersistedSettlement, len(settlements)),
		Groups:       make([]calculator.GroupDefinition, len(groups)),
	}
	for i, p := range participants {
		in.Participants[i] = calculator.Participant{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			Type:        string(p.Type),
		}
	}
	for i, e := range expenses {
		splits := make([]calculator.Split, len(e.Splits))
		for j, s := range e.Splits {
			splits[j] = calculator.Split{ParticipantID: s.ParticipantID, Amount: s.Amount, Percentage: s.Percentage}
		}
		in.Expenses[i] = calculator.Expense{
			ID:           e.ID,
			Amount:       e.Amount,
			ExchangeRate: e.ExchangeRate,
			PaidBy:       e.PaidBy,
			Splits:       splits,
		}
	}
	for i, s := range settlements {
		in.Settlements[i] = calculator.PersistedSettlement{
			From:   s.FromParticipantID,
			To:     s.ToParticipantID,
			Amount: s.Amount,
		}
	}
	for i, g := range groups {
		in.Groups[i] = calculator.GroupDefinition{
			ID:          g.ID,
			DisplayName: g.Name,
			Avatar:      g.Avatar,
			MemberIDs:   g.MemberIDs,
		}
	}
	return in
}

// Balances are rounded to cents for display only; the engine works on
// exact values.
func participantBalanceToAPI(b calculator.ParticipantBalance) api.ParticipantBalance {
	return api.ParticipantBalance{
		ParticipantID: b.Participant.ID,
		DisplayName:   b.Participant.DisplayName,
		Avatar:        b.Participant.Avatar,
		TotalPaid:     money.RoundCents(b.TotalPaid),
		TotalOwed:     money.RoundCents(b.TotalOwed),
		SettledOut:    money.RoundCents(b.SettledOut),
		SettledIn:     money.RoundCents(b.SettledIn),
		NetBalance:    money.RoundCents(b.NetBalance),
	}
}

func entityBalanceToAPI(e calculator.EntityBalance) api.EntityBalance {
	out := api.EntityBalance{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		Avatar:      e.Avatar,
		Type:        string(e.Type),
		TotalPaid:   money.RoundCents(e.TotalPaid),
		TotalOwed:   money.RoundCents(e.TotalOwed),
		NetBalance:  money.RoundCents(e.NetBalance),
	}
	if e.Members != nil {
		out.Members = mapSlice(e.Members, participantBalanceToAPI)
	}
	return out
}

func partyToAPI(p calculator.Party) api.Party {
	return api.Party{ID: p.ID, DisplayName: p.DisplayName, Avatar: p.Avatar}
}

func reportToAPI(trip *models.Trip, report calculator.Report) *api.GetBalancesResponse {
	out := &api.GetBalancesResponse{
		TripID:       trip.ID,
		BaseCurrency: trip.BaseCurrency,
		TotalSpent:   money.RoundCents(report.TotalSpent),
		Participants: mapSlice(report.Participants, participantBalanceToAPI),
		Suggestions:  make([]api.SuggestedSettlement, len(report.Suggestions)),
	}
	if len(report.Entities) > 0 {
		out.Entities = mapSlice(report.Entities, entityBalanceToAPI)
	}
	for i, s := range report.Suggestions {
		out.Suggestions[i] = api.SuggestedSettlement{
			From:   partyToAPI(s.From),
			To:     partyToAPI(s.To),
			Amount: s.Amount,
		}
	}
	for _, u := range report.Unresolved {
		out.Unresolved = append(out.Unresolved, u.Participant.ID)
	}
	return out
}

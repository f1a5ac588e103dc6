package student

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

const DefaultRankingLimit = 5

type (
	RankEntry struct {
		ID        string `json:"_id"`
		Name      string `json:"nome"`
		Class     string `json:"turma"`
		Delivered int    `json:"entregues"`
		Pending   int    `json:"pendencias"`
		Progress  int    `json:"progresso"`
	}

	Ranking struct {
		MostDelivered []RankEntry `json:"maisEntregues"`
		MostPending   []RankEntry `json:"maisPendencias"`
	}
)

func newRankEntry(s Student) RankEntry {
	return RankEntry{
		ID:        s.ID,
		Name:      s.Name,
		Class:     s.Class,
		Delivered: s.Delivered(),
		Pending:   s.TotalPending,
		Progress:  s.Progress(),
	}
}

// Ranking returns the top `limit` students with the most delivered aulas and the top `limit` with the
// most pending aulas, among those matching `filter`. Ties are broken by name.
func (svc *Service) Ranking(ctx context.Context, filter QueryFilter, limit int) (Ranking, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	students, err := svc.repo.QueryStudents(ctx, filter, nil)
	if err != nil {
		return Ranking{}, errors.Wrap(err, "querying students")
	}
	return BuildRanking(students, limit), nil
}

// BuildRanking ranks `students` in memory.
func BuildRanking(students []Student, limit int) Ranking {
	entries := make([]RankEntry, 0, len(students))
	for _, s := range students {
		entries = append(entries, newRankEntry(s))
	}

	delivered := make([]RankEntry, len(entries))
	copy(delivered, entries)
	sort.SliceStable(delivered, func(i, j int) bool {
		if delivered[i].Delivered != delivered[j].Delivered {
			return delivered[i].Delivered > delivered[j].Delivered
		}
		return delivered[i].Name < delivered[j].Name
	})

	pending := make([]RankEntry, len(entries))
	copy(pending, entries)
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Pending != pending[j].Pending {
			return pending[i].Pending > pending[j].Pending
		}
		return pending[i].Name < pending[j].Name
	})

	return Ranking{
		MostDelivered: head(delivered, limit),
		MostPending:   head(pending, limit),
	}
}

func head(entries []RankEntry, n int) []RankEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

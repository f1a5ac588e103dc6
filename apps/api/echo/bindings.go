package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
)

var (
	orderingParam = "ordering"
	limitParam    = "limit"
)

// Ordering binds `?ordering=nome,-totalPendencias`; a leading "-" sorts descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindLimit reads `?limit=`; missing, malformed and non-positive values give student.DefaultRankingLimit.
func bindLimit(ctx echo.Context) int {
	limit, err := strconv.Atoi(ctx.QueryParam(limitParam))
	if err != nil || limit <= 0 {
		return student.DefaultRankingLimit
	}
	return limit
}

// bindFilter reads `?search=&turma=`.
func bindFilter(ctx echo.Context) student.QueryFilter {
	filter := student.QueryFilter{
		Search: ctx.QueryParam("search"),
		Class:  ctx.QueryParam("turma"),
	}
	filter.Clean()
	return filter
}

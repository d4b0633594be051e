package core

import (
	"context"
	"fmt"
)

// DB is the subset of a database handle the API needs for health checks.
type DB interface {
	PingContext(ctx context.Context) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CheckOrdering makes sure all ordering fields are part of `allowed`.
func CheckOrdering(orderings []DBOrdering, allowed map[string]string) error {
	for _, ord := range orderings {
		if _, ok := allowed[ord.Field]; !ok {
			return NewValidationError(nil, FieldError{
				Field: "ordering",
				Error: fmt.Sprintf("cannot order by %q", ord.Field),
			})
		}
	}
	return nil
}

package echoapi

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/inquiry"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering` query param, e.g. `?ordering=lastName,-enrollmentDate`.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindResponse reads an inquiry response from the request body:
// raw text, a JSON string or a `{"response": "..."}` object.
func bindResponse(ctx echo.Context, data *inquiry.RespondInquiry) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}

	text := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(text, "{"):
		if err = json.Unmarshal([]byte(text), data); err != nil {
			return core.NewValidationError(errors.New("malformed response body"))
		}
	case strings.HasPrefix(text, `"`):
		if err = json.Unmarshal([]byte(text), &data.Response); err != nil {
			return core.NewValidationError(errors.New("malformed response body"))
		}
	default:
		data.Response = text
	}
	return nil
}

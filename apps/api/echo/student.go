package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
)

type studentApi struct {
	svc        *student.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(g *echo.Group, svc *student.Service, validate *validator.Validate, translator ut.Translator) {
	api := studentApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/search", api.search)
	sg.GET("/status/:status", api.filterByStatus)
	sg.GET("/course/:course", api.filterByCourse)
	sg.GET("/email/:email", api.retrieveByEmail)

	// detail endpoints
	dg := sg.Group("/:id", intParamsMiddleware("id"))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	students, err := api.svc.QueryAll(ctx.Request().Context(), ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "retrieving students")
	}
	return ok(ctx, http.StatusOK, "Students retrieved successfully", students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ok(ctx, http.StatusCreated, "Student created successfully", st)
}

func (api *studentApi) search(ctx echo.Context) error {
	students, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching students")
	}
	return ok(ctx, http.StatusOK, "Search completed successfully", students)
}

func (api *studentApi) filterByStatus(ctx echo.Context) error {
	students, err := api.svc.FilterByStatus(ctx.Request().Context(), ctx.Param("status"))
	if err != nil {
		return errors.Wrap(err, "retrieving students by status")
	}
	return ok(ctx, http.StatusOK, "Students retrieved by status successfully", students)
}

func (api *studentApi) filterByCourse(ctx echo.Context) error {
	students, err := api.svc.FilterByCourse(ctx.Request().Context(), ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "retrieving students by course")
	}
	return ok(ctx, http.StatusOK, "Students retrieved by course successfully", students)
}

func (api *studentApi) retrieveByEmail(ctx echo.Context) error {
	st, err := api.svc.GetByEmail(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		return errors.Wrap(err, "retrieving student")
	}
	return ok(ctx, http.StatusOK, "Student retrieved successfully", st)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Request().Context(), intParam(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "retrieving student")
	}
	return ok(ctx, http.StatusOK, "Student retrieved successfully", st)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	st, err := api.svc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ok(ctx, http.StatusOK, "Student updated successfully", st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	msg := "Student deleted successfully"
	return ok(ctx, http.StatusOK, msg, msg)
}

package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/fee"
)

type feeApi struct {
	svc        *fee.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerFeeAPI(g *echo.Group, svc *fee.Service, validate *validator.Validate, translator ut.Translator) {
	api := feeApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	fg := g.Group("/fees")
	fg.GET("", api.query)
	fg.POST("", api.create)
	fg.GET("/status/:status", api.filterByStatus)
	fg.GET("/type/:feeType", api.filterByType)
	fg.GET("/student/:studentId", api.filterByStudent, intParamsMiddleware("studentId"))
	fg.GET("/student/:studentId/pending", api.filterPendingByStudent, intParamsMiddleware("studentId"))

	// detail endpoints
	dg := fg.Group("/:id", intParamsMiddleware("id"))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/status", api.updateStatus)
	dg.POST("/payment", api.pay)
}

// Handlers

func (api *feeApi) query(ctx echo.Context) error {
	fees, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "retrieving fees")
	}
	return ok(ctx, http.StatusOK, "Fees retrieved successfully", fees)
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ok(ctx, http.StatusCreated, "Fee created successfully", f)
}

func (api *feeApi) filterByStatus(ctx echo.Context) error {
	fees, err := api.svc.FilterByStatus(ctx.Request().Context(), ctx.Param("status"))
	if err != nil {
		return errors.Wrap(err, "retrieving fees by status")
	}
	return ok(ctx, http.StatusOK, "Fees retrieved by status successfully", fees)
}

func (api *feeApi) filterByType(ctx echo.Context) error {
	fees, err := api.svc.FilterByType(ctx.Request().Context(), ctx.Param("feeType"))
	if err != nil {
		return errors.Wrap(err, "retrieving fees by type")
	}
	return ok(ctx, http.StatusOK, "Fees retrieved by type successfully", fees)
}

func (api *feeApi) filterByStudent(ctx echo.Context) error {
	fees, err := api.svc.FilterByStudent(ctx.Request().Context(), intParam(ctx, "studentId"))
	if err != nil {
		return errors.Wrap(err, "retrieving student fees")
	}
	return ok(ctx, http.StatusOK, "Student fees retrieved successfully", fees)
}

func (api *feeApi) filterPendingByStudent(ctx echo.Context) error {
	fees, err := api.svc.FilterPendingByStudent(ctx.Request().Context(), intParam(ctx, "studentId"))
	if err != nil {
		return errors.Wrap(err, "retrieving pending student fees")
	}
	return ok(ctx, http.StatusOK, "Pending fees retrieved successfully", fees)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	f, err := api.svc.GetByID(ctx.Request().Context(), intParam(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "retrieving fee")
	}
	return ok(ctx, http.StatusOK, "Fee retrieved successfully", f)
}

func (api *feeApi) update(ctx echo.Context) error {
	var data fee.UpdateFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFee")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	f, err := api.svc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating fee")
	}
	return ok(ctx, http.StatusOK, "Fee updated successfully", f)
}

func (api *feeApi) updateStatus(ctx echo.Context) error {
	var data fee.UpdateFeeStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFeeStatus")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	f, err := api.svc.UpdateStatus(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating fee status")
	}
	return ok(ctx, http.StatusOK, "Fee status updated successfully", f)
}

func (api *feeApi) pay(ctx echo.Context) error {
	var data fee.PaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentRequest")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	f, err := api.svc.ProcessPayment(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "processing payment")
	}
	return ok(ctx, http.StatusOK, "Payment processed successfully", f)
}

func (api *feeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	msg := "Fee deleted successfully"
	return ok(ctx, http.StatusOK, msg, msg)
}

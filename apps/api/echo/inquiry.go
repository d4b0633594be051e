package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/inquiry"
)

type inquiryApi struct {
	svc        *inquiry.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerInquiryAPI(g *echo.Group, svc *inquiry.Service, validate *validator.Validate, translator ut.Translator) {
	api := inquiryApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	ig := g.Group("/inquiries")
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.GET("/status/:status", api.filterByStatus)
	ig.GET("/email/:email", api.filterByEmail)

	// detail endpoints
	dg := ig.Group("/:id", intParamsMiddleware("id"))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/status", api.updateStatus)
	dg.POST("/respond", api.respond)
}

// Handlers

func (api *inquiryApi) query(ctx echo.Context) error {
	inquiries, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "retrieving inquiries")
	}
	return ok(ctx, http.StatusOK, "Inquiries retrieved successfully", inquiries)
}

func (api *inquiryApi) create(ctx echo.Context) error {
	var data inquiry.NewInquiry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInquiry")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	inq, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating inquiry")
	}
	return ok(ctx, http.StatusCreated, "Inquiry created successfully", inq)
}

func (api *inquiryApi) filterByStatus(ctx echo.Context) error {
	inquiries, err := api.svc.FilterByStatus(ctx.Request().Context(), ctx.Param("status"))
	if err != nil {
		return errors.Wrap(err, "retrieving inquiries by status")
	}
	return ok(ctx, http.StatusOK, "Inquiries retrieved by status successfully", inquiries)
}

func (api *inquiryApi) filterByEmail(ctx echo.Context) error {
	inquiries, err := api.svc.FilterByEmail(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		return errors.Wrap(err, "retrieving inquiries by email")
	}
	return ok(ctx, http.StatusOK, "Inquiries retrieved by email successfully", inquiries)
}

func (api *inquiryApi) retrieve(ctx echo.Context) error {
	inq, err := api.svc.GetByID(ctx.Request().Context(), intParam(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "retrieving inquiry")
	}
	return ok(ctx, http.StatusOK, "Inquiry retrieved successfully", inq)
}

func (api *inquiryApi) update(ctx echo.Context) error {
	var data inquiry.UpdateInquiry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInquiry")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	inq, err := api.svc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating inquiry")
	}
	return ok(ctx, http.StatusOK, "Inquiry updated successfully", inq)
}

func (api *inquiryApi) updateStatus(ctx echo.Context) error {
	var data inquiry.UpdateInquiryStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInquiryStatus")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	inq, err := api.svc.UpdateStatus(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating inquiry status")
	}
	return ok(ctx, http.StatusOK, "Inquiry status updated successfully", inq)
}

func (api *inquiryApi) respond(ctx echo.Context) error {
	var data inquiry.RespondInquiry
	if err := bindResponse(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	inq, err := api.svc.Respond(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "responding to inquiry")
	}
	return ok(ctx, http.StatusOK, "Response added successfully", inq)
}

func (api *inquiryApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting inquiry")
	}
	msg := "Inquiry deleted successfully"
	return ok(ctx, http.StatusOK, msg, msg)
}

package controller

import (
	"blicktrack-entitlement-be/internal/pkg/serverutils"
	"blicktrack-entitlement-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITenantController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetPlans(ctx *fiber.Ctx) error
}

type tenantController struct {
	tenantService service.ITenantService
}

func NewTenantController(tenantService service.ITenantService) ITenantController {
	return &tenantController{
		tenantService: tenantService,
	}
}

func (c *tenantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tenant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("plans", c.GetPlans)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *tenantController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.tenantService.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list tenants", res))
}

func (c *tenantController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant id")
	}

	res, err := c.tenantService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show tenant", res))
}

func (c *tenantController) GetPlans(ctx *fiber.Ctx) error {
	res, err := c.tenantService.GetPlans(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list plans", res))
}

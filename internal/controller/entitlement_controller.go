package controller

import (
	"time"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/pkg/serverutils"
	"blicktrack-entitlement-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEntitlementController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	ListForTenant(ctx *fiber.Ctx) error
	SetEnabled(ctx *fiber.Ctx) error
	RecordUsage(ctx *fiber.Ctx) error
	Sweep(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type entitlementController struct {
	entitlementService service.IEntitlementService
}

func NewEntitlementController(entitlementService service.IEntitlementService) IEntitlementController {
	return &entitlementController{
		entitlementService: entitlementService,
	}
}

func (c *entitlementController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/entitlement/v1")
	h.Use(serverutils.JwtMiddleware)

	h.Post("sweep", c.Sweep)
	h.Get("tenants/:tenantId", c.ListForTenant)
	h.Get("tenants/:tenantId/resolved", c.Resolve)
	h.Get("tenants/:tenantId/features/:featureId", c.Show)
	h.Put("tenants/:tenantId/features/:featureId", c.SetEnabled)
	h.Post("tenants/:tenantId/features/:featureId/usage", c.RecordUsage)
}

func (c *entitlementController) Show(ctx *fiber.Ctx) error {
	tenantId, featureId, err := parsePair(ctx)
	if err != nil {
		return err
	}

	res, err := c.entitlementService.GetEntitlement(ctx.UserContext(), tenantId, featureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show entitlement", res))
}

func (c *entitlementController) ListForTenant(ctx *fiber.Ctx) error {
	tenantId, err := uuid.Parse(ctx.Params("tenantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant id")
	}

	res, err := c.entitlementService.ListForTenant(ctx.UserContext(), tenantId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list entitlements", res))
}

func (c *entitlementController) SetEnabled(ctx *fiber.Ctx) error {
	tenantId, featureId, err := parsePair(ctx)
	if err != nil {
		return err
	}

	var req dto.SetEnabledRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.entitlementService.SetEnabled(ctx.UserContext(), tenantId, featureId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle entitlement", res))
}

func (c *entitlementController) RecordUsage(ctx *fiber.Ctx) error {
	tenantId, featureId, err := parsePair(ctx)
	if err != nil {
		return err
	}

	res, err := c.entitlementService.RecordUsage(ctx.UserContext(), tenantId, featureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record usage", res))
}

func (c *entitlementController) Sweep(ctx *fiber.Ctx) error {
	res, err := c.entitlementService.ExpireTrials(ctx.UserContext(), time.Now())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run trial expiry sweep", res))
}

func (c *entitlementController) Resolve(ctx *fiber.Ctx) error {
	tenantId, err := uuid.Parse(ctx.Params("tenantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant id")
	}

	res, err := c.entitlementService.ResolveForTenant(ctx.UserContext(), tenantId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve entitlements", res))
}

func parsePair(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	tenantId, err := uuid.Parse(ctx.Params("tenantId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid tenant id")
	}
	featureId, err := uuid.Parse(ctx.Params("featureId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid feature id")
	}
	return tenantId, featureId, nil
}

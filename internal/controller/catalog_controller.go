package controller

import (
	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/pkg/serverutils"
	"blicktrack-entitlement-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	CreateCategory(ctx *fiber.Ctx) error
	UpdateCategory(ctx *fiber.Ctx) error
	DeleteCategory(ctx *fiber.Ctx) error
	ShowCategory(ctx *fiber.Ctx) error
	ListCategories(ctx *fiber.Ctx) error
	CreateFeature(ctx *fiber.Ctx) error
	UpdateFeature(ctx *fiber.Ctx) error
	DeleteFeature(ctx *fiber.Ctx) error
	ShowFeature(ctx *fiber.Ctx) error
	ListFeatures(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware)

	h.Get("categories", c.ListCategories)
	h.Post("categories", c.CreateCategory)
	h.Get("categories/:id", c.ShowCategory)
	h.Put("categories/:id", c.UpdateCategory)
	h.Delete("categories/:id", c.DeleteCategory)

	h.Get("features", c.ListFeatures)
	h.Post("features", c.CreateFeature)
	h.Get("features/:id", c.ShowFeature)
	h.Put("features/:id", c.UpdateFeature)
	h.Delete("features/:id", c.DeleteFeature)
}

// --- Categories ---

func (c *catalogController) CreateCategory(ctx *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.CreateCategory(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create category", res))
}

func (c *catalogController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category id")
	}

	var req dto.UpdateCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.catalogService.UpdateCategory(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update category", res))
}

func (c *catalogController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category id")
	}

	if err := c.catalogService.DeleteCategory(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete category", nil))
}

func (c *catalogController) ShowCategory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category id")
	}

	res, err := c.catalogService.GetCategory(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show category", res))
}

func (c *catalogController) ListCategories(ctx *fiber.Ctx) error {
	query, err := parseCatalogQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.catalogService.ListCategories(ctx.UserContext(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list categories", res))
}

// --- Features ---

func (c *catalogController) CreateFeature(ctx *fiber.Ctx) error {
	var req dto.CreateFeatureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.CreateFeature(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create feature", res))
}

func (c *catalogController) UpdateFeature(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid feature id")
	}

	var req dto.UpdateFeatureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.catalogService.UpdateFeature(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update feature", res))
}

func (c *catalogController) DeleteFeature(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid feature id")
	}

	if err := c.catalogService.DeleteFeature(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete feature", nil))
}

func (c *catalogController) ShowFeature(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid feature id")
	}

	res, err := c.catalogService.GetFeature(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show feature", res))
}

func (c *catalogController) ListFeatures(ctx *fiber.Ctx) error {
	query, err := parseCatalogQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.catalogService.ListFeatures(ctx.UserContext(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list features", res))
}

func parseCatalogQuery(ctx *fiber.Ctx) (*dto.CatalogListQuery, error) {
	query := &dto.CatalogListQuery{
		ActiveOnly: ctx.QueryBool("active_only"),
		Search:     ctx.Query("search"),
		TopLevel:   ctx.QueryBool("top_level"),
	}
	if raw := ctx.Query("category_id"); raw != "" {
		categoryId, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid category_id")
		}
		query.CategoryId = &categoryId
	}
	return query, nil
}

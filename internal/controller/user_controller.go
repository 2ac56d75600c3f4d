package controller

import (
	"midgpt-be/internal/dto"
	"midgpt-be/internal/pkg/serverutils"
	"midgpt-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Resolve(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type userController struct {
	onboardingService service.IOnboardingService
}

func NewUserController(onboardingService service.IOnboardingService) IUserController {
	return &userController{
		onboardingService: onboardingService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	// Resolve is the entry point for first contact, so it stays public.
	h.Post("resolve", c.Resolve)
	h.Get("", serverutils.JwtMiddleware, c.List)
}

func (c *userController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.onboardingService.ResolveOrCreateUser(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve user", res))
}

func (c *userController) List(ctx *fiber.Ctx) error {
	res, err := c.onboardingService.ListUsers(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list users", res))
}

package controller

import (
	"fmt"
	"os"

	"midgpt-be/internal/pkg/serverutils"
	"midgpt-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type authController struct {
	oauthService service.IOAuthService
}

func NewAuthController(oauthService service.IOAuthService) IAuthController {
	return &authController{oauthService: oauthService}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get(":provider/login", c.Login)
	h.Get(":provider/callback", c.Callback)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	url, err := c.oauthService.GetLoginURL(provider)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.Redirect(url)
}

func (c *authController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.oauthService.HandleCallback(ctx.Context(), provider, code)
	if err != nil {
		return err
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
	}

	redirectURL := fmt.Sprintf("%s/app?token=%s", frontendURL, res.AccessToken)
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

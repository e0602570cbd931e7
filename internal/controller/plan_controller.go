package controller

import (
	"errors"

	"fitai-planner-be/internal/dto"
	"fitai-planner-be/internal/pkg/serverutils"
	"fitai-planner-be/internal/service"
	"fitai-planner-be/pkg/llm"
	"fitai-planner-be/pkg/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Generate(ctx *fiber.Ctx) error
	Correct(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) IPlanController {
	return &planController{
		planService: planService,
	}
}

func (c *planController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/plan/v1", authMiddleware)
	h.Post("generate", c.Generate)
	h.Post("correct", c.Correct)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *planController) Generate(ctx *fiber.Ctx) error {
	var req dto.GeneratePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := checkOwner(ctx, req.UserId); err != nil {
		return err
	}

	res, err := c.planService.Generate(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate plan", res))
}

func (c *planController) Correct(ctx *fiber.Ctx) error {
	var req dto.CorrectPlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := checkOwner(ctx, req.UserId); err != nil {
		return err
	}

	res, err := c.planService.Correct(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success correct plan", res))
}

func (c *planController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid plan id")
	}

	res, err := c.planService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if err := checkOwner(ctx, res.UserId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show plan", res))
}

func (c *planController) List(ctx *fiber.Ctx) error {
	var req dto.ListPlansRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if owner := tokenUserId(ctx); owner != "" {
		req.UserId = owner
	}

	res, err := c.planService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list plans", res))
}

func (c *planController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid plan id")
	}

	if tokenUserId(ctx) != "" {
		plan, err := c.planService.Show(ctx.UserContext(), id)
		if err != nil {
			return err
		}
		if err := checkOwner(ctx, plan.UserId); err != nil {
			return err
		}
	}

	if err := c.planService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete plan", nil))
}

// tokenUserId is empty when no JWT gate is configured.
func tokenUserId(ctx *fiber.Ctx) string {
	userId, _ := ctx.Locals("user_id").(string)
	return userId
}

func checkOwner(ctx *fiber.Ctx, userId string) error {
	if owner := tokenUserId(ctx); owner != "" && owner != userId {
		return fiber.NewError(fiber.StatusForbidden, "Plan belongs to another user")
	}
	return nil
}

// PlanErrorStatus maps planner and provider errors onto HTTP statuses.
func PlanErrorStatus(err error) (int, bool) {
	var providerErr *llm.ProviderError
	switch {
	case errors.Is(err, planner.ErrPlanNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, planner.ErrCorrectionInProgress), errors.Is(err, planner.ErrDuplicatePlan):
		return fiber.StatusConflict, true
	case errors.Is(err, planner.ErrEmptyInput), errors.Is(err, planner.ErrEmptyInstruction), errors.Is(err, planner.ErrInvalidTarget):
		return fiber.StatusBadRequest, true
	case errors.Is(err, planner.ErrRetriesExhausted), errors.Is(err, llm.ErrEmptyResponse), errors.As(err, &providerErr):
		return fiber.StatusBadGateway, true
	}
	return 0, false
}

package handlers

import (
	"log"

	"tracker/internal/common"
	"tracker/internal/middleware"
	"tracker/internal/models"
	"tracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler handles HTTP requests for activities.
type ActivityHandler struct {
	service *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		service: service,
	}
}

// RegisterRoutes registers the activity routes. router must already run
// middleware.AuthRequired. statsMiddleware, when given, wraps only the
// stats endpoints.
func (h *ActivityHandler) RegisterRoutes(router fiber.Router, statsMiddleware ...fiber.Handler) {
	activityRoutes := router.Group("/activities")
	activityRoutes.Get("/", h.HandleListActivities)
	activityRoutes.Post("/", h.HandleCreateActivity)

	// Static segments go before /:id so they are not taken as ids.
	stats := append(append([]fiber.Handler{}, statsMiddleware...), h.HandleStats)
	activityRoutes.Get("/stats", stats...)
	activityRoutes.Get("/summary", stats...)

	activityRoutes.Get("/:id", h.HandleGetActivity)
	activityRoutes.Put("/:id", h.HandleUpdateActivity)
	activityRoutes.Patch("/:id", h.HandleUpdateActivity)
	activityRoutes.Delete("/:id", h.HandleDeleteActivity)
}

// HandleListActivities lists the caller's activities, narrowed by the
// query-string filters.
func (h *ActivityHandler) HandleListActivities(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "list activities")
	}

	var filter models.ActivityFilter
	if err := c.QueryParser(&filter); err != nil {
		log.Printf("Error parsing activity filters: %v", err)
		return respondError(c, common.NewValidationError("filter", "The filter parameters are invalid."), "list activities")
	}

	activities, err := h.service.ListActivities(c.UserContext(), id.UserID, filter)
	if err != nil {
		return respondError(c, err, "list activities")
	}
	return c.JSON(fiber.Map{
		"activities": activities,
		"count":      len(activities),
	})
}

// HandleCreateActivity creates an activity owned by the caller.
func (h *ActivityHandler) HandleCreateActivity(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "create activity")
	}

	var req services.CreateActivityRequest
	if err := parseBody(c, &req); err != nil {
		return bodyError(c, err, "create activity")
	}

	activity, err := h.service.CreateActivity(c.UserContext(), id.UserID, req)
	if err != nil {
		return respondError(c, err, "create activity")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"activity": activity,
		"message":  "Activity created successfully",
	})
}

// HandleGetActivity returns one of the caller's activities.
func (h *ActivityHandler) HandleGetActivity(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "get activity")
	}

	activity, err := h.service.GetActivity(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err, "get activity")
	}
	return c.JSON(fiber.Map{"activity": activity})
}

// HandleUpdateActivity applies a partial update to one of the caller's
// activities.
func (h *ActivityHandler) HandleUpdateActivity(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "update activity")
	}

	// Existence and ownership are settled before the body is looked at.
	if _, err := h.service.GetActivity(c.UserContext(), id.UserID, c.Params("id")); err != nil {
		return respondError(c, err, "update activity")
	}

	var req services.UpdateActivityRequest
	if err := parseBody(c, &req); err != nil {
		return bodyError(c, err, "update activity")
	}

	activity, err := h.service.UpdateActivity(c.UserContext(), id.UserID, c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "update activity")
	}
	return c.JSON(fiber.Map{
		"activity": activity,
		"message":  "Activity updated successfully",
	})
}

// HandleDeleteActivity deletes one of the caller's activities.
func (h *ActivityHandler) HandleDeleteActivity(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "delete activity")
	}

	if err := h.service.DeleteActivity(c.UserContext(), id.UserID, c.Params("id")); err != nil {
		return respondError(c, err, "delete activity")
	}
	return c.JSON(fiber.Map{"message": "Activity deleted successfully"})
}

// HandleStats returns the caller's activity summary.
func (h *ActivityHandler) HandleStats(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "activity stats")
	}

	stats, err := h.service.Stats(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err, "activity stats")
	}
	return c.JSON(stats)
}

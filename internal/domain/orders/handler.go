package orders

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/labreq/labreq/internal/platform/auth"
	"github.com/labreq/labreq/internal/platform/metrics"
	"github.com/labreq/labreq/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – every authenticated role
	readGroup := api.Group("", auth.RequireRole(auth.RoleIntern, auth.RolePostgraduate, auth.RoleStaff, auth.RoleLabTech))
	readGroup.GET("/orders", h.ListOrders)
	readGroup.GET("/orders/search", h.SearchOrders)
	readGroup.GET("/orders/stats", h.GetStats)
	readGroup.GET("/orders/:orderID", h.GetOrder)
	readGroup.GET("/orders/:orderID/test-statuses", h.ListTestStatuses)
	readGroup.GET("/orders/:orderID/comments", h.ListComments)

	// Ward staff place orders
	submitGroup := api.Group("", auth.RequireRole(auth.RoleIntern, auth.RolePostgraduate, auth.RoleStaff))
	submitGroup.POST("/orders", h.CreateOrder)

	// Lab side moves orders through the workflow
	reviewGroup := api.Group("", auth.RequireRole(auth.RolePostgraduate, auth.RoleStaff, auth.RoleLabTech))
	reviewGroup.PATCH("/orders/:orderID/status", h.UpdateStatus)
	reviewGroup.POST("/orders/:orderID/comments", h.AddComment)
}

type createOrderRequest struct {
	PatientName     string  `json:"patient_name"`
	IPNumber        string  `json:"ip_number"`
	Age             int     `json:"age"`
	AgeUnit         string  `json:"ageunit"`
	Sex             string  `json:"sex"`
	Department      string  `json:"department"`
	Unit            string  `json:"unit"`
	IPOP            string  `json:"ipop"`
	Status          string  `json:"status"`
	ClinicalHistory string  `json:"clinical_history"`
	Tests           []int64 `json:"tests"`
	Comment         string  `json:"comment"`
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	o := &LabOrder{
		PatientName:     req.PatientName,
		IPNumber:        req.IPNumber,
		Age:             req.Age,
		AgeUnit:         req.AgeUnit,
		Sex:             req.Sex,
		Department:      req.Department,
		Unit:            req.Unit,
		IPOP:            req.IPOP,
		Status:          req.Status,
		ClinicalHistory: req.ClinicalHistory,
		Username:        auth.UsernameFromContext(ctx),
		Role:            auth.RoleFromContext(ctx),
	}

	if err := h.svc.CreateWithTests(ctx, o, req.Tests, req.Comment); err != nil {
		switch {
		case errors.Is(err, ErrEmptyTestSet), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrUnknownTest):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrIDExhausted):
			return echo.NewHTTPError(http.StatusConflict, "could not allocate identifier")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	metrics.OrdersCreated.Inc()
	c.Response().Header().Set("Location", "/api/v1/orders/"+o.OrderID)
	return c.JSON(http.StatusCreated, o)
}

type updateStatusRequest struct {
	Status        string  `json:"status"`
	ApplyToAll    bool    `json:"apply_to_all_tests"`
	TargetTestIDs []int64 `json:"target_test_ids"`
	Comment       string  `json:"comment"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	o, err := h.svc.UpdateOverallStatus(ctx, c.Param("orderID"), req.Status,
		req.ApplyToAll, req.TargetTestIDs, req.Comment,
		auth.UsernameFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	metrics.StatusUpdates.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.svc.Get(c.Request().Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOrders(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

var searchParams = []string{
	"patient_name", "ip_number", "department", "status", "unit",
	"created_by", "date_from", "date_to", "age_min", "age_max", "test_name",
}

func (h *Handler) SearchOrders(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := make(map[string]string)
	for _, p := range searchParams {
		if v := c.QueryParam(p); v != "" {
			params[p] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListTestStatuses(c echo.Context) error {
	statuses, err := h.svc.ListTestStatuses(c.Request().Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, statuses)
}

type addCommentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) AddComment(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Comment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "comment is required")
	}

	ctx := c.Request().Context()
	comment, err := h.svc.AddComment(ctx, c.Param("orderID"), req.Comment,
		auth.UsernameFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c echo.Context) error {
	comments, err := h.svc.ListComments(c.Request().Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *Handler) GetStats(c echo.Context) error {
	var dateFrom, dateTo *time.Time
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
		}
		dateFrom = &t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
		}
		dateTo = &t
	}

	stats, err := h.svc.GetStats(c.Request().Context(), dateFrom, dateTo)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

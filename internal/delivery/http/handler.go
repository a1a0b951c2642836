package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mealplanner/backend/internal/domain"
	"github.com/mealplanner/backend/internal/usecase"
)

// dateLayout is the format of date query parameters
const dateLayout = "2006-01-02"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	parser      *usecase.QuantityParser
	formatter   *usecase.QuantityFormatter
	converter   *usecase.UnitConverter
	aggregator  *usecase.Aggregator
	shopping    *usecase.ShoppingListService
	displayMode usecase.FormatMode
}

// Dependencies wires the use cases behind the HTTP API. Shopping may be nil,
// in which case the per-user shopping list endpoints answer 503.
type Dependencies struct {
	Parser      *usecase.QuantityParser
	Formatter   *usecase.QuantityFormatter
	Converter   *usecase.UnitConverter
	Aggregator  *usecase.Aggregator
	Shopping    *usecase.ShoppingListService
	DisplayMode usecase.FormatMode
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		parser:      deps.Parser,
		formatter:   deps.Formatter,
		converter:   deps.Converter,
		aggregator:  deps.Aggregator,
		shopping:    deps.Shopping,
		displayMode: deps.DisplayMode,
	}
	if h.parser == nil {
		h.parser = usecase.NewQuantityParser(usecase.InputModeFraction)
	}
	if h.formatter == nil {
		h.formatter = usecase.NewQuantityFormatter(usecase.DefaultDecimalPlaces)
	}
	if h.converter == nil {
		h.converter = usecase.NewUnitConverter(usecase.DefaultKitchenDenominator)
	}
	if h.displayMode == "" {
		h.displayMode = usecase.FormatAuto
	}
	return h
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mealplanner-backend",
		"version": "1.0.0",
	})
}

type unitView struct {
	Unit        domain.Unit `json:"unit"`
	Label       string      `json:"label"`
	PluralLabel string      `json:"pluralLabel"`
	BaseUnit    domain.Unit `json:"baseUnit"`
	ToBase      string      `json:"toBase"`
}

// ListUnits returns the supported units grouped by measurement type
func (h *Handler) ListUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		string(domain.Volume): unitViews(domain.VolumeUnits(), domain.Volume),
		string(domain.Mass):   unitViews(domain.MassUnits(), domain.Mass),
	})
}

func unitViews(units []domain.Unit, family domain.MeasurementType) []unitView {
	views := make([]unitView, 0, len(units))
	for _, u := range units {
		factor, _ := u.Factor()
		views = append(views, unitView{
			Unit:        u,
			Label:       u.Label(false),
			PluralLabel: u.Label(true),
			BaseUnit:    family.BaseUnit(),
			ToBase:      usecase.DecimalValue(factor, 5).String(),
		})
	}
	return views
}

// quantityView is how quantities leave the API: exact fields plus renderings
type quantityView struct {
	Quantity  domain.Quantity `json:"quantity"`
	Formatted string          `json:"formatted"`
	Decimal   string          `json:"decimal"`
}

func (h *Handler) view(q domain.Quantity) quantityView {
	n := q.Normalize()
	return quantityView{
		Quantity:  n,
		Formatted: h.formatter.Format(n, h.displayMode),
		Decimal:   h.formatter.Format(n, usecase.FormatDecimal),
	}
}

// ParseQuantityRequest is the body of POST /quantities/parse
type ParseQuantityRequest struct {
	Input string `json:"input"`
}

// ParseQuantity parses a user-typed quantity in the configured input mode
func (h *Handler) ParseQuantity(c *gin.Context) {
	var req ParseQuantityRequest
	if !h.bind(c, &req) {
		return
	}

	q, err := h.parser.Parse(req.Input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"input":  req.Input,
		"mode":   h.parser.Mode(),
		"result": h.view(q),
	})
}

// FormatQuantityRequest is the body of POST /quantities/format
type FormatQuantityRequest struct {
	Quantity domain.Quantity `json:"quantity"`
	Mode     string          `json:"mode"`
	Unit     string          `json:"unit"`
	Long     bool            `json:"long"`
}

// FormatQuantity renders an exact quantity, optionally with its unit
func (h *Handler) FormatQuantity(c *gin.Context) {
	var req FormatQuantityRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Quantity.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	mode := h.displayMode
	if req.Mode != "" {
		m, err := usecase.ParseFormatMode(req.Mode)
		if err != nil {
			h.respondError(c, err)
			return
		}
		mode = m
	}

	formatted := h.formatter.Format(req.Quantity, mode)
	if req.Unit != "" {
		unit, err := domain.ParseUnit(req.Unit)
		if err != nil {
			h.respondError(c, err)
			return
		}
		formatted = h.formatter.FormatWithUnit(req.Quantity, unit, mode, req.Long)
	}

	c.JSON(http.StatusOK, gin.H{"formatted": formatted})
}

// CalculateRequest is the body of POST /quantities/calculate.
// Multiply and divide take either B or Scalar.
type CalculateRequest struct {
	Op     string   `json:"op"`
	A      string   `json:"a"`
	B      string   `json:"b"`
	Scalar *float64 `json:"scalar"`
}

// Calculate runs one arithmetic operation on parsed quantities
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if !h.bind(c, &req) {
		return
	}
	switch req.Op {
	case "add", "subtract", "multiply", "divide", "compare":
	default:
		h.respondError(c, errInvalidField("op must be add, subtract, multiply, divide or compare"))
		return
	}

	a, err := h.parser.Parse(req.A)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var b domain.Quantity
	if req.Scalar == nil || req.Op == "add" || req.Op == "subtract" || req.Op == "compare" {
		b, err = h.parser.Parse(req.B)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	if req.Op == "compare" {
		c.JSON(http.StatusOK, gin.H{"op": req.Op, "comparison": a.Compare(b)})
		return
	}

	var result domain.Quantity
	switch req.Op {
	case "add":
		result, err = a.Add(b)
	case "subtract":
		result, err = a.Sub(b)
	case "multiply":
		if req.Scalar != nil {
			result, err = a.Scale(*req.Scalar)
		} else {
			result, err = a.Mul(b)
		}
	case "divide":
		if req.Scalar != nil {
			result, err = a.Div(*req.Scalar)
		} else {
			result, err = a.DivQuantity(b)
		}
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"op": req.Op, "result": h.view(result)})
}

// ConvertRequest is the body of POST /units/convert
type ConvertRequest struct {
	Quantity string `json:"quantity"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// ConvertUnits converts a quantity between two units of the same family
func (h *Handler) ConvertUnits(c *gin.Context) {
	var req ConvertRequest
	if !h.bind(c, &req) {
		return
	}

	q, err := h.parser.Parse(req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	from, err := domain.ParseUnit(req.From)
	if err != nil {
		h.respondError(c, err)
		return
	}
	to, err := domain.ParseUnit(req.To)
	if err != nil {
		h.respondError(c, err)
		return
	}

	converted, err := h.converter.Convert(q, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	value, err := h.converter.ConvertValue(usecase.DecimalValue(q, 10), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":   from,
		"to":     to,
		"result": h.view(converted),
		"value":  value.StringFixed(usecase.DisplayPlaces),
	})
}

// AggregateRequest is the body of POST /shopping-lists
type AggregateRequest struct {
	Meals         []domain.Meal  `json:"meals"`
	CategoryOrder map[string]int `json:"categoryOrder"`
}

// AggregateShoppingList aggregates the meals in the request body
func (h *Handler) AggregateShoppingList(c *gin.Context) {
	if h.aggregator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopping list aggregation not configured"})
		return
	}

	var req AggregateRequest
	if !h.bind(c, &req) {
		return
	}

	list, err := h.aggregator.Generate(req.Meals, req.CategoryOrder)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentList(list))
}

// GetShoppingList returns the stored plan's shopping list for a user.
// The range is given as start&end, week (a start date) or year&month.
func (h *Handler) GetShoppingList(c *gin.Context) {
	if !h.requireShopping(c) {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		list *domain.ShoppingList
		err  error
	)
	switch {
	case c.Query("week") != "":
		var start time.Time
		start, err = parseDate("week", c.Query("week"))
		if err == nil {
			list, err = h.shopping.GenerateWeekly(ctx, userID, start)
		}
	case c.Query("year") != "" || c.Query("month") != "":
		var year, month int
		year, month, err = parseYearMonth(c.Query("year"), c.Query("month"))
		if err == nil {
			list, err = h.shopping.GenerateMonthly(ctx, userID, year, time.Month(month))
		}
	case c.Query("start") != "" && c.Query("end") != "":
		var start, end time.Time
		start, err = parseDate("start", c.Query("start"))
		if err == nil {
			end, err = parseDate("end", c.Query("end"))
		}
		if err == nil {
			list, err = h.shopping.Generate(ctx, userID, start, endOfDay(end))
		}
	default:
		err = errInvalidField("provide start and end, week, or year and month")
	}

	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presentList(list))
}

// ToggleItemRequest is the body of PUT .../items/:ingredientId
type ToggleItemRequest struct {
	Checked bool `json:"checked"`
}

// ToggleItem checks or unchecks one shopping list line
func (h *Handler) ToggleItem(c *gin.Context) {
	if !h.requireShopping(c) {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	ingredientID, err := strconv.ParseInt(c.Param("ingredientId"), 10, 64)
	if err != nil || ingredientID <= 0 {
		h.respondError(c, errInvalidField("ingredientId must be a positive integer"))
		return
	}

	var req ToggleItemRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.shopping.ToggleItem(c.Request.Context(), userID, ingredientID, req.Checked); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredientId": ingredientID, "checked": req.Checked})
}

// ClearCheckedItems unchecks every line of the user's shopping list
func (h *Handler) ClearCheckedItems(c *gin.Context) {
	if !h.requireShopping(c) {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.shopping.ClearChecked(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// itemView adds display strings to an aggregated ingredient
type itemView struct {
	domain.AggregatedIngredient
	Display     string `json:"display"`
	BaseDisplay string `json:"baseDisplay"`
}

type categoryView struct {
	Category     string     `json:"category"`
	DisplayOrder int        `json:"displayOrder"`
	Ingredients  []itemView `json:"ingredients"`
}

type shoppingListResponse struct {
	StartDate             *time.Time     `json:"startDate,omitempty"`
	EndDate               *time.Time     `json:"endDate,omitempty"`
	TotalMeals            int            `json:"totalMeals"`
	IngredientsByCategory []categoryView `json:"ingredientsByCategory"`
	AllIngredients        []itemView     `json:"allIngredients"`
}

func (h *Handler) presentList(list *domain.ShoppingList) shoppingListResponse {
	resp := shoppingListResponse{
		TotalMeals:            list.TotalMeals,
		IngredientsByCategory: make([]categoryView, 0, len(list.IngredientsByCategory)),
		AllIngredients:        h.presentItems(list.AllIngredients),
	}
	if !list.StartDate.IsZero() {
		start, end := list.StartDate, list.EndDate
		resp.StartDate, resp.EndDate = &start, &end
	}
	for _, g := range list.IngredientsByCategory {
		resp.IngredientsByCategory = append(resp.IngredientsByCategory, categoryView{
			Category:     g.Category,
			DisplayOrder: g.DisplayOrder,
			Ingredients:  h.presentItems(g.Ingredients),
		})
	}
	return resp
}

func (h *Handler) presentItems(items []domain.AggregatedIngredient) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{
			AggregatedIngredient: item,
			Display:              h.formatter.FormatWithUnit(item.Quantity, item.Unit, h.displayMode, true),
			BaseDisplay:          item.BaseValue.StringFixed(usecase.DisplayPlaces) + " " + string(item.BaseUnit),
		})
	}
	return views
}

func (h *Handler) requireShopping(c *gin.Context) bool {
	if h.shopping == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopping list service not configured"})
		return false
	}
	return true
}

func (h *Handler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, errInvalidField("userId must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body, answering 400 on failure
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, errInvalidField("malformed JSON body: "+err.Error()))
		return false
	}
	return true
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errInvalidField(field + " must be a YYYY-MM-DD date")
	}
	return t, nil
}

func parseYearMonth(yearStr, monthStr string) (int, int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return 0, 0, errInvalidField("year must be a positive integer")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return 0, 0, errInvalidField("month must be an integer between 1 and 12")
	}
	return year, month, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// requestError is a client error carrying a human-readable reason
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return domain.ErrInvalidRequest }

func errInvalidField(msg string) error {
	return &requestError{msg: msg}
}

// errorCodes maps domain errors to stable API codes and statuses
var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrEmptyInput, "EMPTY_INPUT", http.StatusBadRequest},
	{domain.ErrInvalidFormat, "INVALID_FORMAT", http.StatusBadRequest},
	{domain.ErrZeroDenominator, "ZERO_DENOMINATOR", http.StatusBadRequest},
	{domain.ErrDivisionByZero, "DIVISION_BY_ZERO", http.StatusBadRequest},
	{domain.ErrUnknownUnit, "UNKNOWN_UNIT", http.StatusBadRequest},
	{domain.ErrFractionNotSupported, "FRACTION_NOT_SUPPORTED", http.StatusBadRequest},
	{domain.ErrQuantityOutOfRange, "QUANTITY_OUT_OF_RANGE", http.StatusBadRequest},
	{domain.ErrInvalidServings, "INVALID_SERVINGS", http.StatusBadRequest},
	{domain.ErrInvalidRequest, "INVALID_REQUEST", http.StatusBadRequest},
	{domain.ErrCrossFamilyConversion, "CROSS_FAMILY_CONVERSION", http.StatusUnprocessableEntity},
	{domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
}

// respondError writes err as JSON with the matching status code
func (h *Handler) respondError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			c.AbortWithStatusJSON(e.status, gin.H{"error": err.Error(), "code": e.code})
			return
		}
	}

	loggerFrom(c).Error().Err(err).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "internal server error",
		"code":  "INTERNAL",
	})
}

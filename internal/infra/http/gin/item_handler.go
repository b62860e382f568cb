package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"lendly/internal/app/commands"
	"lendly/internal/app/dto"
	catalogapp "lendly/internal/app/handlers/catalog"
	"lendly/internal/app/queries"
	"lendly/internal/domain/shared/money"
)

type ItemHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createItemRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Currency      string   `json:"currency"`
	PricePerDay   int64    `json:"price_per_day"`
	PricePerWeek  int64    `json:"price_per_week"`
	PricePerMonth int64    `json:"price_per_month"`
	Deposit       int64    `json:"deposit"`
	Tags          []string `json:"tags"`
}

func (h ItemHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	cmd := catalogapp.CreateItemCommand{
		Owner:         user.ID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		PricePerDay:   money.Money{Amount: req.PricePerDay, Currency: currency},
		PricePerWeek:  money.Money{Amount: req.PricePerWeek, Currency: currency},
		PricePerMonth: money.Money{Amount: req.PricePerMonth, Currency: currency},
		Deposit:       money.Money{Amount: req.Deposit, Currency: currency},
		Tags:          req.Tags,
	}
	result, err := commands.Dispatch[catalogapp.CreateItemCommand, *catalogapp.CreateItemResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ItemHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	q := catalogapp.GetItemQuery{ItemID: c.Param("id")}
	result, err := queries.Ask[catalogapp.GetItemQuery, *dto.ItemView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ItemHandler) List(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	result, err := queries.Ask[catalogapp.ListItemsQuery, *dto.ItemCollection](c.Request.Context(), h.Queries, catalogapp.ListItemsQuery{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

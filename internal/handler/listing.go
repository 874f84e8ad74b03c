package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nft-exchange/internal/market"
)

// ListingHandler exposes the listing ledger over HTTP.  Reads are
// public; create, purchase and cancel require a session and run under
// the caller's wallet address.
type ListingHandler struct {
	Ledger     *market.Ledger
	DefaultRef string // registry_ref used when a request omits one
}

func NewListingHandler(l *market.Ledger, defaultRef string) *ListingHandler {
	if l == nil {
		panic("nil ledger passed to NewListingHandler")
	}
	return &ListingHandler{Ledger: l, DefaultRef: defaultRef}
}

type createListingReq struct {
	RegistryRef string `json:"registry_ref"`
	TokenID     uint64 `json:"token_id"`
	Price       uint64 `json:"price"`
}
type purchaseReq struct {
	Payment uint64 `json:"payment"`
}

// Create opens a fixed-price listing for a token the caller owns.
func (h *ListingHandler) Create(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createListingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ref := strings.TrimSpace(req.RegistryRef)
	if ref == "" {
		ref = h.DefaultRef
	}
	listing, err := h.Ledger.CreateListing(caller, ref, req.TokenID, req.Price)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, listing)
}

// Purchase buys an on-sale listing.  The payment field must equal the
// listed price exactly.
func (h *ListingHandler) Purchase(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	listing, err := h.Ledger.PurchaseListing(caller, id, req.Payment)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// Cancel withdraws an on-sale listing.  Seller only.
func (h *ListingHandler) Cancel(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	listing, err := h.Ledger.CancelListing(caller, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// Get returns the stored record for a listing, whatever its state.
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	listing, err := h.Ledger.GetListing(id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// List returns listings newest first.  ?limit caps the page size
// (default 50, max 200).
func (h *ListingHandler) List(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	if limit > 200 {
		limit = 200
	}
	listings, err := h.Ledger.Listings(limit)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": listings})
}

// Count returns the identifier of the newest listing (0 when none
// exist yet).
func (h *ListingHandler) Count(c echo.Context) error {
	n, err := h.Ledger.CurrentListingCount()
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

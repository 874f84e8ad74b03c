package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nft-exchange/internal/registry"
)

// TokenHandler exposes the token registry over HTTP.  Minting routes
// are mounted behind the AUTHORITY role; everything else only needs a
// valid session.  The engine re-checks every precondition regardless
// of what the routing layer enforces.
type TokenHandler struct {
	Registry *registry.Registry
}

func NewTokenHandler(r *registry.Registry) *TokenHandler {
	if r == nil {
		panic("nil registry passed to NewTokenHandler")
	}
	return &TokenHandler{Registry: r}
}

type mintReq struct {
	Recipient string `json:"recipient"`
	URI       string `json:"uri"`
}
type batchMintReq struct {
	Recipients []string `json:"recipients"`
	URIs       []string `json:"uris"`
}
type bulkMintReq struct {
	Recipient string `json:"recipient"`
	Quantity  uint64 `json:"quantity"`
}
type approveReq struct {
	Spender string `json:"spender"`
}
type operatorReq struct {
	Operator string `json:"operator"`
	Enabled  bool   `json:"enabled"`
}
type transferReq struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Mint creates a single token for a recipient.
func (h *TokenHandler) Mint(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id, err := h.Registry.MintTo(caller, strings.TrimSpace(req.Recipient), req.URI)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"token_id": id})
}

// BatchMint creates one token per (recipient, uri) pair.
func (h *TokenHandler) BatchMint(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req batchMintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ids, err := h.Registry.BatchMintTo(caller, req.Recipients, req.URIs)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"token_ids": ids})
}

// BulkMint creates quantity tokens for one recipient.
func (h *TokenHandler) BulkMint(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bulkMintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ids, err := h.Registry.MintMultipleTo(caller, strings.TrimSpace(req.Recipient), req.Quantity)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"token_ids": ids})
}

// Get returns the full token record: owner, metadata and timestamps.
func (h *TokenHandler) Get(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	t, err := h.Registry.Token(id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Approve sets (or clears, with an empty spender) the single approved
// spender for a token the caller owns.
func (h *TokenHandler) Approve(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Registry.Approve(caller, id, strings.TrimSpace(req.Spender)); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetOperator records or clears a blanket delegation from the caller
// to an operator address over all of the caller's tokens.
func (h *TokenHandler) SetOperator(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req operatorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	operator := strings.TrimSpace(req.Operator)
	if operator == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "operator required"})
	}
	if err := h.Registry.SetApprovalForAll(caller, operator, req.Enabled); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Transfer moves a token to another address.  From defaults to the
// caller; a different from is allowed when the caller is an approved
// spender or operator for it.
func (h *TokenHandler) Transfer(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	from := strings.TrimSpace(req.From)
	if from == "" {
		from = caller
	}
	if err := h.Registry.TransferFrom(caller, from, strings.TrimSpace(req.To), id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel matching via errors.Is
	"net/http"
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/nft-exchange/internal/market"
	"github.com/iliyamo/nft-exchange/internal/registry"
	"github.com/iliyamo/nft-exchange/internal/wallet"
)

// getAddress extracts the caller's wallet address from echo.Context.
// The address is set by the JWT middleware from the token's addr claim
// and is the identity every engine operation runs under.
func getAddress(c echo.Context) (string, error) {
	if addr, ok := c.Get("address").(string); ok && addr != "" {
		return addr, nil
	}
	return "", errors.New("invalid address in context")
}

// engineError translates an engine sentinel into the corresponding
// HTTP response. Every distinct failure the engines can report has a
// distinct mapping, so API clients never need to parse error strings.
func engineError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	// Access control.
	case errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, registry.ErrNotAuthorized),
		errors.Is(err, market.ErrNotOwner),
		errors.Is(err, market.ErrNotSeller):
		status = http.StatusForbidden
	// Malformed input.
	case errors.Is(err, registry.ErrInvalidRecipient),
		errors.Is(err, registry.ErrInvalidQuantity),
		errors.Is(err, registry.ErrLengthMismatch),
		errors.Is(err, market.ErrInvalidPrice),
		errors.Is(err, wallet.ErrInvalidAmount):
		status = http.StatusBadRequest
	// Unknown entities.
	case errors.Is(err, registry.ErrUnknownToken),
		errors.Is(err, market.ErrUnknownListing),
		errors.Is(err, market.ErrUnknownRegistry):
		status = http.StatusNotFound
	// State-machine conflicts.
	case errors.Is(err, market.ErrNotOnSale),
		errors.Is(err, market.ErrSelfPurchase),
		errors.Is(err, market.ErrNotApproved):
		status = http.StatusConflict
	// Payment problems.
	case errors.Is(err, market.ErrWrongPayment),
		errors.Is(err, wallet.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	}
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// paramUint parses a numeric path parameter.
func paramUint(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nft-exchange/internal/wallet"
)

// WalletHandler exposes the balances ledger: a deposit faucet for the
// caller's own wallet and balance queries.
type WalletHandler struct {
	Wallet *wallet.Ledger
}

func NewWalletHandler(w *wallet.Ledger) *WalletHandler {
	if w == nil {
		panic("nil wallet passed to NewWalletHandler")
	}
	return &WalletHandler{Wallet: w}
}

type depositReq struct {
	Amount uint64 `json:"amount"`
}

// Balance returns the caller's own address and balance.
func (h *WalletHandler) Balance(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Wallet.Balance(caller)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": caller, "balance": b})
}

// BalanceOf returns the balance of any address.  Balances are public,
// like the rest of the trading state.
func (h *WalletHandler) BalanceOf(c echo.Context) error {
	addr := strings.TrimSpace(c.Param("address"))
	if addr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address required"})
	}
	b, err := h.Wallet.Balance(addr)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": addr, "balance": b})
}

// Deposit credits freshly issued funds to the caller's wallet.
func (h *WalletHandler) Deposit(c echo.Context) error {
	caller, err := getAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Wallet.Deposit(caller, req.Amount); err != nil {
		return engineError(c, err)
	}
	b, err := h.Wallet.Balance(caller)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": caller, "balance": b})
}

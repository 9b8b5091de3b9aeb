package handler

import (
	"errors"

	"github.com/apollodao/cw-dex-sub000/internal/native"
	"github.com/apollodao/cw-dex-sub000/internal/service"
	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/gofiber/fiber/v3"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody is returned when a JSON request body cannot be decoded.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrLPRequired is returned when the lp parameter is missing.
var ErrLPRequired = fiber.NewError(fiber.StatusBadRequest, "lp is required")

// ErrAmountRequired is returned when the amount parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")

// ErrAssetsRequired is returned when an operation needs at least one asset.
var ErrAssetsRequired = fiber.NewError(fiber.StatusBadRequest, "assets are required")

// ErrSimulationFailedInternal signals a generic server-side simulation error.
var ErrSimulationFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "simulation failed")

// NewInvalidField returns a 400 Bad Request naming the field that failed to
// parse.
func NewInvalidField(field string, err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+": "+err.Error())
}

var badRequest = []error{
	amm.ErrInvalidZeroAmount,
	amm.ErrInvalidProvideLPsWithSingleToken,
	amm.ErrInvalidInAsset,
	amm.ErrInvalidOutAsset,
	amm.ErrInvalidAmount,
	amm.ErrEmptyAssetIdentity,
	amm.ErrSameAsset,
	amm.ErrInsufficientShares,
	amm.ErrWithdrawExceedsReserve,
	amm.ErrLiquidityAmountTooSmall,
	pool.ErrNotLpToken,
	pool.ErrUnsupportedOperation,
}

// handleServiceError maps service failures to HTTP errors. Caller mistakes
// keep their message; anything else is logged and hidden.
func (h *BaseHandler) handleServiceError(err error) error {
	switch {
	case errors.Is(err, amm.ErrMinOutNotReceived):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, native.ErrPoolNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrChainUnavailable), errors.Is(err, service.ErrLedgerUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	h.logger.Error("pool service failed", "err", err)
	return ErrSimulationFailedInternal
}

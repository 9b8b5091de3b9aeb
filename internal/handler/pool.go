package handler

import (
	"log/slog"

	"github.com/apollodao/cw-dex-sub000/internal/service"
	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// Register mounts every pool route on r. LP tokens of native pools contain
// slashes, so /pools takes the rest of the path.
func (h *PoolHandler) Register(r fiber.Router) {
	r.Get("/pools/*", h.Pool())
	r.Get("/simulate/provide", h.SimulateProvide())
	r.Get("/simulate/withdraw", h.SimulateWithdraw())
	r.Get("/simulate/withdraw-imbalanced", h.SimulateWithdrawImbalanced())
	r.Get("/simulate/swap", h.SimulateSwap())
	r.Post("/instructions/provide", h.Provide())
	r.Post("/instructions/withdraw", h.Withdraw())
	r.Post("/instructions/swap", h.Swap())
}

type poolResponse struct {
	Pool         pool.Variant `json:"pool"`
	Reserves     []assetView  `json:"reserves"`
	TotalShares  assetView    `json:"total_shares"`
	FeePercent   string       `json:"fee_percent"`
	VirtualPrice string       `json:"virtual_price,omitempty"`
}

func (h *PoolHandler) Pool() fiber.Handler {
	return func(c fiber.Ctx) error {
		lp, err := parseLP(c.Params("*"))
		if err != nil {
			return err
		}

		info, err := h.service.Info(c.Context(), lp)
		if err != nil {
			return h.handleServiceError(err)
		}
		id, err := info.Variant.Identity()
		if err != nil {
			return h.handleServiceError(err)
		}
		snap, err := info.Variant.Snapshot()
		if err != nil {
			return h.handleServiceError(err)
		}

		precisions := displayPrecisions(snap, id.LPToken)
		resp := poolResponse{
			Pool:        info.Variant,
			Reserves:    viewAssets(snap.Reserves.Assets, precisions),
			TotalShares: viewAsset(amm.Asset{ID: id.LPToken, Amount: snap.Reserves.TotalShares}, precisions),
			FeePercent:  feePercent(snap.SwapFee()),
		}
		if info.VirtualPrice != nil {
			resp.VirtualPrice = scaled(info.VirtualPrice, 18)
		}
		return c.JSON(resp)
	}
}

type simulateRequest struct {
	LP       string `query:"lp"`
	Assets   string `query:"assets"`
	Amount   string `query:"amount"`
	Provided string `query:"provided"`
	Offer    string `query:"offer"`
	Ask      string `query:"ask"`
}

func (h *PoolHandler) bindSimulate(c fiber.Ctx) (*simulateRequest, amm.AssetIdentity, error) {
	var req simulateRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, amm.AssetIdentity{}, ErrInvalidQueryParameters
	}
	lp, err := parseLP(req.LP)
	if err != nil {
		return nil, amm.AssetIdentity{}, err
	}
	return &req, lp, nil
}

func (h *PoolHandler) SimulateProvide() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, lp, err := h.bindSimulate(c)
		if err != nil {
			return err
		}
		deposits, err := amm.ParseAssets(req.Assets)
		if err != nil {
			return NewInvalidField("assets", err)
		}
		if len(deposits) == 0 {
			return ErrAssetsRequired
		}

		shares, err := h.service.SimulateProvide(c.Context(), lp, deposits)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"shares": viewAsset(shares, nil)})
	}
}

func (h *PoolHandler) SimulateWithdraw() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, lp, err := h.bindSimulate(c)
		if err != nil {
			return err
		}
		if req.Amount == "" {
			return ErrAmountRequired
		}
		shares, err := amm.ParseAmount(req.Amount)
		if err != nil {
			return NewInvalidField("amount", err)
		}

		assets, err := h.service.SimulateWithdraw(c.Context(), lp, &shares)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"assets": viewAssets(assets, nil)})
	}
}

func (h *PoolHandler) SimulateWithdrawImbalanced() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, lp, err := h.bindSimulate(c)
		if err != nil {
			return err
		}
		withdrawals, err := amm.ParseAssets(req.Assets)
		if err != nil {
			return NewInvalidField("assets", err)
		}
		if len(withdrawals) == 0 {
			return ErrAssetsRequired
		}
		provided, err := parseOptionalAmount(req.Provided)
		if err != nil {
			return NewInvalidField("provided", err)
		}

		burn, err := h.service.SimulateWithdrawImbalanced(c.Context(), lp, withdrawals, provided)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"burn": viewAsset(burn, nil)})
	}
}

func (h *PoolHandler) SimulateSwap() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, lp, err := h.bindSimulate(c)
		if err != nil {
			return err
		}
		offer, err := amm.ParseAsset(req.Offer)
		if err != nil {
			return NewInvalidField("offer", err)
		}
		ask, err := amm.ParseAssetIdentity(req.Ask)
		if err != nil {
			return NewInvalidField("ask", err)
		}

		out, err := h.service.SimulateSwap(c.Context(), lp, offer, ask)
		if err != nil {
			return h.handleServiceError(err)
		}
		h.logger.Debug("swap quoted", "lp", lp.String(), "offer", offer.String(), "out", out.String())
		return c.JSON(fiber.Map{"return": viewAsset(out, nil)})
	}
}

type provideBody struct {
	LP        amm.AssetIdentity `json:"lp"`
	Assets    []amm.Asset       `json:"assets"`
	MinShares string            `json:"min_shares"`
}

// withdrawBody burns Amount shares for every member, or, when Assets is set,
// burns at most MaxBurn shares for exactly Assets.
type withdrawBody struct {
	LP      amm.AssetIdentity `json:"lp"`
	Amount  string            `json:"amount"`
	MinOut  []amm.Asset       `json:"min_out"`
	Assets  []amm.Asset       `json:"assets"`
	MaxBurn string            `json:"max_burn"`
}

type swapBody struct {
	LP     amm.AssetIdentity `json:"lp"`
	Offer  amm.Asset         `json:"offer"`
	Ask    amm.AssetIdentity `json:"ask"`
	MinOut string            `json:"min_out"`
}

func (h *PoolHandler) bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		h.logger.Debug("failed to bind request body", "err", err)
		return ErrInvalidBody
	}
	return nil
}

func (h *PoolHandler) Provide() fiber.Handler {
	return func(c fiber.Ctx) error {
		var body provideBody
		if err := h.bindBody(c, &body); err != nil {
			return err
		}
		if body.LP.IsZero() {
			return ErrLPRequired
		}
		if len(body.Assets) == 0 {
			return ErrAssetsRequired
		}
		minShares, err := parseOptionalAmount(body.MinShares)
		if err != nil {
			return NewInvalidField("min_shares", err)
		}

		ins, err := h.service.Provide(c.Context(), body.LP, body.Assets, minShares)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"instructions": ins})
	}
}

func (h *PoolHandler) Withdraw() fiber.Handler {
	return func(c fiber.Ctx) error {
		var body withdrawBody
		if err := h.bindBody(c, &body); err != nil {
			return err
		}
		if body.LP.IsZero() {
			return ErrLPRequired
		}

		var (
			ins []pool.Instruction
			err error
		)
		if len(body.Assets) > 0 {
			maxBurn, perr := parseOptionalAmount(body.MaxBurn)
			if perr != nil {
				return NewInvalidField("max_burn", perr)
			}
			ins, err = h.service.WithdrawImbalanced(c.Context(), body.LP, body.Assets, maxBurn)
		} else {
			if body.Amount == "" {
				return ErrAmountRequired
			}
			shares, perr := amm.ParseAmount(body.Amount)
			if perr != nil {
				return NewInvalidField("amount", perr)
			}
			ins, err = h.service.Withdraw(c.Context(), body.LP, &shares, body.MinOut)
		}
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"instructions": ins})
	}
}

func (h *PoolHandler) Swap() fiber.Handler {
	return func(c fiber.Ctx) error {
		var body swapBody
		if err := h.bindBody(c, &body); err != nil {
			return err
		}
		if body.LP.IsZero() {
			return ErrLPRequired
		}
		minOut, err := parseOptionalAmount(body.MinOut)
		if err != nil {
			return NewInvalidField("min_out", err)
		}

		ins, err := h.service.Swap(c.Context(), body.LP, body.Offer, body.Ask, minOut)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"instructions": ins})
	}
}

// feePercent renders a fee rate as a percentage.
func feePercent(fee amm.Rate) string {
	if fee.Den == 0 {
		return "0"
	}
	num := decimal.NewFromInt(int64(fee.Num)).Shift(2)
	return num.DivRound(decimal.NewFromInt(int64(fee.Den)), 8).String()
}

func parseLP(s string) (amm.AssetIdentity, error) {
	if s == "" {
		return amm.AssetIdentity{}, ErrLPRequired
	}
	lp, err := amm.ParseAssetIdentity(s)
	if err != nil {
		return amm.AssetIdentity{}, NewInvalidField("lp", err)
	}
	return lp, nil
}

// displayPrecisions returns the snapshot's precision table extended with
// the LP token, or nil when the pool does not track precisions.
func displayPrecisions(snap pool.Snapshot, lp amm.AssetIdentity) amm.PrecisionTable {
	if len(snap.Precisions) == 0 {
		return nil
	}
	out := make(amm.PrecisionTable, len(snap.Precisions)+1)
	for id, prec := range snap.Precisions {
		out[id] = prec
	}
	out[lp] = snap.LPPrecision
	return out
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apollodao/cw-dex-sub000/internal/eth"
	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/apollodao/cw-dex-sub000/pkg/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ChainReader is the subset of *eth.Client the service reads pools through.
type ChainReader interface {
	pool.Inspector
	PairState(ctx context.Context, pair common.Address) (eth.PairState, error)
	StableState(ctx context.Context, pool, lpToken common.Address) (eth.StableState, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	RouterQuote(ctx context.Context, router common.Address, amountIn *uint256.Int, path []common.Address) (uint256.Int, error)
}

// NativeLedger serves native pool module state.
type NativeLedger interface {
	NativePool(ctx context.Context, id uint64) (*pool.NativePool, error)
}

// Settings tune how contract pool state is turned into snapshots.
type Settings struct {
	// Router, when set, quotes constant-product pair swaps through
	// getAmountsOut instead of the local formula.
	Router common.Address
	// PairFeeBps is the swap fee of pair contracts, which do not expose it.
	PairFeeBps uint64
	// AmpPrecision is the fixed precision of the A values stableswap
	// contracts report, on top of their n^(n-1) factor.
	AmpPrecision uint64
	// MinimumLiquidity is the initial stableswap deposit floor for pools
	// whose snapshot does not carry one.
	MinimumLiquidity uint64
}

// nativeEther is the placeholder stableswap pools list for the chain's
// native coin.
var nativeEther = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// PoolService loads pools by LP token and simulates operations against them.
type PoolService struct {
	BaseService
	chain    ChainReader
	ledger   NativeLedger
	resolver *pool.Resolver
	settings Settings
}

// NewPoolService builds a service. Either source may be nil, in which case
// pools of that backend fail to load.
func NewPoolService(logger *slog.Logger, chain ChainReader, ledger NativeLedger, settings Settings) *PoolService {
	if settings.AmpPrecision == 0 {
		settings.AmpPrecision = 1
	}
	var inspector pool.Inspector
	if chain != nil {
		inspector = chain
	}
	return &PoolService{
		BaseService: BaseService{logger: logger},
		chain:       chain,
		ledger:      ledger,
		resolver:    pool.NewResolver(inspector),
		settings:    settings,
	}
}

// Load resolves lp and reads a fresh snapshot of its pool.
func (s *PoolService) Load(ctx context.Context, lp amm.AssetIdentity) (pool.Variant, error) {
	if !lp.IsNative() && !lp.IsZero() && s.chain == nil {
		return pool.Variant{}, fmt.Errorf("%w: %s", ErrChainUnavailable, lp)
	}
	ref, err := s.resolver.Resolve(ctx, lp)
	if err != nil {
		return pool.Variant{}, err
	}

	var v pool.Variant
	switch ref.Kind {
	case pool.KindNative:
		v, err = s.loadNative(ctx, ref)
	case pool.KindPair:
		v, err = s.loadPair(ctx, ref)
	case pool.KindStable:
		v, err = s.loadStable(ctx, ref)
	default:
		err = fmt.Errorf("%w: %q", pool.ErrUnknownVariant, ref.Kind)
	}
	if err != nil {
		return pool.Variant{}, fmt.Errorf("load %s pool %s: %w", ref.Kind, lp, err)
	}
	s.logger.Debug("pool loaded", "lp", lp.String(), "kind", string(v.Kind))
	return v, nil
}

func (s *PoolService) loadNative(ctx context.Context, ref pool.Ref) (pool.Variant, error) {
	if s.ledger == nil {
		return pool.Variant{}, ErrLedgerUnavailable
	}
	p, err := s.ledger.NativePool(ctx, ref.PoolID)
	if err != nil {
		return pool.Variant{}, err
	}
	if p.Snapshot.MinimumLiquidity == 0 {
		p.Snapshot.MinimumLiquidity = s.settings.MinimumLiquidity
	}
	return pool.NativeVariant(p), nil
}

func (s *PoolService) loadPair(ctx context.Context, ref pool.Ref) (pool.Variant, error) {
	st, err := s.chain.PairState(ctx, ref.Contract)
	if err != nil {
		return pool.Variant{}, err
	}
	t0, t1 := amm.ContractAsset(st.Token0), amm.ContractAsset(st.Token1)
	snap := pool.Snapshot{
		Reserves: amm.PoolReserves{
			Assets:      []amm.Asset{{ID: t0, Amount: st.Reserve0}, {ID: t1, Amount: st.Reserve1}},
			TotalShares: st.TotalSupply,
		},
		FeeBps:       s.settings.PairFeeBps,
		LockedShares: uniswapv2.MinimumLiquidity,
	}
	p, err := pool.NewPairPool(ref.Contract, []amm.AssetIdentity{t0, t1}, snap)
	if err != nil {
		return pool.Variant{}, err
	}
	v := pool.PairVariant(p)
	if s.settings.Router != (common.Address{}) {
		if err := v.SetQuoter(&routerQuoter{chain: s.chain, router: s.settings.Router}); err != nil {
			return pool.Variant{}, err
		}
	}
	return v, nil
}

func (s *PoolService) loadStable(ctx context.Context, ref pool.Ref) (pool.Variant, error) {
	lpToken := ref.LPToken.Contract
	st, err := s.chain.StableState(ctx, ref.Contract, lpToken)
	if err != nil {
		return pool.Variant{}, err
	}

	members := make([]amm.AssetIdentity, len(st.Coins))
	assets := make([]amm.Asset, len(st.Coins))
	precisions := make(amm.PrecisionTable, len(st.Coins))
	for i, coin := range st.Coins {
		id := amm.ContractAsset(coin)
		dec, err := s.decimals(ctx, coin)
		if err != nil {
			return pool.Variant{}, fmt.Errorf("decimals of %s: %w", coin.Hex(), err)
		}
		members[i] = id
		assets[i] = amm.Asset{ID: id, Amount: st.Balances[i]}
		precisions[id] = dec
	}
	lpDecimals, err := s.decimals(ctx, lpToken)
	if err != nil {
		return pool.Variant{}, fmt.Errorf("decimals of %s: %w", lpToken.Hex(), err)
	}

	// the contracts ramp the raw A and price with A/(n^(n-1)*precision)
	divisor := s.settings.AmpPrecision
	for i := 0; i < len(st.Coins)-1; i++ {
		divisor *= uint64(len(st.Coins))
	}
	snap := pool.Snapshot{
		Reserves:    amm.PoolReserves{Assets: assets, TotalShares: st.TotalSupply},
		FeeRate:     &amm.Rate{Num: st.Fee, Den: eth.StableFeeDenominator},
		Precisions:  precisions,
		LPPrecision: lpDecimals,
		Amp: &amm.AmplificationParams{
			InitAmp:     st.InitialA,
			InitAmpTime: st.InitialATime,
			NextAmp:     st.FutureA,
			NextAmpTime: st.FutureATime,
		},
		AmpDivisor:       divisor,
		Now:              st.Time,
		MinimumLiquidity: s.settings.MinimumLiquidity,
	}
	p, err := pool.NewStablePool(ref.Contract, lpToken, members, snap)
	if err != nil {
		return pool.Variant{}, err
	}
	return pool.StableVariant(p), nil
}

func (s *PoolService) decimals(ctx context.Context, token common.Address) (uint8, error) {
	if token == nativeEther {
		return 18, nil
	}
	return s.chain.Decimals(ctx, token)
}

// routerQuoter prices pair swaps with a router's getAmountsOut.
type routerQuoter struct {
	chain  ChainReader
	router common.Address
}

func (q *routerQuoter) QuoteSwap(ctx context.Context, offer amm.Asset, ask amm.AssetIdentity) (uint256.Int, error) {
	if offer.ID.IsNative() || ask.IsNative() {
		return uint256.Int{}, ErrRouterNativeAsset
	}
	return q.chain.RouterQuote(ctx, q.router, &offer.Amount, []common.Address{offer.ID.Contract, ask.Contract})
}

package amm

import (
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

// ValidateFee fails with ErrInvalidFee unless fee is below FeeDenominator.
func ValidateFee(fee uint64) error {
	if fee >= FeeDenominator {
		return fmt.Errorf("%w: %d bps, must be below %d", ErrInvalidFee, fee, FeeDenominator)
	}
	return nil
}

// CreateAmm registers a new AMM with the given fee and admin.
func (e *Engine) CreateAmm(l ledger.Ledger, id string, fee uint16, admin ledger.AccountID) (*AMM, error) {
	if err := ValidateFee(uint64(fee)); err != nil {
		return nil, err
	}

	a := &AMM{ID: id, Admin: admin, Fee: fee}
	data, err := ledger.EncodeRecord(a)
	if err != nil {
		return nil, err
	}
	if err := l.CreateRecord(a.Keylet(), data); err != nil {
		return nil, fmt.Errorf("create amm %q: %w", id, err)
	}

	e.logger.Info("amm created", "amm", id, "fee", fee, "admin", admin)
	return a, nil
}

// CreatePool registers the (aMint, bMint) pool under an existing AMM. The
// pool starts empty. Mint order is significant and the mints are not
// required to differ.
func (e *Engine) CreatePool(l ledger.Ledger, ammID string, aMint, bMint ledger.Asset) (*Pool, error) {
	if _, err := GetAmm(l, ammID); err != nil {
		return nil, err
	}

	p := &Pool{AMM: ammID, AMint: aMint, BMint: bMint}
	data, err := ledger.EncodeRecord(p)
	if err != nil {
		return nil, err
	}
	if err := l.CreateRecord(p.Keylet(), data); err != nil {
		return nil, fmt.Errorf("create pool %s/%s: %w", aMint, bMint, err)
	}

	e.logger.Info("pool created",
		"amm", ammID,
		"a_mint", aMint,
		"b_mint", bMint,
		"pool", p.Keylet(),
		"authority", p.Authority(),
	)
	return p, nil
}

// GetAmm loads the AMM registered under id.
func GetAmm(l ledger.Ledger, id string) (*AMM, error) {
	data, err := l.Lookup(keylet.AMM(id))
	if err != nil {
		return nil, fmt.Errorf("amm %q: %w", id, err)
	}
	var a AMM
	if err := ledger.DecodeRecord(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetPool loads the (aMint, bMint) pool of an AMM.
func GetPool(l ledger.Ledger, ammID string, aMint, bMint ledger.Asset) (*Pool, error) {
	return GetPoolByKey(l, keylet.Pool(keylet.AMM(ammID), string(aMint), string(bMint)))
}

// GetPoolByKey loads the pool stored under k.
func GetPoolByKey(l ledger.Ledger, k keylet.Keylet) (*Pool, error) {
	data, err := l.Lookup(k)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", k, err)
	}
	return DecodePool(data)
}

// DecodePool decodes a stored pool record.
func DecodePool(data []byte) (*Pool, error) {
	var p Pool
	if err := ledger.DecodeRecord(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReadPoolState returns the current reserves and share supply of p.
func ReadPoolState(l ledger.Ledger, p *Pool) (*PoolState, error) {
	a, b, err := reserves(l, p)
	if err != nil {
		return nil, err
	}
	supply, err := l.Supply(p.LiquidityMint())
	if err != nil {
		return nil, err
	}
	s := &PoolState{ReserveA: a, ReserveB: b, Supply: supply}
	if a != 0 || b != 0 {
		s.Locked = MinimumLiquidity
	}
	return s, nil
}

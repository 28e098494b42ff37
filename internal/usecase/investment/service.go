package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/metrics"
)

// Portfolio is a user's holdings valued at current NAV, with totals
type Portfolio struct {
	Holdings           []domain.Valuation
	TotalInvestedValue decimal.Decimal
	TotalCurrentValue  decimal.Decimal
}

// InvestmentService is the portfolio engine: it buys and sells units, keeps holdings and
// the transaction ledger consistent, and values holdings for the read paths.
type InvestmentService struct {
	Products     domain.ProductCatalog
	HoldingRepo  domain.HoldingRepository
	TxnRepo      domain.TransactionRepository
	UnitOfWork   domain.UnitOfWork
	Locker       domain.Locker
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	Currency     string           // ISO code used for formatted amounts
	Now          func() time.Time // transaction clock
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(
	products domain.ProductCatalog,
	holdingRepo domain.HoldingRepository,
	txnRepo domain.TransactionRepository,
	uow domain.UnitOfWork,
	locker domain.Locker,
	m *metrics.Metrics,
	log zerolog.Logger,
) *InvestmentService {
	return &InvestmentService{
		Products:    products,
		HoldingRepo: holdingRepo,
		TxnRepo:     txnRepo,
		UnitOfWork:  uow,
		Locker:      locker,
		Metrics:     m,
		Logger:      log.With().Str("service", "investment").Logger(),
		Currency:    DefaultCurrency,
		Now:         time.Now,
	}
}

// Buy purchases units of a product for a user at the product's current NAV
// Logic:
//   - Reject non-positive units, unknown or inactive products, and amounts below the product minimum
//   - Load (or start) the holding, recompute the weighted average price, persist it
//   - Append a BUY transaction in the same unit of work
//
// Returns the valuation of the updated holding
func (s *InvestmentService) Buy(ctx context.Context, userID uuid.UUID, productID int64, units decimal.Decimal) (*domain.Valuation, error) {
	started := time.Now()
	view, err := s.buy(ctx, userID, productID, units)
	s.Metrics.ObserveOperation("buy", started, err)
	s.logOutcome("buy", userID, productID, units, view, err)
	return view, err
}

func (s *InvestmentService) buy(ctx context.Context, userID uuid.UUID, productID int64, units decimal.Decimal) (*domain.Valuation, error) {
	// 1. Validate the request before taking any lock
	if err := domain.ValidateUnits(units); err != nil {
		return nil, err
	}

	// 2. Serialise writers of this (user, product) pair
	unlock, err := s.lock(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 3. One product snapshot for the whole operation
	product, err := s.productForTrade(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.InvalidInvestment("investment product is not active")
	}

	amount := product.InvestmentAmount(units)
	if amount.LessThan(product.MinimumInvestment) {
		return nil, domain.MinimumInvestmentNotMet(product.MinimumInvestment)
	}

	// 4. Holding upsert and ledger append commit together
	var view domain.Valuation
	err = s.UnitOfWork.Atomic(ctx, func(ctx context.Context, holdings domain.HoldingRepository, txns domain.TransactionRepository) error {
		holding, err := holdings.FindByUserAndProduct(ctx, userID, productID)
		if errors.Is(err, domain.ErrNotFound) {
			holding = domain.NewHolding(userID, productID)
		} else if err != nil {
			return err
		}

		holding.ApplyBuy(units, product.CurrentUnitValue)
		if err := holdings.Save(ctx, holding); err != nil {
			return err
		}

		txn := domain.NewTransaction(userID, productID, domain.TransactionTypeBuy, units, product.CurrentUnitValue, s.Now())
		if err := txns.Append(ctx, txn); err != nil {
			return err
		}

		view = domain.Valuate(holding, product)
		return nil
	})
	if err != nil {
		return nil, asStorageFailure(err)
	}

	s.Metrics.AddUnits(domain.TransactionTypeBuy, units)
	return &view, nil
}

// Sell redeems units of a product from a user's holding at the product's current NAV
// Logic:
//   - The product's active flag is not checked; deactivated products remain sellable
//   - The average purchase price never changes on a sell
//   - A holding reduced to zero units is deleted, the SELL transaction is still appended
//
// Returns the valuation computed from the in-memory holding after the sell (zero units on full liquidation)
func (s *InvestmentService) Sell(ctx context.Context, userID uuid.UUID, productID int64, units decimal.Decimal) (*domain.Valuation, error) {
	started := time.Now()
	view, err := s.sell(ctx, userID, productID, units)
	s.Metrics.ObserveOperation("sell", started, err)
	s.logOutcome("sell", userID, productID, units, view, err)
	return view, err
}

func (s *InvestmentService) sell(ctx context.Context, userID uuid.UUID, productID int64, units decimal.Decimal) (*domain.Valuation, error) {
	if err := domain.ValidateUnits(units); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	product, err := s.productForTrade(ctx, productID)
	if err != nil {
		return nil, err
	}

	var view domain.Valuation
	err = s.UnitOfWork.Atomic(ctx, func(ctx context.Context, holdings domain.HoldingRepository, txns domain.TransactionRepository) error {
		holding, err := holdings.FindByUserAndProduct(ctx, userID, productID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.InvalidInvestment("no holding found for this product")
		} else if err != nil {
			return err
		}

		if err := holding.ApplySell(units); err != nil {
			return err
		}

		if holding.IsEmpty() {
			if err := holdings.DeleteByID(ctx, holding.ID); err != nil {
				return err
			}
		} else if err := holdings.Save(ctx, holding); err != nil {
			return err
		}

		txn := domain.NewTransaction(userID, productID, domain.TransactionTypeSell, units, product.CurrentUnitValue, s.Now())
		if err := txns.Append(ctx, txn); err != nil {
			return err
		}

		view = domain.Valuate(holding, product)
		return nil
	})
	if err != nil {
		return nil, asStorageFailure(err)
	}

	s.Metrics.AddUnits(domain.TransactionTypeSell, units)
	return &view, nil
}

// GetPortfolio values every holding of a user at current NAV
// Totals are the sums of the per-holding (already rounded) invested and current values.
func (s *InvestmentService) GetPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error) {
	started := time.Now()
	portfolio, err := s.getPortfolio(ctx, userID)
	s.Metrics.ObserveOperation("get_portfolio", started, err)
	if err != nil {
		s.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load portfolio")
	}
	return portfolio, err
}

func (s *InvestmentService) getPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error) {
	holdings, err := s.HoldingRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to list holdings: %w", err))
	}

	portfolio := &Portfolio{
		Holdings:           make([]domain.Valuation, 0, len(holdings)),
		TotalInvestedValue: decimal.Zero,
		TotalCurrentValue:  decimal.Zero,
	}

	products := newProductCache(s.Products)
	for _, holding := range holdings {
		product, err := products.get(ctx, holding.ProductID)
		if err != nil {
			return nil, domain.StorageFailure(fmt.Errorf("failed to load product %d for holding %s: %w", holding.ProductID, holding.ID, err))
		}

		view := domain.Valuate(holding, product)
		portfolio.Holdings = append(portfolio.Holdings, view)
		portfolio.TotalInvestedValue = portfolio.TotalInvestedValue.Add(view.InvestedValue)
		portfolio.TotalCurrentValue = portfolio.TotalCurrentValue.Add(view.CurrentValue)
	}

	return portfolio, nil
}

// GetHolding values one holding owned by the user
// Returns NotFound when the holding does not exist or belongs to another user
func (s *InvestmentService) GetHolding(ctx context.Context, userID, holdingID uuid.UUID) (*domain.Valuation, error) {
	view, err := s.getHolding(ctx, userID, holdingID)
	if domain.KindOf(err) == domain.KindStorageFailure {
		s.Logger.Error().Err(err).Str("user_id", userID.String()).Str("holding_id", holdingID.String()).Msg("Failed to load holding")
	}
	return view, err
}

func (s *InvestmentService) getHolding(ctx context.Context, userID, holdingID uuid.UUID) (*domain.Valuation, error) {
	holding, err := s.HoldingRepo.FindByID(ctx, holdingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("holding not found")
	}
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to get holding: %w", err))
	}
	if holding.UserID != userID {
		return nil, domain.NotFound("holding not found")
	}

	product, err := s.Products.GetProduct(ctx, holding.ProductID)
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to load product %d: %w", holding.ProductID, err))
	}

	view := domain.Valuate(holding, product)
	return &view, nil
}

// lock acquires the per-(user, product) lock. Failures are storage failures;
// contention (ErrConflict) is reported as retryable.
func (s *InvestmentService) lock(ctx context.Context, userID uuid.UUID, productID int64) (func(), error) {
	started := time.Now()
	unlock, err := s.Locker.Lock(ctx, domain.HoldingLockKey(userID, productID))
	s.Metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to acquire holding lock: %w", err))
	}
	return unlock, nil
}

// productForTrade loads the product snapshot used by a buy or sell
func (s *InvestmentService) productForTrade(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.Products.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.InvalidInvestment("investment product not found")
	}
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("failed to get product: %w", err))
	}
	return product, nil
}

// asStorageFailure passes request rejections through and wraps everything else
func asStorageFailure(err error) error {
	switch domain.KindOf(err) {
	case domain.KindInvalidInvestment, domain.KindMinimumInvestmentNotMet, domain.KindInsufficientUnits, domain.KindStorageFailure:
		return err
	}
	return domain.StorageFailure(err)
}

func (s *InvestmentService) logOutcome(op string, userID uuid.UUID, productID int64, units decimal.Decimal, view *domain.Valuation, err error) {
	switch {
	case err == nil:
		s.Logger.Info().
			Str("op", op).
			Str("user_id", userID.String()).
			Int64("product_id", productID).
			Str("units", units.String()).
			Str("unit_value", view.CurrentUnitValue.String()).
			Str("units_owned", view.UnitsOwned.String()).
			Msg("Trade committed")
	case domain.KindOf(err) == domain.KindStorageFailure:
		s.Logger.Error().
			Err(err).
			Str("op", op).
			Str("user_id", userID.String()).
			Int64("product_id", productID).
			Msg("Trade failed")
	default:
		event := s.Logger.Warn().
			Err(err).
			Str("op", op).
			Str("user_id", userID.String()).
			Int64("product_id", productID)
		// Out of range quantities are not rendered; their string form can be megabytes long
		if domain.ValidateUnits(units) == nil {
			event = event.Str("units", units.String())
		}
		event.Msg("Trade rejected")
	}
}

// productCache memoises catalog lookups within one request
type productCache struct {
	catalog  domain.ProductCatalog
	products map[int64]*domain.Product
}

func newProductCache(catalog domain.ProductCatalog) *productCache {
	return &productCache{catalog: catalog, products: make(map[int64]*domain.Product)}
}

func (c *productCache) get(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	p, err := c.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	c.products[id] = p
	return p, nil
}

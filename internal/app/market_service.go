package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/clock"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/config"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/guard"
)

// Ledger is the asset-ledger surface the marketplace engine depends on.
// In production it is the LedgerService sharing the same database, so a
// marketplace transaction spans both components.
type Ledger interface {
	RegisterMarket(ctx context.Context, in RegisterMarketInput) (domain.Market, error)
	MintTicket(ctx context.Context, in MintTicketInput) error
	MintCurrency(ctx context.Context, in MintCurrencyInput) error
	Transfer(ctx context.Context, in TransferInput) error
	BalanceOf(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error)
	TotalSupply(ctx context.Context, tokenID int64) (int64, error)
	IsApprovedForAll(ctx context.Context, owner, operator uuid.UUID) (bool, error)
	Market(ctx context.Context, key string) (domain.Market, error)
}

type MarketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetState(ctx context.Context, marketKey string) (*domain.MarketplaceState, error)
	GetStateForUpdate(ctx context.Context, marketKey string) (domain.MarketplaceState, error)
	CreateState(ctx context.Context, st domain.MarketplaceState) error
	AddTicketsSold(ctx context.Context, marketKey string, quantity int64) error
	CreateFestTicket(ctx context.Context, t domain.FestTicket) (int64, error)
	GetFestTicketForUpdate(ctx context.Context, id int64) (domain.FestTicket, error)
	MarkFestTicketSold(ctx context.Context, id int64, owner uuid.UUID, soldAt time.Time) error
	ListFestTickets(ctx context.Context, marketKey string) ([]domain.FestTicket, error)
	GetLastSalePrice(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error)
	SetLastSalePrice(ctx context.Context, account uuid.UUID, tokenID, price int64) error
	TransferSettlement(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) error
	RecordEvent(ctx context.Context, event domain.Event) error
}

// AccountProvisioner creates the marketplace's own identities at
// bootstrap.
type AccountProvisioner interface {
	EnsureAccount(ctx context.Context, id uuid.UUID, name string) (domain.Account, error)
}

// MarketService is the marketplace engine: primary ticket and currency
// sales against the marketplace reserve, and peer-to-peer resale under
// the price-escalation cap. It is bound to a single market key and is
// the only authorized ledger caller for it.
type MarketService struct {
	repo     MarketRepository
	ledger   Ledger
	accounts AccountProvisioner
	clock    clock.Clock
	guard    *guard.Guard
	cfg      config.Market

	// Fixed after Bootstrap. The registry is write-once, so caching the
	// market binding is sound.
	market    domain.Market
	account   uuid.UUID // the marketplace's own identity, = market operator
	organizer uuid.UUID
}

func NewMarketService(repo MarketRepository, ledger Ledger, accounts AccountProvisioner, clk clock.Clock, cfg config.Market) *MarketService {
	return &MarketService{
		repo:     repo,
		ledger:   ledger,
		accounts: accounts,
		clock:    clk,
		guard:    guard.New(),
		cfg:      cfg,
	}
}

// Bootstrap registers the configured market on first start and reloads
// the binding on subsequent starts. It must run before the service
// handles requests.
func (s *MarketService) Bootstrap(ctx context.Context) error {
	st, err := s.repo.GetState(ctx, s.cfg.Key)
	if err != nil {
		return fmt.Errorf("load marketplace state: %w", err)
	}
	if st != nil {
		market, err := s.ledger.Market(ctx, s.cfg.Key)
		if err != nil {
			return fmt.Errorf("load market %q: %w", s.cfg.Key, err)
		}
		s.market = market
		s.account = market.Operator
		s.organizer = st.Organizer
		return nil
	}

	marketplaceID := s.cfg.MarketplaceAccount
	if marketplaceID == uuid.Nil {
		marketplaceID = uuid.New()
	}
	organizerID := s.cfg.OrganizerAccount
	if organizerID == uuid.Nil {
		organizerID = uuid.New()
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.accounts.EnsureAccount(txCtx, marketplaceID, "marketplace"); err != nil {
			return err
		}
		if _, err := s.accounts.EnsureAccount(txCtx, organizerID, "organizer"); err != nil {
			return err
		}

		market, err := s.ledger.RegisterMarket(txCtx, RegisterMarketInput{
			Caller:      marketplaceID,
			MarketKey:   s.cfg.Key,
			Operator:    marketplaceID,
			CurrencyURI: s.cfg.CurrencyTokenURI,
			TicketURI:   s.cfg.TicketTokenURI,
		})
		if err != nil {
			return fmt.Errorf("register market %q: %w", s.cfg.Key, err)
		}

		if s.cfg.CurrencyReserve > 0 {
			if err := s.ledger.MintCurrency(txCtx, MintCurrencyInput{
				Caller:    marketplaceID,
				MarketKey: s.cfg.Key,
				Quantity:  s.cfg.CurrencyReserve,
			}); err != nil {
				return fmt.Errorf("mint currency reserve: %w", err)
			}
		}

		if err := s.repo.CreateState(txCtx, domain.MarketplaceState{
			MarketKey: s.cfg.Key,
			Organizer: organizerID,
		}); err != nil {
			return err
		}

		s.market = market
		s.account = marketplaceID
		s.organizer = organizerID
		return nil
	})
}

// Market reports the bound market record.
func (s *MarketService) Market() domain.Market {
	return s.market
}

// Account is the marketplace's own ledger identity.
func (s *MarketService) Account() uuid.UUID {
	return s.account
}

// Organizer is the account receiving primary payments and fees.
func (s *MarketService) Organizer() uuid.UUID {
	return s.organizer
}

type BuyCurrencyInput struct {
	Caller   uuid.UUID
	Quantity int64
	Payment  decimal.Decimal
}

// BuyCurrency sells currency tokens from the marketplace reserve at the
// fixed unit price. Payment must match exactly; no change is given and
// underpayment is rejected outright. The full payment is forwarded to
// the organizer.
func (s *MarketService) BuyCurrency(ctx context.Context, in BuyCurrencyInput) (int64, error) {
	if in.Caller == uuid.Nil {
		return 0, domain.ErrInvalidID
	}
	if in.Quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	expected := s.cfg.CurrencyUnitPrice.Mul(decimal.NewFromInt(in.Quantity))
	if !in.Payment.Equal(expected) {
		return 0, domain.ErrIncorrectPayment
	}

	var balance int64
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.TransferSettlement(txCtx, in.Caller, s.organizer, in.Payment); err != nil {
			return err
		}
		if err := s.ledger.Transfer(txCtx, TransferInput{
			Caller:   s.account,
			From:     s.account,
			To:       in.Caller,
			TokenID:  s.market.CurrencyTokenID,
			Quantity: in.Quantity,
		}); err != nil {
			return err
		}
		if err := s.repo.RecordEvent(txCtx, domain.Event{
			Kind: domain.EventCurrencyPurchased,
			Payload: map[string]any{
				"market_key": s.cfg.Key,
				"buyer":      in.Caller.String(),
				"quantity":   in.Quantity,
				"payment":    in.Payment.String(),
			},
			OccurredAt: s.clock.Now(),
		}); err != nil {
			return err
		}

		var err error
		balance, err = s.ledger.BalanceOf(txCtx, in.Caller, s.market.CurrencyTokenID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

type BuyTicketInput struct {
	Caller   uuid.UUID
	Quantity int64
}

// BuyTicket mints tickets to the buyer against currency payment, up to
// the fixed supply cap. The buyer's last-sale-price for the ticket token
// is set to the primary unit price, establishing the baseline for any
// future resale.
func (s *MarketService) BuyTicket(ctx context.Context, in BuyTicketInput) (int64, error) {
	if in.Caller == uuid.Nil {
		return 0, domain.ErrInvalidID
	}
	if in.Quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}

	var sold int64
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		// Lock the marketplace state row so concurrent purchases check
		// the cap one at a time.
		st, err := s.repo.GetStateForUpdate(txCtx, s.cfg.Key)
		if err != nil {
			return err
		}

		supply, err := s.ledger.TotalSupply(txCtx, s.market.TicketTokenID)
		if err != nil {
			return err
		}
		if supply >= s.cfg.TicketSupplyCap {
			return domain.ErrSoldOut
		}
		if supply+in.Quantity > s.cfg.TicketSupplyCap {
			return domain.ErrExceedsCap
		}

		cost := in.Quantity * s.cfg.TicketUnitPrice
		balance, err := s.ledger.BalanceOf(txCtx, in.Caller, s.market.CurrencyTokenID)
		if err != nil {
			return err
		}
		if balance < cost {
			return domain.ErrInsufficientCurrency
		}
		approved, err := s.ledger.IsApprovedForAll(txCtx, in.Caller, s.account)
		if err != nil {
			return err
		}
		if !approved {
			return domain.ErrNotApproved
		}

		if err := s.ledger.Transfer(txCtx, TransferInput{
			Caller:   s.account,
			From:     in.Caller,
			To:       s.account,
			TokenID:  s.market.CurrencyTokenID,
			Quantity: cost,
		}); err != nil {
			return err
		}
		if err := s.ledger.MintTicket(txCtx, MintTicketInput{
			Caller:    s.account,
			MarketKey: s.cfg.Key,
			Quantity:  in.Quantity,
			To:        in.Caller,
		}); err != nil {
			return err
		}
		if err := s.repo.AddTicketsSold(txCtx, s.cfg.Key, in.Quantity); err != nil {
			return err
		}
		if err := s.repo.SetLastSalePrice(txCtx, in.Caller, s.market.TicketTokenID, s.cfg.TicketUnitPrice); err != nil {
			return err
		}

		sold = st.TicketsSold + in.Quantity
		return s.repo.RecordEvent(txCtx, domain.Event{
			Kind: domain.EventPrimarySale,
			Payload: map[string]any{
				"market_key":   s.cfg.Key,
				"buyer":        in.Caller.String(),
				"quantity":     in.Quantity,
				"unit_price":   s.cfg.TicketUnitPrice,
				"tickets_sold": sold,
			},
			OccurredAt: s.clock.Now(),
		})
	})
	if err != nil {
		return 0, err
	}
	return sold, nil
}

type ListTicketInput struct {
	Caller     uuid.UUID
	AskPrice   int64
	ListingFee decimal.Decimal
}

// ListTicket escrows one of the caller's tickets and creates a resale
// listing. The ask price may not exceed the caller's most recent
// realized price scaled by the resale cap rate; an account that never
// sold has a zero baseline and cannot list at any positive price. The
// listing fee, a fraction of the ask denominated in base currency,
// must match exactly.
//
// Guarded: the escrow transfer fires before the listing is committed,
// so a callback must not re-enter the engine mid-flight.
func (s *MarketService) ListTicket(ctx context.Context, in ListTicketInput) (domain.FestTicket, error) {
	if in.Caller == uuid.Nil {
		return domain.FestTicket{}, domain.ErrInvalidID
	}
	if in.AskPrice <= 0 {
		return domain.FestTicket{}, domain.ErrInvalidPrice
	}

	var listing domain.FestTicket
	err := s.guard.Do(ctx, func(gctx context.Context) error {
		return s.repo.WithTx(gctx, func(txCtx context.Context) error {
			held, err := s.ledger.BalanceOf(txCtx, in.Caller, s.market.TicketTokenID)
			if err != nil {
				return err
			}
			if held < 1 {
				return domain.ErrNoHolding
			}

			lastPrice, err := s.repo.GetLastSalePrice(txCtx, in.Caller, s.market.TicketTokenID)
			if err != nil {
				return err
			}
			priceCap := decimal.NewFromInt(lastPrice).Mul(s.cfg.ResaleCapRate)
			if decimal.NewFromInt(in.AskPrice).GreaterThan(priceCap) {
				return domain.ErrPriceCapExceeded
			}

			expectedFee := decimal.NewFromInt(in.AskPrice).
				Mul(s.cfg.CurrencyUnitPrice).
				Mul(s.cfg.ListingFeeRate)
			if !in.ListingFee.Equal(expectedFee) {
				return domain.ErrIncorrectListingFee
			}

			approved, err := s.ledger.IsApprovedForAll(txCtx, in.Caller, s.account)
			if err != nil {
				return err
			}
			if !approved {
				return domain.ErrNotApproved
			}

			if !expectedFee.IsZero() {
				if err := s.repo.TransferSettlement(txCtx, in.Caller, s.account, expectedFee); err != nil {
					return err
				}
			}

			// Escrow the ticket with the marketplace.
			if err := s.ledger.Transfer(txCtx, TransferInput{
				Caller:   s.account,
				From:     in.Caller,
				To:       s.account,
				TokenID:  s.market.TicketTokenID,
				Quantity: 1,
			}); err != nil {
				return err
			}

			listing = domain.FestTicket{
				MarketKey: s.cfg.Key,
				TokenID:   s.market.TicketTokenID,
				Seller:    in.Caller,
				ListPrice: in.AskPrice,
				CreatedAt: s.clock.Now(),
			}
			listing.ID, err = s.repo.CreateFestTicket(txCtx, listing)
			if err != nil {
				return err
			}

			return s.repo.RecordEvent(txCtx, domain.Event{
				Kind: domain.EventTicketListed,
				Payload: map[string]any{
					"market_key":  s.cfg.Key,
					"fest_ticket": listing.ID,
					"token_id":    listing.TokenID,
					"seller":      listing.Seller.String(),
					"list_price":  listing.ListPrice,
				},
				OccurredAt: listing.CreatedAt,
			})
		})
	})
	if err != nil {
		return domain.FestTicket{}, err
	}
	return listing, nil
}

type BuyListedTicketInput struct {
	Caller   uuid.UUID
	TicketID int64
}

// BuyListedTicket settles a resale listing: currency moves directly
// from buyer to seller, the escrowed ticket moves to the buyer, the
// seller's last-sale-price becomes the realized price, and the
// organizer receives its fee in base currency.
//
// Guarded for the same reason as ListTicket.
func (s *MarketService) BuyListedTicket(ctx context.Context, in BuyListedTicketInput) (domain.FestTicket, error) {
	if in.Caller == uuid.Nil {
		return domain.FestTicket{}, domain.ErrInvalidID
	}

	var ticket domain.FestTicket
	err := s.guard.Do(ctx, func(gctx context.Context) error {
		return s.repo.WithTx(gctx, func(txCtx context.Context) error {
			ft, err := s.repo.GetFestTicketForUpdate(txCtx, in.TicketID)
			if err != nil {
				return err
			}
			if ft.Sold {
				return domain.ErrUnknownTicket
			}

			balance, err := s.ledger.BalanceOf(txCtx, in.Caller, s.market.CurrencyTokenID)
			if err != nil {
				return err
			}
			if balance < ft.ListPrice {
				return domain.ErrInsufficientCurrency
			}
			approved, err := s.ledger.IsApprovedForAll(txCtx, in.Caller, s.account)
			if err != nil {
				return err
			}
			if !approved {
				return domain.ErrNotApproved
			}

			// Direct peer settlement: the price never passes through
			// the marketplace.
			if err := s.ledger.Transfer(txCtx, TransferInput{
				Caller:   s.account,
				From:     in.Caller,
				To:       ft.Seller,
				TokenID:  s.market.CurrencyTokenID,
				Quantity: ft.ListPrice,
			}); err != nil {
				return err
			}
			if err := s.ledger.Transfer(txCtx, TransferInput{
				Caller:   s.account,
				From:     s.account,
				To:       in.Caller,
				TokenID:  ft.TokenID,
				Quantity: 1,
			}); err != nil {
				return err
			}

			fee := decimal.NewFromInt(ft.ListPrice).
				Mul(s.cfg.CurrencyUnitPrice).
				Mul(s.cfg.OrganizerFeeRate)
			if !fee.IsZero() {
				if err := s.repo.TransferSettlement(txCtx, in.Caller, s.organizer, fee); err != nil {
					return err
				}
			}

			now := s.clock.Now()
			if err := s.repo.MarkFestTicketSold(txCtx, ft.ID, in.Caller, now); err != nil {
				return err
			}
			if err := s.repo.SetLastSalePrice(txCtx, ft.Seller, ft.TokenID, ft.ListPrice); err != nil {
				return err
			}

			owner := in.Caller
			ticket = ft
			ticket.Owner = &owner
			ticket.Sold = true
			ticket.SoldAt = &now

			return s.repo.RecordEvent(txCtx, domain.Event{
				Kind: domain.EventSecondarySale,
				Payload: map[string]any{
					"market_key":    s.cfg.Key,
					"fest_ticket":   ft.ID,
					"token_id":      ft.TokenID,
					"seller":        ft.Seller.String(),
					"buyer":         in.Caller.String(),
					"price":         ft.ListPrice,
					"organizer_fee": fee.String(),
				},
				OccurredAt: now,
			})
		})
	})
	if err != nil {
		return domain.FestTicket{}, err
	}
	return ticket, nil
}

// SecondaryMarket enumerates every listing ever created for the bound
// market, sold and unsold alike, in listing-id order.
func (s *MarketService) SecondaryMarket(ctx context.Context) ([]domain.FestTicket, error) {
	return s.repo.ListFestTickets(ctx, s.cfg.Key)
}

// State reports the marketplace bookkeeping row.
func (s *MarketService) State(ctx context.Context) (domain.MarketplaceState, error) {
	st, err := s.repo.GetState(ctx, s.cfg.Key)
	if err != nil {
		return domain.MarketplaceState{}, err
	}
	if st == nil {
		return domain.MarketplaceState{}, domain.ErrMarketNotRegistered
	}
	return *st, nil
}

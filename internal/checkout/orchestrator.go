package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	pkgcheckout "github.com/angelmondragon/packfinderz-pos/pkg/checkout"
	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/angelmondragon/packfinderz-pos/pkg/metrics"
	"github.com/angelmondragon/packfinderz-pos/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type queueRemover interface {
	Remove(ctx context.Context, storeID, locationID, customerID uuid.UUID) error
}

// Config bounds the orchestrator's settlement behavior.
type Config struct {
	SettlementTimeout time.Duration
	InvoiceDueIn      time.Duration
}

const (
	defaultSettlementTimeout = 30 * time.Second
	defaultInvoiceDueIn      = 7 * 24 * time.Hour
)

// Orchestrator drives one checkout attempt at a time for a register's
// cart: it validates the selected method's preconditions, invokes the
// matching settlement, and on success runs the post-completion
// sequence. A second submit while one is in flight is rejected, never
// queued.
type Orchestrator struct {
	gateway Gateway
	agg     *cart.Aggregate
	queue   queueRemover
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	info    SessionInfo
	cfg     Config

	mu      sync.Mutex
	session Session
}

// NewOrchestrator builds a checkout orchestrator. A queue remover is
// optional; without one the post-completion queue step is skipped.
func NewOrchestrator(gateway Gateway, agg *cart.Aggregate, queue queueRemover, info SessionInfo, cfg Config, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Orchestrator, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if agg == nil {
		return nil, fmt.Errorf("cart aggregate required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.SettlementTimeout <= 0 {
		cfg.SettlementTimeout = defaultSettlementTimeout
	}
	if cfg.InvoiceDueIn <= 0 {
		cfg.InvoiceDueIn = defaultInvoiceDueIn
	}
	if !info.Attributed() {
		logg.Warn(context.Background(), "checkout session has no register or user attribution")
	}
	return &Orchestrator{
		gateway: gateway,
		agg:     agg,
		queue:   queue,
		logg:    logg,
		metrics: m,
		info:    info,
		cfg:     cfg,
		session: Session{Status: enums.CheckoutStatusIdle},
	}, nil
}

// Session returns a snapshot of the current checkout session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Reset discards a finished session so the next customer can check out.
// Rejected while a settlement is in flight.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.InFlight() {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout in progress")
	}
	o.session = Session{Status: enums.CheckoutStatusIdle}
	return nil
}

// SubmitCash settles the cart with cash. Tendered must cover the total;
// the exact total is accepted with zero change.
func (o *Orchestrator) SubmitCash(ctx context.Context, tendered decimal.Decimal, customerName *string) (*SaleCompletion, error) {
	if err := o.begin(enums.PaymentMethodCash); err != nil {
		return nil, err
	}

	c, err := o.validatedCart()
	if err != nil {
		return nil, o.rejectInput(err)
	}
	if err := pkgcheckout.ValidateTender(tendered, c.Totals().Total); err != nil {
		return nil, o.rejectInput(err)
	}

	o.setStatus(enums.CheckoutStatusProcessing)
	receipt, err := o.settle(ctx, enums.PaymentMethodCash, func(ctx context.Context) (*SaleCompletion, error) {
		return o.gateway.SettleCash(ctx, o.info, c, tendered, customerName)
	})
	if err != nil {
		return nil, o.fail(err)
	}

	o.succeed(receipt)
	o.postComplete(ctx, c, receipt)
	return receipt, nil
}

// SubmitInvoice settles the cart against a billing invoice. The email
// check is intentionally shallow; a zero dueDate defaults to the
// configured offset from now.
func (o *Orchestrator) SubmitInvoice(ctx context.Context, customerEmail string, customerName *string, dueDate time.Time) (*SaleCompletion, error) {
	if err := o.begin(enums.PaymentMethodInvoice); err != nil {
		return nil, err
	}

	c, err := o.validatedCart()
	if err != nil {
		return nil, o.rejectInput(err)
	}
	if err := pkgcheckout.ValidateInvoiceEmail(customerEmail); err != nil {
		return nil, o.rejectInput(err)
	}
	if dueDate.IsZero() {
		dueDate = time.Now().Add(o.cfg.InvoiceDueIn)
	}

	o.setStatus(enums.CheckoutStatusProcessing)
	receipt, err := o.settle(ctx, enums.PaymentMethodInvoice, func(ctx context.Context) (*SaleCompletion, error) {
		return o.gateway.SettleInvoice(ctx, o.info, c, customerEmail, customerName, dueDate)
	})
	if err != nil {
		return nil, o.fail(err)
	}

	o.succeed(receipt)
	o.postComplete(ctx, c, receipt)
	return receipt, nil
}

// SubmitCard always fails: card settlement needs a terminal integration
// this register does not have, and it must never silently succeed.
func (o *Orchestrator) SubmitCard(ctx context.Context) (*SaleCompletion, error) {
	if err := o.begin(enums.PaymentMethodCard); err != nil {
		return nil, err
	}
	err := pkgerrors.New(pkgerrors.CodeUnsupported, "card settlement requires a terminal integration")
	return nil, o.rejectInput(err)
}

func (o *Orchestrator) begin(method enums.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.InFlight() {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	if o.session.Status == enums.CheckoutStatusSucceeded {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout session already completed")
	}
	o.session = Session{Status: enums.CheckoutStatusValidating, Method: method}
	return nil
}

func (o *Orchestrator) validatedCart() (*cart.Cart, error) {
	c := o.agg.Current()
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cart loaded")
	}
	if len(c.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	return c, nil
}

// rejectInput returns the session to idle without recording a failed
// settlement; nothing was submitted to the gateway.
func (o *Orchestrator) rejectInput(err error) error {
	o.mu.Lock()
	o.session.Status = enums.CheckoutStatusIdle
	method := o.session.Method
	o.mu.Unlock()

	o.metrics.IncFailure(method.String(), failureReason(err))
	return err
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.session.Status = enums.CheckoutStatusFailed
	o.session.FailureReason = err.Error()
	method := o.session.Method
	o.mu.Unlock()

	o.metrics.IncFailure(method.String(), failureReason(err))
	return err
}

func (o *Orchestrator) succeed(receipt *SaleCompletion) {
	o.mu.Lock()
	o.session.Status = enums.CheckoutStatusSucceeded
	o.session.Receipt = receipt
	o.mu.Unlock()
}

func (o *Orchestrator) setStatus(status enums.CheckoutStatus) {
	o.mu.Lock()
	o.session.Status = status
	o.mu.Unlock()
}

func (o *Orchestrator) settle(ctx context.Context, method enums.PaymentMethod, fn func(context.Context) (*SaleCompletion, error)) (*SaleCompletion, error) {
	settleCtx, cancel := context.WithTimeout(ctx, o.cfg.SettlementTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := fn(settleCtx)
	o.metrics.ObserveDuration(method.String(), time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || settleCtx.Err() == context.DeadlineExceeded {
			// The sale's true outcome is unknown; the operator must
			// verify before re-attempting or risk a double charge.
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "settlement timed out, verify the sale before retrying")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, err.Error())
	}
	if receipt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "gateway returned no completion receipt")
	}
	return receipt, nil
}

// postComplete runs the ordered post-sale sequence. Steps after the
// receipt record are best effort: a queue or cart-reset failure must
// never roll back a completed sale.
func (o *Orchestrator) postComplete(ctx context.Context, c *cart.Cart, receipt *SaleCompletion) {
	logCtx := o.logg.WithFields(ctx, map[string]any{
		"order_number":   receipt.OrderNumber,
		"method":         receipt.Method.String(),
		"settled_amount": money.Format(receipt.SettledAmount),
	})
	o.logg.Info(logCtx, "sale completed")
	o.metrics.IncSuccess(receipt.Method.String())

	if o.queue != nil && c.Scope.CustomerID != nil {
		if err := o.queue.Remove(ctx, c.Scope.StoreID, c.Scope.LocationID, *c.Scope.CustomerID); err != nil {
			o.logg.Error(logCtx, "failed to remove customer queue entry after sale", err)
		}
	}

	if _, err := o.agg.Reset(ctx); err != nil {
		o.logg.Error(logCtx, "failed to reset cart after sale", err)
	}
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "error"
}

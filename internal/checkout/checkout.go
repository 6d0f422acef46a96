package checkout

import (
	"context"
	"errors"
	"fmt"

	"bookstore-service/internal/books"
	"bookstore-service/internal/cart"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomerDetails is what the checkout form collects. A fresh customer row
// is created on every checkout; there is no account linkage.
type CustomerDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// PlanItem is one order line of a validated commit plan. UnitPrice is the
// captured cart price, never a re-read catalog price.
type PlanItem struct {
	BookID    string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Plan is the validated unit of work handed to the Committer: one customer,
// one order total, the order lines, and the availability flips implied by
// the lines. It must be applied all-or-nothing.
type Plan struct {
	Customer   CustomerDetails
	TotalPrice decimal.Decimal
	Items      []PlanItem
}

// Result identifies the committed order for the confirmation view.
type Result struct {
	OrderID    string
	TotalPrice decimal.Decimal
}

// Catalog is the read side the engine validates against.
type Catalog interface {
	GetBookByID(ctx context.Context, bookID string) (books.Book, error)
}

// Committer applies a Plan as a single atomic unit of work. Implementations
// must re-check each book's availability inside their own transaction
// boundary; the engine's pre-validation narrows the race window but cannot
// close it. A commit that loses the race returns *UnavailableError; any
// other failure must leave storage exactly as it was.
type Committer interface {
	CommitCheckout(ctx context.Context, plan Plan) (orderID string, err error)
}

// Engine converts a cart snapshot plus customer details into a durable
// order.
type Engine struct {
	catalog   Catalog
	committer Committer
	validate  *validator.Validate
}

func NewEngine(catalog Catalog, committer Committer) *Engine {
	return &Engine{
		catalog:   catalog,
		committer: committer,
		validate:  validator.New(),
	}
}

// Commit runs the checkout protocol:
//
//  1. reject empty carts and malformed customer details;
//  2. re-validate every snapshot line against the live catalog — any book
//     that is gone or already sold aborts the whole commit before a single
//     write;
//  3. total the order from the captured cart prices;
//  4. hand the plan to the committer, which applies customer, order, items
//     and availability flips atomically.
//
// On any failure nothing has been persisted and the caller's cart must be
// left alone; only after success may the cart be cleared.
func (e *Engine) Commit(ctx context.Context, snapshot cart.Snapshot, details CustomerDetails) (Result, error) {
	if len(snapshot.Items) == 0 {
		return Result{}, ErrEmptyCart
	}
	if err := e.validateDetails(details); err != nil {
		return Result{}, err
	}

	plan, err := e.buildPlan(ctx, snapshot, details)
	if err != nil {
		return Result{}, err
	}

	orderID, err := e.committer.CommitCheckout(ctx, plan)
	if err != nil {
		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			return Result{}, unavailable
		}
		return Result{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	return Result{OrderID: orderID, TotalPrice: plan.TotalPrice}, nil
}

func (e *Engine) validateDetails(details CustomerDetails) error {
	err := e.validate.Struct(details)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		reason := "value missing"
		if vErr.Tag() == "email" {
			reason = "value is not a valid email address"
		}
		return &InvalidInputError{Field: vErr.Field(), Reason: reason}
	}
	return &InvalidInputError{Field: "customer", Reason: err.Error()}
}

// buildPlan re-validates the snapshot against the catalog and totals the
// order from captured prices. The snapshot may be stale relative to
// concurrent purchases, which is exactly why every book is re-read here.
func (e *Engine) buildPlan(ctx context.Context, snapshot cart.Snapshot, details CustomerDetails) (Plan, error) {
	plan := Plan{
		Customer:   details,
		TotalPrice: decimal.Zero,
		Items:      make([]PlanItem, 0, len(snapshot.Items)),
	}

	seen := make(map[string]struct{}, len(snapshot.Items))
	var unavailable []string

	for _, item := range snapshot.Items {
		if item.Quantity <= 0 {
			return Plan{}, &InvalidInputError{Field: "quantity", Reason: "must be a positive integer"}
		}
		if _, dup := seen[item.BookID]; dup {
			return Plan{}, &InvalidInputError{Field: "book_id", Reason: fmt.Sprintf("book %s appears more than once", item.BookID)}
		}
		seen[item.BookID] = struct{}{}

		book, err := e.catalog.GetBookByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, books.ErrBookNotFound) {
				unavailable = append(unavailable, item.BookID)
				continue
			}
			return Plan{}, fmt.Errorf("failed to re-validate book %s: %w", item.BookID, err)
		}
		if !book.IsAvailable {
			unavailable = append(unavailable, item.BookID)
			continue
		}

		plan.Items = append(plan.Items, PlanItem{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
		plan.TotalPrice = plan.TotalPrice.Add(item.LineTotal)
	}

	if len(unavailable) > 0 {
		return Plan{}, &UnavailableError{BookIDs: unavailable}
	}
	return plan, nil
}

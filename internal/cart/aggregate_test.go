package cart

import (
	"context"
	"testing"

	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	carts map[uuid.UUID]*Cart
	byKey map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		carts: map[uuid.UUID]*Cart{},
		byKey: map[string]uuid.UUID{},
	}
}

func scopeKey(scope Scope) string {
	key := scope.StoreID.String() + "/" + scope.LocationID.String()
	if scope.CustomerID != nil {
		key += "/" + scope.CustomerID.String()
	}
	return key
}

func (f *fakeRepo) GetOrCreateCart(_ context.Context, scope Scope, freshStart bool) (*Cart, error) {
	key := scopeKey(scope)
	if id, ok := f.byKey[key]; ok && !freshStart {
		return f.carts[id].Clone(), nil
	}
	if id, ok := f.byKey[key]; ok && freshStart {
		delete(f.carts, id)
	}
	created := &Cart{ID: uuid.New(), Scope: scope}
	f.carts[created.ID] = created
	f.byKey[key] = created.ID
	return created.Clone(), nil
}

func (f *fakeRepo) AddToCart(_ context.Context, cartID uuid.UUID, input AddItemInput) (*Cart, error) {
	record, ok := f.carts[cartID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	price := decimal.NewFromInt(10)
	if input.UnitPrice != nil {
		price = *input.UnitPrice
	}
	record.Items = append(record.Items, Item{
		ID:           uuid.New(),
		ProductID:    input.ProductID,
		VariantID:    input.VariantID,
		InventoryID:  input.InventoryID,
		Quantity:     input.Quantity,
		UnitPrice:    price,
		TierLabel:    input.TierLabel,
		TierQuantity: input.TierQuantity,
	})
	return record.Clone(), nil
}

func (f *fakeRepo) UpdateItemQuantity(_ context.Context, cartID, itemID uuid.UUID, quantity int) (*Cart, error) {
	record, ok := f.carts[cartID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range record.Items {
		if record.Items[i].ID == itemID {
			record.Items[i].Quantity = quantity
			return record.Clone(), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

func (f *fakeRepo) RemoveFromCart(_ context.Context, cartID, itemID uuid.UUID) (*Cart, error) {
	record, ok := f.carts[cartID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range record.Items {
		if record.Items[i].ID == itemID {
			record.Items = append(record.Items[:i], record.Items[i+1:]...)
			return record.Clone(), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

func (f *fakeRepo) ClearCart(_ context.Context, cartID uuid.UUID) (*Cart, error) {
	record, ok := f.carts[cartID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	record.Items = nil
	return record.Clone(), nil
}

func testScope() Scope {
	return Scope{StoreID: uuid.New(), LocationID: uuid.New()}
}

func mustAggregate(t *testing.T, repo Repository) *Aggregate {
	t.Helper()
	agg, err := NewAggregate(repo)
	if err != nil {
		t.Fatalf("building aggregate: %v", err)
	}
	return agg
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	scope := testScope()

	first, err := agg.GetOrCreate(context.Background(), scope, false)
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}
	second, err := agg.GetOrCreate(context.Background(), scope, false)
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected stable cart id, got %s then %s", first.ID, second.ID)
	}
	if len(second.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(second.Items))
	}
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	if _, err := agg.GetOrCreate(context.Background(), testScope(), false); err != nil {
		t.Fatal(err)
	}

	_, err := agg.AddItem(context.Background(), AddItemInput{ProductID: uuid.New(), Quantity: 0})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubtotalInvariantAcrossMutations(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	ctx := context.Background()
	if _, err := agg.GetOrCreate(ctx, testScope(), false); err != nil {
		t.Fatal(err)
	}

	price := decimal.RequireFromString("12.50")
	updated, err := agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 2, UnitPrice: &price})
	if err != nil {
		t.Fatal(err)
	}
	other := decimal.RequireFromString("3.25")
	updated, err = agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 4, UnitPrice: &other})
	if err != nil {
		t.Fatal(err)
	}

	updated, err = agg.UpdateQuantity(ctx, updated.Items[0].ID, 1)
	if err != nil {
		t.Fatal(err)
	}

	expected := decimal.Zero
	for _, item := range updated.Items {
		if item.Quantity <= 0 {
			t.Fatalf("item %s persisted with quantity %d", item.ID, item.Quantity)
		}
		expected = expected.Add(item.LineSubtotal())
	}
	if !updated.Totals().Subtotal.Equal(expected) {
		t.Fatalf("subtotal %s does not match line sum %s", updated.Totals().Subtotal, expected)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("5.00")

	build := func() (*Aggregate, uuid.UUID) {
		repo := newFakeRepo()
		agg := mustAggregate(t, repo)
		if _, err := agg.GetOrCreate(ctx, testScope(), false); err != nil {
			t.Fatal(err)
		}
		updated, err := agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 1, UnitPrice: &price})
		if err != nil {
			t.Fatal(err)
		}
		return agg, updated.Items[0].ID
	}

	viaUpdate, itemID := build()
	if _, err := viaUpdate.UpdateQuantity(ctx, itemID, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}

	viaRemove, itemID := build()
	if _, err := viaRemove.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(viaUpdate.Current().Items) != 0 || len(viaRemove.Current().Items) != 0 {
		t.Fatalf("expected both carts empty, got %d and %d items",
			len(viaUpdate.Current().Items), len(viaRemove.Current().Items))
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	ctx := context.Background()
	if _, err := agg.GetOrCreate(ctx, testScope(), false); err != nil {
		t.Fatal(err)
	}

	updated, err := agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if err != nil {
		t.Fatal(err)
	}
	itemID := updated.Items[0].ID

	if _, err := agg.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if _, err := agg.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	ctx := context.Background()
	if _, err := agg.GetOrCreate(ctx, testScope(), false); err != nil {
		t.Fatal(err)
	}

	_, err := agg.UpdateQuantity(ctx, uuid.New(), 3)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFreshStartNeverEchoesClearedItems(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	ctx := context.Background()
	scope := testScope()
	if _, err := agg.GetOrCreate(ctx, scope, false); err != nil {
		t.Fatal(err)
	}
	if _, err := agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 2}); err != nil {
		t.Fatal(err)
	}

	fresh, err := agg.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(fresh.Items) != 0 {
		t.Fatalf("fresh cart echoed %d cleared items", len(fresh.Items))
	}

	again, err := agg.GetOrCreate(ctx, scope, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Items) != 0 {
		t.Fatalf("re-loaded cart echoed %d cleared items", len(again.Items))
	}
}

func TestClearPreservesIdentity(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)
	ctx := context.Background()

	loaded, err := agg.GetOrCreate(ctx, testScope(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := agg.AddItem(ctx, AddItemInput{ProductID: uuid.New(), Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	cleared, err := agg.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.ID != loaded.ID {
		t.Fatalf("clear changed cart identity from %s to %s", loaded.ID, cleared.ID)
	}
	if len(cleared.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(cleared.Items))
	}
}

func TestMutationsRequireLoadedCart(t *testing.T) {
	repo := newFakeRepo()
	agg := mustAggregate(t, repo)

	_, err := agg.AddItem(context.Background(), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found before load, got %v", err)
	}
}

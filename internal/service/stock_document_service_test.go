package service

import (
	"errors"
	"testing"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockDocumentGRNPostCreatesItem(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-GRN-1")
	warehouse := f.defaultWarehouse(t)

	document, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusDraft, document.Status)

	posted, err := f.documents.Post(document.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedBy)
	assert.Equal(t, uint(9), *posted.PostedBy)

	item := f.item(t, product.ID, warehouse.ID)
	assert.Equal(t, 100, item.OnHandQty)
	assert.Equal(t, 0, item.ReservedQty)
	assert.Equal(t, 100, item.AvailableQty)

	movements, err := f.documents.Movements(document.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 100, movements[0].QtyChangeOnHand)
	assert.Equal(t, 100, movements[0].BalanceOnHandAfter)
	assert.Contains(t, movements[0].IdempotencyKey, ":post")
}

func TestStockDocumentPostIsIdempotent(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-IDEMP-1")
	warehouse := f.defaultWarehouse(t)
	document := f.receive(t, warehouse.ID, product.ID, 10)

	before := f.countMovements(t)
	again, err := f.documents.Post(document.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusPosted, again.Status)
	assert.Equal(t, before, f.countMovements(t))
	assert.Equal(t, 10, f.item(t, product.ID, warehouse.ID).OnHandQty)
}

func TestStockDocumentCreateValidatesLines(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-VALID-1")
	warehouse := f.defaultWarehouse(t)

	_, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeIssue,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: -3}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeAdjustment,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 0, Direction: "IN"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        "BOGUS",
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: 9999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: 9999,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrWarehouseNotFound)
}

func TestStockDocumentTransferRequiresDistinctTarget(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-TRF-0")
	warehouse := f.defaultWarehouse(t)

	_, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeTransfer,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	sameID := warehouse.ID
	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:              constants.StockDocTypeTransfer,
		WarehouseID:       warehouse.ID,
		TargetWarehouseID: &sameID,
		Lines:             []StockDocumentLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStockDocumentTransferWritesTwoMovements(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-TRF-1")
	source := f.defaultWarehouse(t)
	target := f.createWarehouse(t, "east")
	f.receive(t, source.ID, product.ID, 20)

	targetID := target.ID
	document, err := f.documents.Create(CreateStockDocumentInput{
		Type:              constants.StockDocTypeTransfer,
		WarehouseID:       source.ID,
		TargetWarehouseID: &targetID,
		Lines:             []StockDocumentLineInput{{ProductID: product.ID, Quantity: 7}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(document.ID, 1)
	require.NoError(t, err)

	movements, err := f.documents.Movements(document.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	keys := []string{movements[0].IdempotencyKey, movements[1].IdempotencyKey}
	assert.Contains(t, keys[0]+keys[1], ":post:src")
	assert.Contains(t, keys[0]+keys[1], ":post:tgt")
	assert.Equal(t, movements[0].LineID, movements[1].LineID)

	assert.Equal(t, 13, f.item(t, product.ID, source.ID).OnHandQty)
	assert.Equal(t, 7, f.item(t, product.ID, target.ID).OnHandQty)

	var reloaded models.Product
	require.NoError(t, f.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 20, reloaded.StockAvailable)
}

func TestStockDocumentNegativeGuardLeavesNoTrace(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-GUARD-1")
	source := f.defaultWarehouse(t)
	target := f.createWarehouse(t, "WEST")
	f.receive(t, source.ID, product.ID, 5)

	snapshotItems := func() []models.InventoryItem {
		var items []models.InventoryItem
		require.NoError(t, f.db.Order("id asc").Find(&items).Error)
		return items
	}
	beforeItems := snapshotItems()
	beforeMovements := f.countMovements(t)

	targetID := target.ID
	cases := []CreateStockDocumentInput{
		{Type: constants.StockDocTypeIssue, WarehouseID: source.ID},
		{Type: constants.StockDocTypeDeduct, WarehouseID: source.ID},
		{Type: constants.StockDocTypeTransfer, WarehouseID: source.ID, TargetWarehouseID: &targetID},
	}
	for _, input := range cases {
		input.Lines = []StockDocumentLineInput{{ProductID: product.ID, Quantity: 6}}
		document, err := f.documents.Create(input)
		require.NoError(t, err)

		_, err = f.documents.Post(document.ID, 1)
		require.Error(t, err, input.Type)
		assert.True(t, errors.Is(err, ErrInsufficientStock), input.Type)
		var shortage *StockShortageError
		require.True(t, errors.As(err, &shortage), input.Type)
		assert.Equal(t, product.ID, shortage.ProductID)

		reloaded, err := f.documents.Get(document.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StockDocStatusDraft, reloaded.Status, input.Type)
	}

	assert.Equal(t, beforeItems, snapshotItems())
	assert.Equal(t, beforeMovements, f.countMovements(t))
}

func TestStockDocumentAdjustmentAllowsNegative(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-ADJ-1")
	warehouse := f.defaultWarehouse(t)
	f.receive(t, warehouse.ID, product.ID, 3)

	issue, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeIssue,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(issue.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	adjustment, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeAdjustment,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: -5, Direction: constants.StockDirectionOut}},
	})
	require.NoError(t, err)
	require.Len(t, adjustment.Lines, 1)

	reloaded, err := f.documents.Get(adjustment.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, -5, reloaded.Lines[0].Quantity)
	assert.Equal(t, constants.StockDirectionOut, reloaded.Lines[0].Direction)

	_, err = f.documents.Post(adjustment.ID, 1)
	require.NoError(t, err)
	item := f.item(t, product.ID, warehouse.ID)
	assert.Equal(t, -2, item.OnHandQty)
	assert.Equal(t, -2, item.AvailableQty)
}

func TestNormalizeLineQuantityDirections(t *testing.T) {
	qty, direction, err := normalizeLineQuantity(constants.StockDocTypeAdjustment, 5, "out")
	require.NoError(t, err)
	assert.Equal(t, -5, qty)
	assert.Equal(t, constants.StockDirectionOut, direction)

	qty, direction, err = normalizeLineQuantity(constants.StockDocTypeAdjustment, -4, "IN")
	require.NoError(t, err)
	assert.Equal(t, 4, qty)
	assert.Equal(t, constants.StockDirectionIn, direction)

	qty, direction, err = normalizeLineQuantity(constants.StockDocTypeAdjustment, -2, "")
	require.NoError(t, err)
	assert.Equal(t, -2, qty)
	assert.Equal(t, constants.StockDirectionOut, direction)

	_, _, err = normalizeLineQuantity(constants.StockDocTypeAdjustment, 2, "SIDEWAYS")
	assert.ErrorIs(t, err, ErrValidation)

	qty, direction, err = normalizeLineQuantity(constants.StockDocTypeGRN, 3, "OUT")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
	assert.Empty(t, direction)
}

func TestStockDocumentVoidReversalNetsToZero(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-VOID-1")
	source := f.defaultWarehouse(t)
	target := f.createWarehouse(t, "NORTH")
	f.receive(t, source.ID, product.ID, 30)

	targetID := target.ID
	transfer, err := f.documents.Create(CreateStockDocumentInput{
		Type:              constants.StockDocTypeTransfer,
		WarehouseID:       source.ID,
		TargetWarehouseID: &targetID,
		Lines:             []StockDocumentLineInput{{ProductID: product.ID, Quantity: 12}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(transfer.ID, 1)
	require.NoError(t, err)

	reserve, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeReserve,
		WarehouseID: source.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(reserve.ID, 1)
	require.NoError(t, err)

	for _, documentID := range []uint{transfer.ID, reserve.ID} {
		voided, err := f.documents.Void(documentID, 2)
		require.NoError(t, err)
		assert.Equal(t, constants.StockDocStatusVoid, voided.Status)

		movements, err := f.documents.Movements(documentID)
		require.NoError(t, err)
		type tuple struct{ product, warehouse, location uint }
		onHand := make(map[tuple]int)
		reserved := make(map[tuple]int)
		reversals := 0
		for _, movement := range movements {
			key := tuple{movement.ProductID, movement.WarehouseID, models.LocationKeyOf(movement.LocationID)}
			onHand[key] += movement.QtyChangeOnHand
			reserved[key] += movement.QtyChangeReserved
			if movement.MovementType == constants.StockMovementTypeReversal {
				reversals++
				assert.Contains(t, movement.IdempotencyKey, "void:")
			}
		}
		assert.Equal(t, len(movements)/2, reversals)
		for key := range onHand {
			assert.Zero(t, onHand[key], "on hand net for %+v", key)
			assert.Zero(t, reserved[key], "reserved net for %+v", key)
		}
	}

	item := f.item(t, product.ID, source.ID)
	assert.Equal(t, 30, item.OnHandQty)
	assert.Equal(t, 0, item.ReservedQty)
	assert.Equal(t, 0, f.item(t, product.ID, target.ID).OnHandQty)
}

func TestStockDocumentVoidRules(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-VOID-2")
	warehouse := f.defaultWarehouse(t)

	draft, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	before := f.countMovements(t)
	voided, err := f.documents.Void(draft.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusVoid, voided.Status)
	assert.Equal(t, before, f.countMovements(t))

	_, err = f.documents.Void(draft.ID, 1)
	assert.ErrorIs(t, err, ErrDocumentAlreadyVoid)
	_, err = f.documents.Post(draft.ID, 1)
	assert.ErrorIs(t, err, ErrDocumentAlreadyVoid)

	_, err = f.documents.Void(9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStockDocumentVoidFailsWhenReversalWouldGoNegative(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-VOID-3")
	warehouse := f.defaultWarehouse(t)
	grn := f.receive(t, warehouse.ID, product.ID, 10)

	issue, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeIssue,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 8}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(issue.ID, 1)
	require.NoError(t, err)

	_, err = f.documents.Void(grn.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	reloaded, err := f.documents.Get(grn.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusPosted, reloaded.Status)
	assert.Equal(t, 2, f.item(t, product.ID, warehouse.ID).OnHandQty)
}

func TestStockDocumentDeductReservedQuantity(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-DEDUCT-1")
	warehouse := f.defaultWarehouse(t)
	f.receive(t, warehouse.ID, product.ID, 10)

	reserve, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeReserve,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 6}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(reserve.ID, 1)
	require.NoError(t, err)

	tooMany := 4
	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeDeduct,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 3, ReservedQty: &tooMany}},
	})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeIssue,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 3, ReservedQty: &tooMany}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	one := 1
	deduct, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeDeduct,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 3, ReservedQty: &one}},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(deduct.ID, 1)
	require.NoError(t, err)

	item := f.item(t, product.ID, warehouse.ID)
	assert.Equal(t, 7, item.OnHandQty)
	assert.Equal(t, 5, item.ReservedQty)
	assert.Equal(t, 2, item.AvailableQty)
}

func TestStockDocumentPostRejectsMovementsOwnedElsewhere(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-DUP-1")
	warehouse := f.defaultWarehouse(t)

	create := func() *models.StockDocument {
		document, err := f.documents.Create(CreateStockDocumentInput{
			Type:        constants.StockDocTypeGRN,
			WarehouseID: warehouse.ID,
			Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 4, MovementKey: "po:77:line:1"}},
		})
		require.NoError(t, err)
		return document
	}
	first := create()
	second := create()
	_, err := f.documents.Post(first.ID, 1)
	require.NoError(t, err)

	_, err = f.documents.Post(second.ID, 1)
	assert.ErrorIs(t, err, ErrDuplicateStockPosting)
	reloaded, err := f.documents.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StockDocStatusDraft, reloaded.Status)
	assert.Equal(t, 4, f.item(t, product.ID, warehouse.ID).OnHandQty)
}

func TestStockDocumentUpdateDraft(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-EDIT-1")
	other := f.createProduct(t, "SKU-EDIT-2")
	warehouse := f.defaultWarehouse(t)

	document, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	note := "  补录入库  "
	updated, err := f.documents.UpdateDraft(document.ID, UpdateStockDocumentInput{
		Note: &note,
		Lines: []StockDocumentLineInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: other.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "补录入库", updated.Note)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, other.SKU, updated.Lines[1].ProductSKU)

	_, err = f.documents.Post(document.ID, 1)
	require.NoError(t, err)
	_, err = f.documents.UpdateDraft(document.ID, UpdateStockDocumentInput{Note: &note})
	assert.ErrorIs(t, err, ErrDocumentAlreadyPosted)

	assert.Equal(t, 2, f.item(t, product.ID, warehouse.ID).OnHandQty)
	assert.Equal(t, 3, f.item(t, other.ID, warehouse.ID).OnHandQty)
}

func TestStockDocumentLocationLevelBalances(t *testing.T) {
	f := setupServiceTest(t)
	product := f.createProduct(t, "SKU-LOC-1")
	warehouse := f.defaultWarehouse(t)
	location, err := f.warehouses.CreateLocation(warehouse.ID, CreateLocationInput{Code: "a-01", Name: "A 区 01"})
	require.NoError(t, err)

	locationID := location.ID
	document, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouse.ID,
		Lines: []StockDocumentLineInput{
			{ProductID: product.ID, Quantity: 4, LocationID: &locationID},
			{ProductID: product.ID, Quantity: 6},
		},
	})
	require.NoError(t, err)
	_, err = f.documents.Post(document.ID, 1)
	require.NoError(t, err)

	located, err := f.ledgerRepo.GetItem(product.ID, warehouse.ID, &locationID)
	require.NoError(t, err)
	require.NotNil(t, located)
	assert.Equal(t, 4, located.OnHandQty)
	assert.Equal(t, 6, f.item(t, product.ID, warehouse.ID).OnHandQty)

	foreign := f.createWarehouse(t, "SOUTH")
	_, err = f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: foreign.ID,
		Lines:       []StockDocumentLineInput{{ProductID: product.ID, Quantity: 1, LocationID: &locationID}},
	})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

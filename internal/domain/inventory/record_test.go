package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.ErrorIs(t, ValidateQuantity(0), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateQuantity(-3), ErrInvalidQuantity)
}

func TestCheckRemovable(t *testing.T) {
	key := Key{StoreID: 1, BookID: 2}

	t.Run("数量充足", func(t *testing.T) {
		assert.NoError(t, CheckRemovable(&Record{StoreID: 1, BookID: 2, Quantity: 5}, key, 5))
	})

	t.Run("数量不足时携带请求和可用数量", func(t *testing.T) {
		err := CheckRemovable(&Record{StoreID: 1, BookID: 2, Quantity: 5}, key, 6)
		require.ErrorIs(t, err, ErrInsufficientStock)

		appErr := apperrors.GetAppError(err)
		assert.Equal(t, 6, appErr.Details["requested"])
		assert.Equal(t, 5, appErr.Details["available"])
	})

	t.Run("记录不存在按0处理", func(t *testing.T) {
		err := CheckRemovable(nil, key, 1)
		require.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 0, apperrors.GetAppError(err).Details["available"])
	})
}

func TestNewRemoveLog_DepleteWhenEmptied(t *testing.T) {
	key := Key{StoreID: 3, BookID: 4}

	partial := NewRemoveLog(key, 4, 10, 7)
	assert.Equal(t, ChangeTypeRemove, partial.ChangeType)
	assert.Equal(t, -4, partial.Delta)
	assert.Equal(t, 6, partial.After)
	assert.Equal(t, uint(7), partial.OperatorID)

	emptied := NewRemoveLog(key, 6, 6, 7)
	assert.Equal(t, ChangeTypeDeplete, emptied.ChangeType)
	assert.Zero(t, emptied.After)

	restock := NewRestockLog(key, 3, 0, 0)
	assert.Equal(t, ChangeTypeRestock, restock.ChangeType)
	assert.Equal(t, 3, restock.After)
}

func TestNewStockChanged(t *testing.T) {
	key := Key{StoreID: 1, BookID: 9}

	ev := NewStockChanged(NewRemoveLog(key, 2, 2, 5))
	assert.Equal(t, EventStockDepleted, ev.Type)
	assert.Equal(t, "inventory.stock.depleted", ev.Type.RoutingKey())
	assert.Zero(t, ev.Quantity)

	ev = NewStockChanged(NewRestockLog(key, 5, 3, 5))
	assert.Equal(t, "inventory.stock.added", ev.Type.RoutingKey())
	assert.Equal(t, 8, ev.Quantity)
}

func TestOperatorContext(t *testing.T) {
	assert.Zero(t, OperatorFrom(context.Background()))
	assert.Equal(t, uint(12), OperatorFrom(WithOperator(context.Background(), 12)))
}

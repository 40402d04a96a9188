package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/pkg/mq"
)

type recordingNotifier struct {
	alerts []Alert
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, a Alert) error {
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, a)
	return nil
}

func eventBody(t *testing.T, changeLog *inventory.ChangeLog) []byte {
	t.Helper()
	body, err := json.Marshal(inventory.NewStockChanged(changeLog))
	require.NoError(t, err)
	return body
}

func TestLowStockHandler(t *testing.T) {
	ctx := context.Background()
	key := inventory.Key{StoreID: 3, BookID: 9}

	tests := []struct {
		name      string
		changeLog *inventory.ChangeLog
		wantAlert bool
		depleted  bool
	}{
		{"取出后仍充足", inventory.NewRemoveLog(key, 2, 20, 1), false, false},
		{"取出后低于阈值", inventory.NewRemoveLog(key, 8, 10, 1), true, false},
		{"取空", inventory.NewRemoveLog(key, 4, 4, 1), true, true},
		{"增加不告警", inventory.NewRestockLog(key, 1, 0, 1), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			h := NewLowStockHandler(3, notifier)

			require.NoError(t, h.Handle(ctx, "inventory.stock.removed", eventBody(t, tt.changeLog)))
			if !tt.wantAlert {
				assert.Empty(t, notifier.alerts)
				return
			}
			require.Len(t, notifier.alerts, 1)
			assert.Equal(t, key.StoreID, notifier.alerts[0].StoreID)
			assert.Equal(t, tt.depleted, notifier.alerts[0].Depleted)
			assert.Equal(t, 3, notifier.alerts[0].Threshold)
		})
	}
}

func TestLowStockHandler_DropsMalformed(t *testing.T) {
	h := NewLowStockHandler(3, &recordingNotifier{})

	err := h.Handle(context.Background(), "inventory.stock.removed", []byte("{not json"))
	assert.ErrorIs(t, err, mq.ErrDrop)

	err = h.Handle(context.Background(), "inventory.stock.removed", []byte(`{"type":"removed","quantity":1}`))
	assert.ErrorIs(t, err, mq.ErrDrop)
}

func TestLowStockHandler_NotifierFailureRequeues(t *testing.T) {
	h := NewLowStockHandler(5, &recordingNotifier{err: errors.New("webhook down")})
	body := eventBody(t, inventory.NewRemoveLog(inventory.Key{StoreID: 1, BookID: 1}, 1, 2, 0))

	err := h.Handle(context.Background(), "inventory.stock.removed", body)
	require.Error(t, err)
	assert.False(t, errors.Is(err, mq.ErrDrop))
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), Alert{StoreID: 1, BookID: 1, Quantity: 0, Depleted: true}))
}

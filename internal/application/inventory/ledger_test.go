package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookledger/internal/application/catalog"
	"github.com/xiebiao/bookledger/internal/domain/book"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/domain/store"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/dbtest"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockChanged
}

func (p *recordingPublisher) PublishStockChanged(_ context.Context, e inventory.StockChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []inventory.StockChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]inventory.StockChanged(nil), p.events...)
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []inventory.Key
}

func (c *recordingCache) GetOrLoad(ctx context.Context, _ inventory.Key, load func(context.Context) (int, error)) (int, error) {
	return load(ctx)
}

func (c *recordingCache) Invalidate(_ context.Context, key inventory.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, key)
	return nil
}

type ledgerFixture struct {
	ledger    *Ledger
	publisher *recordingPublisher
	cache     *recordingCache
	storeID   uint
	bookID    uint
	otherBook uint
	repo      inventory.Repository
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.NewSQLite(t)

	storeRepo := mysql.NewStoreRepository(db)
	bookRepo := mysql.NewBookRepository(db)

	st, err := store.NewStore("Downtown Books", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, storeRepo.Create(ctx, st))

	b1 := book.NewBook("9780132350884", "Clean Code", "Robert C. Martin", 4499)
	require.NoError(t, bookRepo.Create(ctx, b1))
	b2 := book.NewBook("0201633612", "Design Patterns", "Gang of Four", 5999)
	require.NoError(t, bookRepo.Create(ctx, b2))

	f := &ledgerFixture{
		publisher: &recordingPublisher{},
		cache:     &recordingCache{},
		storeID:   st.ID,
		bookID:    b1.ID,
		otherBook: b2.ID,
		repo:      mysql.NewInventoryRepository(db),
	}
	f.ledger = NewLedger(
		f.repo,
		mysql.NewInventoryLogRepository(db),
		catalog.NewLookup(storeRepo, bookRepo),
		mysql.NewTxManager(db),
		f.cache,
		f.publisher,
	)
	return f
}

func TestLedger_AddStock(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	t.Run("不存在时创建记录", func(t *testing.T) {
		rec, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Quantity)
	})

	t.Run("多次增加可累加", func(t *testing.T) {
		rec, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, rec.Quantity)

		qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, 5, qty)
	})

	t.Run("数量必须为正", func(t *testing.T) {
		for _, q := range []int{0, -1} {
			_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, q)
			assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
		}
		qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, 5, qty, "失败的请求不应修改数量")
	})

	t.Run("事件与缓存失效", func(t *testing.T) {
		events := f.publisher.Events()
		require.Len(t, events, 2)
		assert.Equal(t, inventory.EventStockAdded, events[1].Type)
		assert.Equal(t, 2, events[1].Delta)
		assert.Equal(t, 5, events[1].Quantity)
		assert.Len(t, f.cache.invalidated, 2)
	})
}

func TestLedger_AddStock_NotFound(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AddStock(ctx, 999, f.bookID, 1)
	assert.ErrorIs(t, err, inventory.ErrStoreNotFound)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, uint(999), appErr.Details["store_id"])

	_, err = f.ledger.AddStock(ctx, f.storeID, 999, 1)
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)

	rec, err := f.repo.FindByKey(ctx, inventory.Key{StoreID: f.storeID, BookID: 999})
	require.NoError(t, err)
	assert.Nil(t, rec, "图书不存在时不应创建记录")
	assert.Empty(t, f.publisher.Events())
	assert.Empty(t, f.cache.invalidated)
}

func TestLedger_RemoveStock(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 5)
	require.NoError(t, err)

	t.Run("库存不足时不做修改", func(t *testing.T) {
		_, err := f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 6)
		require.ErrorIs(t, err, inventory.ErrInsufficientStock)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, 6, appErr.Details["requested"])
		assert.Equal(t, 5, appErr.Details["available"])

		qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, 5, qty)
	})

	t.Run("部分取出", func(t *testing.T) {
		rec, err := f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 2)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, 3, rec.Quantity)
	})

	t.Run("取空后记录被删除", func(t *testing.T) {
		rec, err := f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 3)
		require.NoError(t, err)
		assert.Nil(t, rec)

		stored, err := f.repo.FindByKey(ctx, inventory.Key{StoreID: f.storeID, BookID: f.bookID})
		require.NoError(t, err)
		assert.Nil(t, stored)

		events := f.publisher.Events()
		assert.Equal(t, inventory.EventStockDepleted, events[len(events)-1].Type)
	})

	t.Run("没有记录时按0处理", func(t *testing.T) {
		_, err := f.ledger.RemoveStock(ctx, f.storeID, f.otherBook, 1)
		require.ErrorIs(t, err, inventory.ErrInsufficientStock)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, 0, appErr.Details["available"])
	})

	t.Run("书店不存在", func(t *testing.T) {
		_, err := f.ledger.RemoveStock(ctx, 999, f.bookID, 1)
		assert.ErrorIs(t, err, inventory.ErrStoreNotFound)
	})
}

func TestLedger_GetQuantity(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.otherBook)
	require.NoError(t, err)
	assert.Zero(t, qty)

	qty, err = f.ledger.GetQuantity(ctx, f.storeID, 12345)
	require.NoError(t, err)
	assert.Zero(t, qty, "只校验书店,未知图书返回0")

	_, err = f.ledger.GetQuantity(ctx, 999, f.bookID)
	assert.ErrorIs(t, err, inventory.ErrStoreNotFound)
}

// TestLedger_Scenario 完整流程：10 → 6 → 取空 → 0 → 再取失败
func TestLedger_Scenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := inventory.WithOperator(context.Background(), 42)

	rec, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	rec, err = f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, rec.Quantity)

	rec, err = f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 6)
	require.NoError(t, err)
	assert.Nil(t, rec)

	qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
	require.NoError(t, err)
	assert.Zero(t, qty)

	_, err = f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	logs, total, err := f.ledger.History(ctx, f.storeID, f.bookID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 3)
	assert.Equal(t, inventory.ChangeTypeDeplete, logs[0].ChangeType)
	assert.Equal(t, inventory.ChangeTypeRemove, logs[1].ChangeType)
	assert.Equal(t, 10, logs[1].Before)
	assert.Equal(t, inventory.ChangeTypeRestock, logs[2].ChangeType)
	assert.Equal(t, uint(42), logs[2].OperatorID)
}

// 测试库有多个连接，每个AddStock的事务在各自连接上执行
// 语句级的丢失更新由仓储层的并发测试覆盖
func TestLedger_ConcurrentAdds(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, workers, qty, "并发增加不能丢失更新")
}

func TestLedger_ConcurrentRemovesNeverOversell(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 10)
	require.NoError(t, err)

	const workers = 15
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, inventory.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 5, insufficient)

	rec, err := f.repo.FindByKey(ctx, inventory.Key{StoreID: f.storeID, BookID: f.bookID})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

// 增加和取出交错执行：最终数量等于成功变更的代数和，变更日志与之一致
func TestLedger_ConcurrentMixedChanges(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 5)
	require.NoError(t, err)

	const workers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		added   int
		removed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 2)
				if err != nil {
					t.Errorf("增加失败: %v", err)
					return
				}
				mu.Lock()
				added += 2
				mu.Unlock()
				return
			}
			_, err := f.ledger.RemoveStock(ctx, f.storeID, f.bookID, 3)
			switch {
			case err == nil:
				mu.Lock()
				removed += 3
				mu.Unlock()
			case !errors.Is(err, inventory.ErrInsufficientStock):
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	qty, err := f.ledger.GetQuantity(ctx, f.storeID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 5+added-removed, qty)
	assert.GreaterOrEqual(t, qty, 0)

	logs, _, err := f.ledger.History(ctx, f.storeID, f.bookID, 1, 100)
	require.NoError(t, err)
	sum := 0
	for _, l := range logs {
		sum += l.Delta
		assert.Equal(t, l.Before+l.Delta, l.After)
		assert.GreaterOrEqual(t, l.After, 0)
	}
	assert.Equal(t, qty, sum, "日志的变化量之和等于当前数量")
}

func TestLedger_Lists(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AddStock(ctx, f.storeID, f.bookID, 2)
	require.NoError(t, err)
	_, err = f.ledger.AddStock(ctx, f.storeID, f.otherBook, 7)
	require.NoError(t, err)

	records, err := f.ledger.ListStoreStock(ctx, f.storeID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = f.ledger.ListBookStock(ctx, f.otherBook)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].Quantity)

	_, err = f.ledger.ListStoreStock(ctx, 999)
	assert.ErrorIs(t, err, inventory.ErrStoreNotFound)
	_, err = f.ledger.ListBookStock(ctx, 999)
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, "ok", resultOf(nil))
	assert.Equal(t, "insufficient", resultOf(inventory.Insufficient(inventory.Key{}, 2, 1)))
	assert.Equal(t, "not_found", resultOf(inventory.BookNotFound(1)))
	assert.Equal(t, "invalid", resultOf(inventory.ErrInvalidQuantity))
	assert.Equal(t, "error", resultOf(errors.New("db down")))
}

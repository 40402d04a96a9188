package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookledger/pkg/metrics"
	"github.com/xiebiao/bookledger/pkg/tracing"
)

const tracerName = "bookledger/inventory"

// Ledger 库存账本：某书店持有某图书多少本
//
// 教学要点：这是整个项目唯一有并发不变量的地方
//
// 不变量：
//  1. 记录存在时数量>0，减到0的同一事务内删除记录
//  2. 数量永远不会为负，取出超过持有量时失败且不做任何修改
//  3. 同一（书店，图书）上的并发增减结果等价于某个串行顺序
//
// 错误实现（读-改-写）：
//  1. 读取记录 → 10本
//  2. 内存中计算 10 - 4 = 6
//  3. 写回 quantity = 6
//     两个请求同时执行时，后写的覆盖先写的（丢失更新）
//
// 正确实现：
//   - 增加：一条upsert语句 quantity = quantity + ?，数据库保证原子性
//   - 取出：SELECT ... FOR UPDATE锁行 → 检查数量 → 条件UPDATE/DELETE → COMMIT
//
// 事务提交后才删除缓存、发布事件，回滚的变更不会被外部看到
type Ledger struct {
	repo      inventory.Repository
	logRepo   inventory.LogRepository
	catalog   inventory.CatalogLookup
	txManager *mysql.TxManager
	cache     QuantityCache
	publisher inventory.EventPublisher
}

// NewLedger 创建库存账本
// cache、publisher为nil时使用空实现
func NewLedger(
	repo inventory.Repository,
	logRepo inventory.LogRepository,
	catalog inventory.CatalogLookup,
	txManager *mysql.TxManager,
	cache QuantityCache,
	publisher inventory.EventPublisher,
) *Ledger {
	if cache == nil {
		cache = NopCache{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Ledger{
		repo:      repo,
		logRepo:   logRepo,
		catalog:   catalog,
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
	}
}

// AddStock 增加库存，记录不存在时以quantity创建
// 书店和图书都必须存在
func (l *Ledger) AddStock(ctx context.Context, storeID, bookID uint, quantity int) (rec *inventory.Record, err error) {
	ctx, done := l.begin(ctx, "add", storeID, bookID, quantity)
	defer func() { done(err) }()

	if err := inventory.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	key := inventory.Key{StoreID: storeID, BookID: bookID}
	var changeLog *inventory.ChangeLog
	err = l.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := l.ensureStore(txCtx, storeID); err != nil {
			return err
		}
		if err := l.ensureBook(txCtx, bookID); err != nil {
			return err
		}

		updated, err := l.repo.Increment(txCtx, key, quantity)
		if err != nil {
			return err
		}

		changeLog = inventory.NewRestockLog(key, quantity, updated.Quantity-quantity, inventory.OperatorFrom(ctx))
		if err := l.logRepo.Create(txCtx, changeLog); err != nil {
			return err
		}

		rec = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, key, changeLog)
	return rec, nil
}

// RemoveStock 取出库存
// 返回nil记录表示已取空（记录被删除）
// 记录不存在按可用数量0处理，返回库存不足
func (l *Ledger) RemoveStock(ctx context.Context, storeID, bookID uint, quantity int) (rec *inventory.Record, err error) {
	ctx, done := l.begin(ctx, "remove", storeID, bookID, quantity)
	defer func() { done(err) }()

	if err := inventory.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	key := inventory.Key{StoreID: storeID, BookID: bookID}
	var changeLog *inventory.ChangeLog
	err = l.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := l.ensureStore(txCtx, storeID); err != nil {
			return err
		}

		current, err := l.repo.LockByKey(txCtx, key)
		if err != nil {
			return err
		}
		if err := inventory.CheckRemovable(current, key, quantity); err != nil {
			return err
		}

		before := current.Quantity
		var applied bool
		if before == quantity {
			applied, err = l.repo.DeleteIfQuantity(txCtx, key, quantity)
		} else {
			applied, err = l.repo.Decrement(txCtx, key, quantity)
		}
		if err != nil {
			return err
		}
		if !applied {
			// 加锁后仍然没有命中条件，说明记录被并发修改，按最新数量报错
			fresh, err := l.repo.FindByKey(txCtx, key)
			if err != nil {
				return err
			}
			return inventory.Insufficient(key, quantity, inventory.QuantityOf(fresh))
		}

		changeLog = inventory.NewRemoveLog(key, quantity, before, inventory.OperatorFrom(ctx))
		if err := l.logRepo.Create(txCtx, changeLog); err != nil {
			return err
		}

		if changeLog.After > 0 {
			rec = &inventory.Record{
				StoreID:   storeID,
				BookID:    bookID,
				Quantity:  changeLog.After,
				UpdatedAt: changeLog.CreatedAt,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, key, changeLog)
	return rec, nil
}

// GetQuantity 查询数量，没有记录时返回0
// 只校验书店存在，图书不存在同样返回0
func (l *Ledger) GetQuantity(ctx context.Context, storeID, bookID uint) (qty int, err error) {
	ctx, done := l.begin(ctx, "get", storeID, bookID, 0)
	defer func() { done(err) }()

	key := inventory.Key{StoreID: storeID, BookID: bookID}
	return l.cache.GetOrLoad(ctx, key, func(ctx context.Context) (int, error) {
		if err := l.ensureStore(ctx, storeID); err != nil {
			return 0, err
		}
		rec, err := l.repo.FindByKey(ctx, key)
		if err != nil {
			return 0, err
		}
		return inventory.QuantityOf(rec), nil
	})
}

// ListStoreStock 书店持有的全部图书
func (l *Ledger) ListStoreStock(ctx context.Context, storeID uint) ([]*inventory.Record, error) {
	if err := l.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}
	return l.repo.ListByStore(ctx, storeID)
}

// ListBookStock 持有该图书的全部书店
// 删除图书前在同一事务内调用
func (l *Ledger) ListBookStock(ctx context.Context, bookID uint) ([]*inventory.Record, error) {
	if err := l.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}
	return l.repo.ListByBook(ctx, bookID)
}

// History 库存变更日志，最新的在前
func (l *Ledger) History(ctx context.Context, storeID, bookID uint, page, pageSize int) ([]*inventory.ChangeLog, int64, error) {
	if err := l.ensureStore(ctx, storeID); err != nil {
		return nil, 0, err
	}
	return l.logRepo.List(ctx, inventory.Key{StoreID: storeID, BookID: bookID}, page, pageSize)
}

func (l *Ledger) ensureStore(ctx context.Context, storeID uint) error {
	ok, err := l.catalog.StoreExists(ctx, storeID)
	if err != nil {
		return err
	}
	if !ok {
		return inventory.StoreNotFound(storeID)
	}
	return nil
}

func (l *Ledger) ensureBook(ctx context.Context, bookID uint) error {
	ok, err := l.catalog.BookExists(ctx, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return inventory.BookNotFound(bookID)
	}
	return nil
}

// afterCommit 删除缓存并发布事件
// 失败只记日志，库存变更已经提交
func (l *Ledger) afterCommit(ctx context.Context, key inventory.Key, changeLog *inventory.ChangeLog) {
	logger := zerolog.Ctx(ctx)

	if err := l.cache.Invalidate(ctx, key); err != nil {
		logger.Warn().Err(err).Uint("store_id", key.StoreID).Uint("book_id", key.BookID).Msg("删除库存缓存失败")
	}

	event := inventory.NewStockChanged(changeLog)
	if err := l.publisher.PublishStockChanged(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", string(event.Type)).Msg("发布库存事件失败")
	}

	logger.Info().
		Str("change", string(changeLog.ChangeType)).
		Uint("store_id", key.StoreID).
		Uint("book_id", key.BookID).
		Int("delta", changeLog.Delta).
		Int("quantity", changeLog.After).
		Uint("operator_id", changeLog.OperatorID).
		Msg("库存已变更")
}

// begin 开启span并返回结束回调（记录指标、span状态）
func (l *Ledger) begin(ctx context.Context, op string, storeID, bookID uint, quantity int) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Ledger."+op,
		trace.WithAttributes(
			attribute.Int64("inventory.store_id", int64(storeID)),
			attribute.Int64("inventory.book_id", int64(bookID)),
			attribute.Int("inventory.quantity", quantity),
		),
	)

	return ctx, func(err error) {
		result := resultOf(err)
		metrics.ObserveLedgerOp(op, result, time.Since(start))
		span.SetAttributes(attribute.String("inventory.result", result))
		tracing.EndSpan(span, err)
	}
}

// resultOf 指标标签，只区分几类结果，避免标签基数过大
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, inventory.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, inventory.ErrStoreNotFound), errors.Is(err, inventory.ErrBookNotFound):
		return "not_found"
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "invalid"
	default:
		return "error"
	}
}

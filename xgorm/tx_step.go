package xgorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xflow"
)

// TxFunc 在事务内执行的步骤逻辑
type TxFunc[T any] func(ctx context.Context, tx *gorm.DB, data *T) error

// TxStep 把数据库操作接入 xflow：Process 与 Rollback 各自在独立事务中执行，返回 error 时事务回滚
//
//	flow := xflow.New[Order]("create-order").
//		Step(xgorm.NewTxStep[Order]("insert-order").
//			WithProcess(func(ctx context.Context, tx *gorm.DB, o *Order) error { return tx.Create(o).Error }).
//			WithRollback(func(ctx context.Context, tx *gorm.DB, o *Order) error { return tx.Delete(o).Error }))
type TxStep[T any] struct {
	name       string
	dependency xflow.Dependency
	process    TxFunc[T]
	rollback   TxFunc[T]
	db         func(ctx context.Context) *gorm.DB
}

var _ xflow.Processor[struct{}] = (*TxStep[struct{}])(nil)

// NewTxStep 创建强依赖事务步骤，dbName 为空时使用默认数据库
func NewTxStep[T any](name string, dbName ...string) *TxStep[T] {
	return &TxStep[T]{
		name:       name,
		dependency: xflow.Strong,
		db: func(ctx context.Context) *gorm.DB {
			return CWithCtx(ctx, dbName...)
		},
	}
}

// Weak 标记为弱依赖，失败不中断流程
func (s *TxStep[T]) Weak() *TxStep[T] {
	s.dependency = xflow.Weak
	return s
}

func (s *TxStep[T]) WithProcess(fn TxFunc[T]) *TxStep[T] {
	s.process = fn
	return s
}

func (s *TxStep[T]) WithRollback(fn TxFunc[T]) *TxStep[T] {
	s.rollback = fn
	return s
}

// WithDB 指定获取 *gorm.DB 的方式，用于非全局注册的连接
func (s *TxStep[T]) WithDB(fn func(ctx context.Context) *gorm.DB) *TxStep[T] {
	if fn != nil {
		s.db = fn
	}
	return s
}

func (s *TxStep[T]) Name() string { return s.name }

func (s *TxStep[T]) Dependency() xflow.Dependency { return s.dependency }

func (s *TxStep[T]) Process(ctx context.Context, data *T) error {
	return s.transaction(ctx, "Process", s.process, data)
}

func (s *TxStep[T]) Rollback(ctx context.Context, data *T) error {
	return s.transaction(ctx, "Rollback", s.rollback, data)
}

func (s *TxStep[T]) transaction(ctx context.Context, op string, fn TxFunc[T], data *T) error {
	if fn == nil {
		return nil
	}
	db := s.db(ctx)
	if db == nil {
		return xerror.Newf("xgorm", op, "step [%s] has no available db", s.name)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx, data)
	})
}

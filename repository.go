package sqlargon

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/performancemedia/sqlargon/logging"
)

// Validatable models are validated before writes.
type Validatable interface {
	Validate() error
}

// QueryOption narrows, orders or pages a query.
type QueryOption func(*gorm.DB) *gorm.DB

// Where adds a condition.
func Where(query interface{}, args ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// OrderBy orders results by column, ascending unless desc is set.
func OrderBy(column string, desc bool) QueryOption {
	order := "asc"
	if desc {
		order = "desc"
	}
	return func(db *gorm.DB) *gorm.DB { return db.Order(fmt.Sprintf("%s %s", column, order)) }
}

// Limit caps the number of returned rows.
func Limit(n int) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Limit(n) }
}

// Offset skips the first n rows.
func Offset(n int) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Offset(n) }
}

// Preload eagerly loads an association.
func Preload(association string, args ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(association, args...) }
}

// Scope applies a gorm scope such as NotDeleted.
func Scope(scope func(*gorm.DB) *gorm.DB) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Scopes(scope) }
}

// Repository provides typed CRUD over a Database. Every operation honors
// a session bound to the context, so repositories compose with
// UnitOfWork and Database.Session transparently.
type Repository[M any] struct {
	db  *Database
	log logging.Logger
}

// NewRepository creates a repository for model M. The logger may be nil.
func NewRepository[M any](db *Database, log logging.Logger) *Repository[M] {
	return &Repository[M]{db: db, log: log}
}

// DB returns the database the repository operates on.
func (r *Repository[M]) DB() *Database { return r.db }

func (r *Repository[M]) handle(ctx context.Context, opts ...QueryOption) *gorm.DB {
	db := r.db.handle(ctx)
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func (r *Repository[M]) infof(args ...interface{}) {
	if r.log != nil {
		r.log.Info(args...)
	}
}

// Create inserts the entity, validating it first when it implements
// Validatable.
func (r *Repository[M]) Create(ctx context.Context, entity *M) error {
	if err := validateEntity(entity); err != nil {
		return err
	}
	if err := r.handle(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %T: %w", *entity, Translate(err))
	}
	r.infof(fmt.Sprintf("created %T", *entity))
	return nil
}

// CreateBatch inserts entities in chunks of batchSize.
func (r *Repository[M]) CreateBatch(ctx context.Context, entities []*M, batchSize int) error {
	if len(entities) == 0 {
		return nil
	}
	for _, entity := range entities {
		if err := validateEntity(entity); err != nil {
			return err
		}
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if err := r.handle(ctx).CreateInBatches(entities, batchSize).Error; err != nil {
		return fmt.Errorf("failed to create %T batch: %w", *entities[0], Translate(err))
	}
	return nil
}

// GetByID fetches a single entity by primary key.
func (r *Repository[M]) GetByID(ctx context.Context, id interface{}) (*M, error) {
	var entity M
	if err := r.handle(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %T with id %v: %w", entity, id, Translate(err))
	}
	return &entity, nil
}

// Get fetches the first entity matching the options.
func (r *Repository[M]) Get(ctx context.Context, opts ...QueryOption) (*M, error) {
	var entity M
	if err := r.handle(ctx, opts...).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %T: %w", entity, Translate(err))
	}
	return &entity, nil
}

// List fetches all entities matching the options.
func (r *Repository[M]) List(ctx context.Context, opts ...QueryOption) ([]*M, error) {
	var entities []*M
	if err := r.handle(ctx, opts...).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", *new(M), Translate(err))
	}
	return entities, nil
}

// Count returns the number of entities matching the options.
func (r *Repository[M]) Count(ctx context.Context, opts ...QueryOption) (int64, error) {
	var count int64
	if err := r.handle(ctx, opts...).Model(new(M)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", *new(M), Translate(err))
	}
	return count, nil
}

// Exists reports whether any entity matches the options.
func (r *Repository[M]) Exists(ctx context.Context, opts ...QueryOption) (bool, error) {
	count, err := r.Count(ctx, opts...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save updates all fields of the entity, inserting it when missing.
func (r *Repository[M]) Save(ctx context.Context, entity *M) error {
	if err := validateEntity(entity); err != nil {
		return err
	}
	if err := r.handle(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("failed to save %T: %w", *entity, Translate(err))
	}
	r.infof(fmt.Sprintf("saved %T", *entity))
	return nil
}

// Updates applies the given column values to all entities matching the
// options and returns the number of affected rows. gorm refuses an
// unconditional update, so at least one condition option is required.
func (r *Repository[M]) Updates(ctx context.Context, values map[string]interface{}, opts ...QueryOption) (int64, error) {
	res := r.handle(ctx, opts...).Model(new(M)).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update %T: %w", *new(M), Translate(res.Error))
	}
	return res.RowsAffected, nil
}

// DeleteByID removes the entity with the given primary key.
func (r *Repository[M]) DeleteByID(ctx context.Context, id interface{}) error {
	if err := r.handle(ctx).Where("id = ?", id).Delete(new(M)).Error; err != nil {
		return fmt.Errorf("failed to delete %T with id %v: %w", *new(M), id, Translate(err))
	}
	r.infof(fmt.Sprintf("deleted %T with id %v", *new(M), id))
	return nil
}

// Delete removes all entities matching the options and returns the
// number of affected rows. gorm refuses an unconditional delete, so at
// least one condition option is required.
func (r *Repository[M]) Delete(ctx context.Context, opts ...QueryOption) (int64, error) {
	res := r.handle(ctx, opts...).Delete(new(M))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete %T: %w", *new(M), Translate(res.Error))
	}
	return res.RowsAffected, nil
}

// Upsert inserts the entity, resolving conflicts on conflictColumns by
// updating updateColumns, or by doing nothing when updateColumns is
// empty. Returns ErrUnsupported when the dialect lacks ON CONFLICT.
func (r *Repository[M]) Upsert(ctx context.Context, entity *M, conflictColumns []string, updateColumns []string) error {
	if !r.db.SupportsOnConflict() {
		return ErrUnsupported
	}
	if err := validateEntity(entity); err != nil {
		return err
	}

	onConflict := clause.OnConflict{}
	for _, col := range conflictColumns {
		onConflict.Columns = append(onConflict.Columns, clause.Column{Name: col})
	}
	if len(updateColumns) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(updateColumns)
	}

	if err := r.handle(ctx).Clauses(onConflict).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to upsert %T: %w", *entity, Translate(err))
	}
	return nil
}

func validateEntity(entity interface{}) error {
	if v, ok := entity.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
	}
	return nil
}

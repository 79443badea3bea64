package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/catalog/model"
	"github.com/lunamart/eshop/internal/storage/db"
)

type CatalogTypeRepository interface {
	WithDB(db db.DB) CatalogTypeRepository
	CreateType(ctx context.Context, catalogType model.CatalogType) (model.CatalogType, error)
	GetType(ctx context.Context, id int64) (model.CatalogType, error)
	ListTypes(ctx context.Context) ([]model.CatalogType, error)
	UpdateType(ctx context.Context, catalogType model.CatalogType) error
	DeleteType(ctx context.Context, id int64) error
}

type catalogTypeRepository struct {
	db db.DB
}

func NewCatalogTypeRepository(db db.DB) CatalogTypeRepository {
	return &catalogTypeRepository{db: db}
}

func (r catalogTypeRepository) WithDB(db db.DB) CatalogTypeRepository {
	return &catalogTypeRepository{db: db}
}

func (r catalogTypeRepository) CreateType(ctx context.Context, catalogType model.CatalogType) (model.CatalogType, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO catalog_types (type) VALUES ($1) RETURNING id`,
		catalogType.Type,
	).Scan(&catalogType.ID)
	if err != nil {
		return model.CatalogType{}, fmt.Errorf("insert catalog type: %w", err)
	}

	return catalogType, nil
}

func (r catalogTypeRepository) GetType(ctx context.Context, id int64) (model.CatalogType, error) {
	var catalogType model.CatalogType
	err := r.db.QueryRow(ctx,
		`SELECT id, type FROM catalog_types WHERE id = $1`, id,
	).Scan(&catalogType.ID, &catalogType.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CatalogType{}, apperr.CatalogTypeNotFoundErr
		}
		return model.CatalogType{}, fmt.Errorf("get catalog type: %w", err)
	}

	return catalogType, nil
}

func (r catalogTypeRepository) ListTypes(ctx context.Context) ([]model.CatalogType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, type FROM catalog_types ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog types: %w", err)
	}
	defer rows.Close()

	types := []model.CatalogType{}
	for rows.Next() {
		var catalogType model.CatalogType
		if err := rows.Scan(&catalogType.ID, &catalogType.Type); err != nil {
			return nil, fmt.Errorf("scan catalog type: %w", err)
		}
		types = append(types, catalogType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog types: %w", err)
	}

	return types, nil
}

func (r catalogTypeRepository) UpdateType(ctx context.Context, catalogType model.CatalogType) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE catalog_types SET type = $2 WHERE id = $1`,
		catalogType.ID, catalogType.Type,
	)
	if err != nil {
		return fmt.Errorf("update catalog type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogTypeNotFoundErr
	}

	return nil
}

func (r catalogTypeRepository) DeleteType(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.InvalidReferenceErr.WrapParent(err)
		}
		return fmt.Errorf("delete catalog type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogTypeNotFoundErr
	}

	return nil
}

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

type CatalogBrandRepository interface {
	WithDB(db db.DB) CatalogBrandRepository
	CreateBrand(ctx context.Context, brand model.CatalogBrand) (model.CatalogBrand, error)
	GetBrand(ctx context.Context, id int64) (model.CatalogBrand, error)
	ListBrands(ctx context.Context) ([]model.CatalogBrand, error)
	UpdateBrand(ctx context.Context, brand model.CatalogBrand) error
	DeleteBrand(ctx context.Context, id int64) error
}

type catalogBrandRepository struct {
	db db.DB
}

func NewCatalogBrandRepository(db db.DB) CatalogBrandRepository {
	return &catalogBrandRepository{db: db}
}

func (r catalogBrandRepository) WithDB(db db.DB) CatalogBrandRepository {
	return &catalogBrandRepository{db: db}
}

func (r catalogBrandRepository) CreateBrand(ctx context.Context, brand model.CatalogBrand) (model.CatalogBrand, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO catalog_brands (brand) VALUES ($1) RETURNING id`,
		brand.Brand,
	).Scan(&brand.ID)
	if err != nil {
		return model.CatalogBrand{}, fmt.Errorf("insert catalog brand: %w", err)
	}

	return brand, nil
}

func (r catalogBrandRepository) GetBrand(ctx context.Context, id int64) (model.CatalogBrand, error) {
	var brand model.CatalogBrand
	err := r.db.QueryRow(ctx,
		`SELECT id, brand FROM catalog_brands WHERE id = $1`, id,
	).Scan(&brand.ID, &brand.Brand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CatalogBrand{}, apperr.CatalogBrandNotFoundErr
		}
		return model.CatalogBrand{}, fmt.Errorf("get catalog brand: %w", err)
	}

	return brand, nil
}

func (r catalogBrandRepository) ListBrands(ctx context.Context) ([]model.CatalogBrand, error) {
	rows, err := r.db.Query(ctx, `SELECT id, brand FROM catalog_brands ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog brands: %w", err)
	}
	defer rows.Close()

	brands := []model.CatalogBrand{}
	for rows.Next() {
		var brand model.CatalogBrand
		if err := rows.Scan(&brand.ID, &brand.Brand); err != nil {
			return nil, fmt.Errorf("scan catalog brand: %w", err)
		}
		brands = append(brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog brands: %w", err)
	}

	return brands, nil
}

func (r catalogBrandRepository) UpdateBrand(ctx context.Context, brand model.CatalogBrand) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE catalog_brands SET brand = $2 WHERE id = $1`,
		brand.ID, brand.Brand,
	)
	if err != nil {
		return fmt.Errorf("update catalog brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogBrandNotFoundErr
	}

	return nil
}

func (r catalogBrandRepository) DeleteBrand(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_brands WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.InvalidReferenceErr.WrapParent(err)
		}
		return fmt.Errorf("delete catalog brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogBrandNotFoundErr
	}

	return nil
}

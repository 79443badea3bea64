package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/catalog/model"
	"github.com/lunamart/eshop/internal/storage/db"
)

const pgForeignKeyViolation = "23503"

type ListItemsParams struct {
	PageIndex int
	PageSize  int
}

type CatalogItemRepository interface {
	WithDB(db db.DB) CatalogItemRepository
	CreateItem(ctx context.Context, item model.CatalogItem) (model.CatalogItem, error)
	GetItem(ctx context.Context, id int64) (model.CatalogItem, error)
	ListItems(ctx context.Context, params ListItemsParams) (model.PaginatedItems, error)
	UpdateItem(ctx context.Context, item model.CatalogItem) error
	DeleteItem(ctx context.Context, id int64) error
}

type catalogItemRepository struct {
	db db.DB
}

func NewCatalogItemRepository(db db.DB) CatalogItemRepository {
	return &catalogItemRepository{db: db}
}

func (r catalogItemRepository) WithDB(db db.DB) CatalogItemRepository {
	return &catalogItemRepository{db: db}
}

const itemColumns = `id, name, description, price, picture_file_name,
	catalog_brand_id, catalog_type_id, available_stock, on_reorder`

func (r catalogItemRepository) CreateItem(ctx context.Context, item model.CatalogItem) (model.CatalogItem, error) {
	price, err := numericFromDecimal(item.Price)
	if err != nil {
		return model.CatalogItem{}, err
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO catalog_items
			(name, description, price, picture_file_name,
			 catalog_brand_id, catalog_type_id, available_stock, on_reorder)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		item.Name, item.Description, price, item.PictureFileName,
		item.CatalogBrandID, item.CatalogTypeID, item.AvailableStock, item.OnReorder,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.CatalogItem{}, apperr.InvalidReferenceErr.WrapParent(err)
		}
		return model.CatalogItem{}, fmt.Errorf("insert catalog item: %w", err)
	}

	return item, nil
}

func (r catalogItemRepository) GetItem(ctx context.Context, id int64) (model.CatalogItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM catalog_items WHERE id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CatalogItem{}, apperr.CatalogItemNotFoundErr
		}
		return model.CatalogItem{}, fmt.Errorf("get catalog item: %w", err)
	}

	return item, nil
}

func (r catalogItemRepository) ListItems(ctx context.Context, params ListItemsParams) (model.PaginatedItems, error) {
	result := model.PaginatedItems{
		PageIndex: params.PageIndex,
		PageSize:  params.PageSize,
		Items:     []model.CatalogItem{},
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM catalog_items`,
	).Scan(&result.TotalCount); err != nil {
		return model.PaginatedItems{}, fmt.Errorf("count catalog items: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		ORDER BY id ASC
		OFFSET $1 LIMIT $2`,
		params.PageIndex*params.PageSize, params.PageSize,
	)
	if err != nil {
		return model.PaginatedItems{}, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return model.PaginatedItems{}, fmt.Errorf("scan catalog item: %w", err)
		}
		result.Items = append(result.Items, item)
	}
	if err := rows.Err(); err != nil {
		return model.PaginatedItems{}, fmt.Errorf("iterate catalog items: %w", err)
	}

	return result, nil
}

func (r catalogItemRepository) UpdateItem(ctx context.Context, item model.CatalogItem) error {
	price, err := numericFromDecimal(item.Price)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE catalog_items
		SET name = $2,
		    description = $3,
		    price = $4,
		    picture_file_name = $5,
		    catalog_brand_id = $6,
		    catalog_type_id = $7,
		    available_stock = $8,
		    on_reorder = $9
		WHERE id = $1`,
		item.ID, item.Name, item.Description, price, item.PictureFileName,
		item.CatalogBrandID, item.CatalogTypeID, item.AvailableStock, item.OnReorder,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.InvalidReferenceErr.WrapParent(err)
		}
		return fmt.Errorf("update catalog item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogItemNotFoundErr
	}

	return nil
}

func (r catalogItemRepository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete catalog item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CatalogItemNotFoundErr
	}

	return nil
}

func scanItem(row pgx.Row) (model.CatalogItem, error) {
	var (
		item  model.CatalogItem
		price pgtype.Numeric
	)

	if err := row.Scan(
		&item.ID, &item.Name, &item.Description, &price, &item.PictureFileName,
		&item.CatalogBrandID, &item.CatalogTypeID, &item.AvailableStock, &item.OnReorder,
	); err != nil {
		return model.CatalogItem{}, err
	}

	dec, err := decimalFromNumeric(price)
	if err != nil {
		return model.CatalogItem{}, err
	}
	item.Price = dec

	return item, nil
}

func numericFromDecimal(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

func decimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	v, err := n.Value()
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert price: %w", err)
	}

	s, ok := v.(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unexpected numeric driver value %T", v)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price: %w", err)
	}

	return d, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

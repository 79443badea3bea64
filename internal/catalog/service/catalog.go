package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/catalog/model"
	"github.com/lunamart/eshop/internal/catalog/repository"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/event"
	"github.com/lunamart/eshop/internal/storage/db"
	"github.com/lunamart/eshop/internal/storage/mq"
	"github.com/lunamart/eshop/pkg/ptr"
)

type CreateItemParams struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	PictureFileName string
	CatalogBrandID  int64
	CatalogTypeID   int64
	AvailableStock  int
	OnReorder       bool
}

// UpdateItemParams carries a partial update. Nil fields leave the stored
// value unchanged.
type UpdateItemParams struct {
	ID              int64
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	PictureFileName *string
	CatalogBrandID  *int64
	CatalogTypeID   *int64
	AvailableStock  *int
	OnReorder       *bool
}

type ListItemsParams struct {
	PageIndex int
	PageSize  int
}

type CatalogService interface {
	CreateItem(ctx context.Context, params CreateItemParams) (model.CatalogItem, error)
	GetItem(ctx context.Context, id int64) (model.CatalogItem, error)
	ListItems(ctx context.Context, params ListItemsParams) (model.PaginatedItems, error)
	UpdateItem(ctx context.Context, params UpdateItemParams) (model.CatalogItem, error)
	DeleteItem(ctx context.Context, id int64) error

	CreateBrand(ctx context.Context, brand string) (model.CatalogBrand, error)
	GetBrand(ctx context.Context, id int64) (model.CatalogBrand, error)
	ListBrands(ctx context.Context) ([]model.CatalogBrand, error)
	UpdateBrand(ctx context.Context, id int64, brand *string) error
	DeleteBrand(ctx context.Context, id int64) error

	CreateType(ctx context.Context, catalogType string) (model.CatalogType, error)
	GetType(ctx context.Context, id int64) (model.CatalogType, error)
	ListTypes(ctx context.Context) ([]model.CatalogType, error)
	UpdateType(ctx context.Context, id int64, catalogType *string) error
	DeleteType(ctx context.Context, id int64) error
}

type catalogService struct {
	cfg        config.Catalog
	db         db.DB
	itemRepo   repository.CatalogItemRepository
	brandRepo  repository.CatalogBrandRepository
	typeRepo   repository.CatalogTypeRepository
	outboxRepo repository.OutboxMsgRepository
}

func NewCatalogService(
	cfg config.Catalog,
	db db.DB,
	itemRepo repository.CatalogItemRepository,
	brandRepo repository.CatalogBrandRepository,
	typeRepo repository.CatalogTypeRepository,
	outboxRepo repository.OutboxMsgRepository,
) CatalogService {
	return &catalogService{
		cfg:        cfg,
		db:         db,
		itemRepo:   itemRepo,
		brandRepo:  brandRepo,
		typeRepo:   typeRepo,
		outboxRepo: outboxRepo,
	}
}

func (s *catalogService) CreateItem(ctx context.Context, params CreateItemParams) (model.CatalogItem, error) {
	item := model.CatalogItem{
		Name:            params.Name,
		Description:     params.Description,
		Price:           params.Price,
		PictureFileName: params.PictureFileName,
		CatalogBrandID:  params.CatalogBrandID,
		CatalogTypeID:   params.CatalogTypeID,
		AvailableStock:  params.AvailableStock,
		OnReorder:       params.OnReorder,
	}

	item, err := s.itemRepo.CreateItem(ctx, item)
	if err != nil {
		return model.CatalogItem{}, fmt.Errorf("item repository create item: %w", err)
	}

	s.fillPictureURL(&item)
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, id int64) (model.CatalogItem, error) {
	if id < 0 {
		return model.CatalogItem{}, apperr.InvalidCatalogIDErr
	}

	item, err := s.itemRepo.GetItem(ctx, id)
	if err != nil {
		return model.CatalogItem{}, fmt.Errorf("item repository get item: %w", err)
	}

	s.fillPictureURL(&item)
	return item, nil
}

func (s *catalogService) ListItems(ctx context.Context, params ListItemsParams) (model.PaginatedItems, error) {
	if params.PageSize < 1 || params.PageIndex < 0 {
		return model.PaginatedItems{}, apperr.InvalidPaginationErr
	}

	page, err := s.itemRepo.ListItems(ctx, repository.ListItemsParams{
		PageIndex: params.PageIndex,
		PageSize:  params.PageSize,
	})
	if err != nil {
		return model.PaginatedItems{}, fmt.Errorf("item repository list items: %w", err)
	}

	for i := range page.Items {
		s.fillPictureURL(&page.Items[i])
	}

	return page, nil
}

// UpdateItem merges the present fields of params over the stored item and
// persists the result. When the merge changes the price, a price-changed
// integration event is written to the outbox in the same transaction, so the
// event cannot be lost once the update commits.
func (s *catalogService) UpdateItem(ctx context.Context, params UpdateItemParams) (model.CatalogItem, error) {
	item, err := s.itemRepo.GetItem(ctx, params.ID)
	if err != nil {
		return model.CatalogItem{}, fmt.Errorf("item repository get item: %w", err)
	}

	oldPrice := item.Price

	item.Name = ptr.Coalesce(params.Name, item.Name)
	item.Description = ptr.Coalesce(params.Description, item.Description)
	item.Price = ptr.Coalesce(params.Price, item.Price)
	item.PictureFileName = ptr.Coalesce(params.PictureFileName, item.PictureFileName)
	item.CatalogBrandID = ptr.Coalesce(params.CatalogBrandID, item.CatalogBrandID)
	item.CatalogTypeID = ptr.Coalesce(params.CatalogTypeID, item.CatalogTypeID)
	item.AvailableStock = ptr.Coalesce(params.AvailableStock, item.AvailableStock)
	item.OnReorder = ptr.Coalesce(params.OnReorder, item.OnReorder)

	priceChanged := !item.Price.Equal(oldPrice)

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.itemRepo.WithDB(db).UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("item repository update item: %w", err)
		}

		if !priceChanged {
			return nil
		}

		ev := event.CatalogItemPriceChangedEvent{
			ProductID: item.ID,
			OldPrice:  oldPrice,
			NewPrice:  item.Price,
		}
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal price changed event: %w", err)
		}

		if err := s.outboxRepo.WithDB(db).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicCatalogItemPriceChanged,
			Headers:      mq.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(strconv.FormatInt(item.ID, 10)),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.CatalogItem{}, fmt.Errorf("db with tx: %w", err)
	}

	s.fillPictureURL(&item)
	return item, nil
}

func (s *catalogService) DeleteItem(ctx context.Context, id int64) error {
	if id < 0 {
		return apperr.InvalidCatalogIDErr
	}

	if err := s.itemRepo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("item repository delete item: %w", err)
	}

	return nil
}

func (s *catalogService) CreateBrand(ctx context.Context, brand string) (model.CatalogBrand, error) {
	created, err := s.brandRepo.CreateBrand(ctx, model.CatalogBrand{Brand: brand})
	if err != nil {
		return model.CatalogBrand{}, fmt.Errorf("brand repository create brand: %w", err)
	}

	return created, nil
}

func (s *catalogService) GetBrand(ctx context.Context, id int64) (model.CatalogBrand, error) {
	if id < 0 {
		return model.CatalogBrand{}, apperr.InvalidCatalogIDErr
	}

	brand, err := s.brandRepo.GetBrand(ctx, id)
	if err != nil {
		return model.CatalogBrand{}, fmt.Errorf("brand repository get brand: %w", err)
	}

	return brand, nil
}

func (s *catalogService) ListBrands(ctx context.Context) ([]model.CatalogBrand, error) {
	brands, err := s.brandRepo.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("brand repository list brands: %w", err)
	}

	return brands, nil
}

func (s *catalogService) UpdateBrand(ctx context.Context, id int64, brand *string) error {
	existing, err := s.brandRepo.GetBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("brand repository get brand: %w", err)
	}

	existing.Brand = ptr.Coalesce(brand, existing.Brand)
	if err := s.brandRepo.UpdateBrand(ctx, existing); err != nil {
		return fmt.Errorf("brand repository update brand: %w", err)
	}

	return nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id int64) error {
	if err := s.brandRepo.DeleteBrand(ctx, id); err != nil {
		return fmt.Errorf("brand repository delete brand: %w", err)
	}

	return nil
}

func (s *catalogService) CreateType(ctx context.Context, catalogType string) (model.CatalogType, error) {
	created, err := s.typeRepo.CreateType(ctx, model.CatalogType{Type: catalogType})
	if err != nil {
		return model.CatalogType{}, fmt.Errorf("type repository create type: %w", err)
	}

	return created, nil
}

func (s *catalogService) GetType(ctx context.Context, id int64) (model.CatalogType, error) {
	if id < 0 {
		return model.CatalogType{}, apperr.InvalidCatalogIDErr
	}

	catalogType, err := s.typeRepo.GetType(ctx, id)
	if err != nil {
		return model.CatalogType{}, fmt.Errorf("type repository get type: %w", err)
	}

	return catalogType, nil
}

func (s *catalogService) ListTypes(ctx context.Context) ([]model.CatalogType, error) {
	types, err := s.typeRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("type repository list types: %w", err)
	}

	return types, nil
}

func (s *catalogService) UpdateType(ctx context.Context, id int64, catalogType *string) error {
	existing, err := s.typeRepo.GetType(ctx, id)
	if err != nil {
		return fmt.Errorf("type repository get type: %w", err)
	}

	existing.Type = ptr.Coalesce(catalogType, existing.Type)
	if err := s.typeRepo.UpdateType(ctx, existing); err != nil {
		return fmt.Errorf("type repository update type: %w", err)
	}

	return nil
}

func (s *catalogService) DeleteType(ctx context.Context, id int64) error {
	if err := s.typeRepo.DeleteType(ctx, id); err != nil {
		return fmt.Errorf("type repository delete type: %w", err)
	}

	return nil
}

func (s *catalogService) fillPictureURL(item *model.CatalogItem) {
	if item.PictureFileName == "" {
		return
	}
	item.PictureURL = strings.TrimSuffix(s.cfg.PicturesBaseURL, "/") + "/" + item.PictureFileName
}

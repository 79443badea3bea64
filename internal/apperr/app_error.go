package apperr

import "github.com/lunamart/eshop/pkg/zerror"

const (
	ValidationErrorCode = "VALIDATION_FAILED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	// Catalog service.
	CatalogItemNotFoundErr  = zerror.NewNotFound("CATALOG_ITEM_NOT_FOUND", "catalog item not found")
	CatalogBrandNotFoundErr = zerror.NewNotFound("CATALOG_BRAND_NOT_FOUND", "catalog brand not found")
	CatalogTypeNotFoundErr  = zerror.NewNotFound("CATALOG_TYPE_NOT_FOUND", "catalog type not found")
	InvalidPaginationErr    = zerror.NewBadRequest("INVALID_PAGINATION", "pageSize must be >= 1 and pageIndex must be >= 0")
	InvalidCatalogIDErr     = zerror.NewBadRequest("INVALID_CATALOG_ID", "id must be a non-negative integer")
	InvalidReferenceErr     = zerror.NewBadRequest("INVALID_REFERENCE", "referenced brand or type does not exist")

	// Basket service.
	BasketNotFoundErr = zerror.NewNotFound("BASKET_NOT_FOUND", "basket not found")
	ForbiddenErr      = zerror.NewForbidden("FORBIDDEN", "caller may not access another customer's basket")
	UnauthorizedErr   = zerror.NewUnauthorized("UNAUTHORIZED", "missing caller identity")
)

package models

import "errors"

// Domain error sentinels surfaced by the store and services. Callers match
// with errors.Is; the API layer maps them to HTTP statuses.
var (
	// ErrInvalidCart indicates an empty cart or a malformed entry.
	ErrInvalidCart = errors.New("invalid cart")

	// ErrProductNotFound indicates a referenced product id does not exist
	// (or is not purchasable).
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock indicates the requested quantity exceeds the
	// stock available at the moment of the locked check.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStoreUnavailable indicates a transport or transaction failure.
	// The attempt was rolled back in full; the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidAdjustment indicates a malformed stock adjustment request.
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")

	// ErrInvalidProduct indicates a malformed product create/update.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidSetting indicates a malformed settings write.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrInvalidStatus indicates a status outside the order vocabulary.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrOrderNotFound indicates an unknown order id on a read path.
	ErrOrderNotFound = errors.New("order not found")

	// ErrSettingNotFound indicates an unknown settings key.
	ErrSettingNotFound = errors.New("setting not found")
)

//go:generate mockgen -source=../snapshot_store.go     -destination=./mock_snapshot_store.go     -package=mocks
//go:generate mockgen -source=../storefront.go         -destination=./mock_storefront.go         -package=mocks
//go:generate mockgen -source=../product_cache.go      -destination=./mock_product_cache.go      -package=mocks
//go:generate mockgen -source=../notifier.go           -destination=./mock_notifier.go           -package=mocks
//go:generate mockgen -source=../logger.go             -destination=./mock_logger.go             -package=mocks
//go:generate mockgen -source=../message_consumer.go   -destination=./mock_message_consumer.go   -package=mocks
//go:generate mockgen -source=../snapshot_validator.go -destination=./mock_snapshot_validator.go -package=mocks
//go:generate mockgen -source=../cart_service.go       -destination=./mock_cart_service.go       -package=mocks

package mocks

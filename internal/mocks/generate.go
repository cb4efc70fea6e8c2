// Package mocks provides gomock implementations of the console's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	urls := mocks.NewMockURLSync(ctrl)
//	urls.EXPECT().ReadPage().Return(3, true)
package mocks

// Generate mock for URLSync interface from internal/listview package.
// This creates MockURLSync with methods: ReadPage, WritePage, OnExternalChange
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=url_sync_mock.go github.com/sandboxops/console/internal/listview URLSync

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods: Get, Set, Delete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/sandboxops/console/internal/core CacheRepository

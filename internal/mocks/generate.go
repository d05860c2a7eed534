// Package mocks provides gomock mocks for the event planner's ports.
//
// The mocks are generated with go.uber.org/mock (gomock). To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	idp := mocks.NewMockIdentityProvider(ctrl)
//	idp.EXPECT().ExchangeCode(gomock.Any(), gomock.Any()).Times(0)
package mocks

// MockIdentityProvider: AuthorizeURL, ExchangeCode, FetchUser, RetrieveUser, PatchUser,
// GenerateSecret, EnableTwoFactor, DisableTwoFactor
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_provider_mock.go github.com/target/event-planner/internal/ports IdentityProvider

// MockEventRepository: List, Create, GetByID, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/target/event-planner/internal/core EventRepository

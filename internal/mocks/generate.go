package mocks

// gomock-generated doubles live alongside the hand-written ones. To
// regenerate after interface changes, run:
//
//	go generate ./internal/mocks

// Generate mock for CredentialStore interface from internal/ports.
// This creates MockCredentialStore with Get, Set, and Clear.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/vitatrack/client-core/internal/ports CredentialStore

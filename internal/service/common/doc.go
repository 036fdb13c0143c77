// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the clock status API with
// per-call timeouts and a health probe.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

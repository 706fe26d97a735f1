//go:build tools

// Пакет tools предназначен для фиксации зависимостей инструментов.
// Wire-пакет api/storefront/v1 поддерживается руками, без protoc, а
// линтеры ставятся отдельно:
//
//	go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest
//
// поэтому импорты-заглушки не нужны.
package tools

// Пакет storefrontv1 описывает wire-контракт gRPC API storefront-сервиса.
//
// Сгенерированные protobuf-биндинги в репозиторий не коммитятся; контракт
// поддерживается вручную: плоские структуры сообщений, JSON-кодек gRPC
// (content-subtype "json") и дескрипторы сервисов в стиле сгенерированного
// кода. Клиенты подключаются с grpc.CallContentSubtype(JSONCodecName).
package storefrontv1

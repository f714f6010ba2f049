package errors

import "fmt"

// Common error wrapping patterns used throughout the generator

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause).
		WithContext("item", item)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause).
		WithContext("template", templateName).
		WithContext("stage", operation)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(path, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, path)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("path", path).
		WithContext("operation", operation)
}

// WrapTransactionError wraps a failure of the write transaction
func WrapTransactionError(txID, stage string, cause error) *BaseError {
	message := fmt.Sprintf("transaction %s failed during %s", txID, stage)
	return Wrap(TransactionErrorCode, message, cause).
		WithContext("transaction", txID).
		WithContext("stage", stage)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(kind, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to generate %s %s", kind, item)
	return Wrap(GenerationErrorCode, message, cause).
		WithContext("kind", kind).
		WithContext("item", item)
}

// FileSystemError creates a file system error
func FileSystemError(operation, path, message string) *BaseError {
	fullMessage := fmt.Sprintf("failed to %s '%s': %s", operation, path, message)
	return New(FileSystemErrorCode, fullMessage).
		WithContext("operation", operation).
		WithContext("path", path)
}

// ContextError creates an error about missing or unusable invocation context
func ContextError(message string) *BaseError {
	return New(ContextErrorCode, message)
}

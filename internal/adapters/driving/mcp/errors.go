// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions about ingested documents and read
// the owner's conversation history.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingOwner is returned when no owner is configured for the server.
var ErrMissingOwner = errors.New("mcp: owner is required")

package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// formatJSONResponse converts a response struct to a formatted JSON string
func formatJSONResponse(response interface{}) (string, error) {
	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	return string(jsonBytes), nil
}

// textResult wraps text into a single-content tool result
func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: isError,
	}
}

// errorResult reports a failure as tool output rather than a protocol error
func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return textResult(fmt.Sprintf(format, args...), true)
}

// stringArg reads a required, non-empty string argument
func stringArg(args map[string]interface{}, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required and must be a string", name)
	}
	return value, nil
}

// intArg reads a required whole-number argument. JSON numbers arrive as
// float64.
func intArg(args map[string]interface{}, name string) (int, error) {
	switch value := args[name].(type) {
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(value), nil
	case int:
		return value, nil
	}
	return 0, fmt.Errorf("%s is required and must be a number", name)
}

// respond formats a successful response, falling back to an error result
// when it cannot be encoded
func respond(logger *logrus.Logger, response APIResponse) (*mcp.CallToolResult, error) {
	jsonResponse, err := formatJSONResponse(response)
	if err != nil {
		logger.WithError(err).Error("Failed to format response")
		return errorResult("Error formatting response: %s", err.Error()), nil
	}
	return textResult(jsonResponse, false), nil
}

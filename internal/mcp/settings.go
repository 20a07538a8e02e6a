// Package mcp provides the MCP server implementation and its image tools.
package mcp

import (
	gconfig "github.com/Laisky/go-config/v2"
)

// ToolsSettings captures runtime configuration for enabling or disabling individual MCP tools.
type ToolsSettings struct {
	SearchImagesEnabled  bool
	UploadImageEnabled   bool
	SaveImagesEnabled    bool
	DownloadImageEnabled bool
}

// LoadToolsSettingsFromConfig reads the MCP tools configuration and returns a ToolsSettings instance.
// By default, all tools are enabled unless explicitly disabled in the configuration.
func LoadToolsSettingsFromConfig() ToolsSettings {
	return ToolsSettings{
		SearchImagesEnabled:  boolFromConfig("settings.mcp.tools.search_images.enabled", true),
		UploadImageEnabled:   boolFromConfig("settings.mcp.tools.upload_image.enabled", true),
		SaveImagesEnabled:    boolFromConfig("settings.mcp.tools.save_images.enabled", true),
		DownloadImageEnabled: boolFromConfig("settings.mcp.tools.download_image.enabled", true),
	}
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}

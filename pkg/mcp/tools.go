package mcp

import "github.com/mark3labs/mcp-go/mcp"

func scanOverviewTool() mcp.Tool {
	return mcp.NewTool("scan_overview",
		mcp.WithDescription("Scan the project and return counts: files, translation calls, resolved and unresolved key usages, hardcoded texts, registry sizes and timings."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listUnresolvedTool() mcp.Tool {
	return mcp.NewTool("list_unresolved",
		mcp.WithDescription("List translation calls whose keys cannot be determined statically, with the reason and, when one can be inferred, the glot-message-keys comment that would declare them."),
		mcp.WithString("file", mcp.Description("Only report this file (path relative to the source root, or absolute)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of usages to return (default 100)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listResolvedKeysTool() mcp.Tool {
	return mcp.NewTool("list_resolved_keys",
		mcp.WithDescription("List every message key the code uses, with its usage sites."),
		mcp.WithString("prefix", mcp.Description("Only keys starting with this prefix, e.g. \"Auth.\"")),
		mcp.WithBoolean("include_usages", mcp.Description("Include usage locations (default true)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of keys to return (default 500)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func scanHardcodedTool() mcp.Tool {
	return mcp.NewTool("scan_hardcoded",
		mcp.WithDescription("List user-visible text written directly in JSX instead of going through the translator."),
		mcp.WithString("file", mcp.Description("Only report this file (path relative to the source root, or absolute)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of findings to return (default 100)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getConfigTool() mcp.Tool {
	return mcp.NewTool("get_config",
		mcp.WithDescription("Return the effective scan configuration: source root, globs, messages root and primary locale."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

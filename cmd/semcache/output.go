package main

import (
	"encoding/json"

	"github.com/4thel00z/semcache/internal"
	"github.com/spf13/cobra"
)

func contextJSON(e internal.ContextOutput) map[string]any {
	return map[string]any{
		"query":      e.Query,
		"response":   e.Response,
		"entities":   e.Entities,
		"created_at": e.CreatedAt,
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enricher/internal/provider"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the configured chat and embedding models",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var catalog *provider.Catalog
		if cfg.Models.CatalogPath != "" {
			var err error
			if catalog, err = provider.LoadCatalog(cfg.Models.CatalogPath); err != nil {
				return err
			}
		}
		registry, err := provider.NewRegistry(cmd.Context(), cfg.Models, catalog)
		if err != nil {
			return eris.Wrap(err, "build provider registry")
		}

		listing := registry.Providers()
		if modelsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(listing)
		}
		formatListing(cmd.OutOrStdout(), listing)
		return nil
	},
}

// formatListing writes one row per provider and capability.
func formatListing(out io.Writer, l provider.Listing) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tPROVIDER\tMODELS")
	for _, pm := range l.Chat {
		_, _ = fmt.Fprintf(w, "chat\t%s\t%s\n", pm.Provider, strings.Join(pm.Models, ", "))
	}
	for _, pm := range l.Embedding {
		_, _ = fmt.Fprintf(w, "embedding\t%s\t%s\n", pm.Provider, strings.Join(pm.Models, ", "))
	}
	_ = w.Flush()

	if l.DefaultChat != nil {
		_, _ = fmt.Fprintf(out, "\nDefault chat: %s/%s\n", l.DefaultChat.Provider, strings.Join(l.DefaultChat.Models, ""))
	} else {
		_, _ = fmt.Fprintln(out, "\nNo chat providers configured.")
	}
	if l.DefaultEmbedding != nil {
		_, _ = fmt.Fprintf(out, "Default embedding: %s/%s\n", l.DefaultEmbedding.Provider, strings.Join(l.DefaultEmbedding.Models, ""))
	} else {
		_, _ = fmt.Fprintln(out, "No embedding providers configured; semantic ranking is disabled.")
	}
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the listing as JSON")
	rootCmd.AddCommand(modelsCmd)
}

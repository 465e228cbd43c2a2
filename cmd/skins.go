package cmd

import (
	"fmt"

	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/utils"
	"github.com/spf13/cobra"
)

var skinsJSON bool

var skinsCmd = &cobra.Command{
	Use:   "skins",
	Short: "List skin phototypes and their MED thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if skinsJSON {
			b, err := utils.PrettyJSON(med.SkinTypes)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "%-10s %s\n", "Tipo", "MED (J/m²)")
		for _, s := range med.SkinTypes {
			fmt.Fprintf(out, "%-10s %g\n", s.Label, s.Threshold)
		}
		fmt.Fprintf(out, "\nfixed mode threshold: %g J/m²\n", currentConfig().FixedThreshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skinsCmd)
	skinsCmd.Flags().BoolVar(&skinsJSON, "json", false, "print as JSON")
}

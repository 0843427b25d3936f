package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/titwsync/pkg/config"
	"github.com/harrisonrobin/titwsync/pkg/log"
)

var (
	mapProjectFlags []string
	mapTagFlags     []string
)

var configureCmd = &cobra.Command{
	Use:   "configure <todoist-api-key>",
	Short: "Write the titwsync rc file",
	Long: `Write the titwsync rc file.

Use --map-project to change or remove the project. Project hierarchies are
period-delimited during conversion. For example, the following maps both
'Work Errands' and 'House Errands' to 'errands', 'Programming.Open Source'
to 'oss', and unsets the project when it is 'Taxes':

  --map-project 'Work Errands'=errands
  --map-project 'House Errands'=errands
  --map-project 'Programming.Open Source'=oss
  --map-project Taxes=`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringArrayVarP(&mapProjectFlags, "map-project", "p", nil,
		"translate project names from SRC to DST; omit DST to unset the project (SRC=DST)")
	configureCmd.Flags().StringArrayVarP(&mapTagFlags, "map-tag", "t", nil,
		"translate tags from SRC to DST; omit DST to remove the tag (SRC=DST)")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	projectMap, err := parseMappings(mapProjectFlags)
	if err != nil {
		return fmt.Errorf("--map-project: %w", err)
	}
	tagMap, err := parseMappings(mapTagFlags)
	if err != nil {
		return fmt.Errorf("--map-tag: %w", err)
	}

	projectSync := make(map[string]bool)
	for _, dst := range projectMap {
		if dst != "" {
			projectSync[dst] = true
		}
	}

	cfg := &config.Config{
		Todoist: config.Todoist{
			APIKey:     args[0],
			ProjectMap: projectMap,
			TagMap:     tagMap,
		},
		Taskwarrior: config.Taskwarrior{
			ProjectSync: projectSync,
		},
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	log.Success("Configuration written to %s", path)
	return nil
}

// parseMappings turns SRC=DST pairs into a map. A pair with an empty DST is
// kept: it means "unset on match".
func parseMappings(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		src, dst, found := strings.Cut(pair, "=")
		if !found || src == "" {
			return nil, fmt.Errorf("invalid mapping %q (want SRC=DST)", pair)
		}
		m[src] = dst
	}
	return m, nil
}

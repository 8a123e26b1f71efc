// Package cli is the headless mdxpad command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mdxpad/internal/config"
	"mdxpad/internal/database"
	"mdxpad/internal/services"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mdxpad",
		Short: "MDX editing with streaming AI rewrites",
		Long: `mdxpad rewrites MDX documents with an LLM, streaming the answer into the
selected range or the whole document.

Examples:
  mdxpad generate post.mdx --range 3:1-5:20 --prompt "make it shorter"
  mdxpad generate post.mdx --prompt "write an intro" --provider openrouter
  mdxpad preview post.mdx > post.html
  mdxpad key set`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.GetConfigFilePath()
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			config.InitDebugLog(cfg.DataDir())
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.GetConfigFilePath()+")")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newModelsCmd(opts))
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newKeyCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	return root
}

// Execute is the entry point called from main.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// openServices opens the sqlite database under the data directory.
func (o *rootOptions) openServices(cmd *cobra.Command) (*services.DbServices, *gorm.DB, error) {
	if err := config.EnsureDir(o.cfg.DataDir()); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := database.Init(database.Config{Path: o.cfg.DatabasePath(), LogLevel: logger.Silent})
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewDbServices(db)
	if err := svc.StartDbServices(cmd.Context()); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	return svc, db, nil
}

func (o *rootOptions) keyring() *services.KeyringService {
	return services.NewKeyringService(o.cfg.Keyring)
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diogo/deploychat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change settings",
	Long: `Show or change settings stored in ~/.deploychat/config.json.

Without arguments the current configuration is printed. With a key and
value the setting is updated.

Keys:
  verbose            true/false
  copy_to_clipboard  true/false
  show_citations     true/false
  tui_theme          theme name
  markdown_style     dark, light, or path to JSON theme`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			printConfig(cfg)
			return nil
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: deploychat config <key> <value>")
		}

		if err := setConfigKey(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func printConfig(cfg config.Config) {
	fmt.Printf("verbose            = %t\n", cfg.Verbose)
	fmt.Printf("copy_to_clipboard  = %t\n", cfg.CopyToClipboard)
	fmt.Printf("show_citations     = %t\n", cfg.ShowCitations)
	fmt.Printf("tui_theme          = %s\n", cfg.TUITheme)
	fmt.Printf("markdown_style     = %s\n", cfg.Markdown.Style)
}

func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "verbose", "copy_to_clipboard", "show_citations":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false", key)
		}
		switch key {
		case "verbose":
			cfg.Verbose = b
		case "copy_to_clipboard":
			cfg.CopyToClipboard = b
		case "show_citations":
			cfg.ShowCitations = b
		}
	case "tui_theme":
		cfg.TUITheme = value
	case "markdown_style":
		cfg.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

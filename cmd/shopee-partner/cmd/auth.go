package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCancel bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Print the shop authorization URL",
	Long: "Prints the URL a shop owner must open to link their shop with this\n" +
		"partner application. After authorizing, Shopee redirects to the\n" +
		"configured redirect URI with a one-time code for 'token exchange'.",
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authCancel, "cancel", false, "print the cancellation URL instead")
	rootCmd.AddCommand(authCmd)
}

func runAuth(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	client, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	fmt.Println(client.BuildAuthURL(authCancel))
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/config"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/ochronus/gotransloadit/internal/utils"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// cli holds the state shared by all commands
type cli struct {
	configPath string
	service    string
	out        io.Writer
	opts       []app.Option
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, opts ...app.Option) *cobra.Command {
	defaultConfigPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultConfigPath = "./config.toml"
	}

	c := &cli{out: out, opts: opts}

	rootCmd := &cobra.Command{
		Use:           "gotransloadit",
		Short:         "Transloadit assemblies client",
		Long:          "Command line client for the Transloadit assemblies API. Creates assemblies, registers files, tracks status and receives notifications.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", defaultConfigPath, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&c.service, "service", "", "API endpoint, overrides the config file")

	// Generate-config command
	var authKey string
	generateConfigCmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.GenerateConfig(c.configPath, authKey)
		},
	}
	generateConfigCmd.Flags().StringVar(&authKey, "auth-key", "", "Account auth key to write into the config")

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gotransloadit version %s\n", version)
		},
	}

	rootCmd.AddCommand(
		c.createCmd(),
		c.reserveCmd(),
		c.addFileCmd(),
		c.cancelCmd(),
		c.statusCmd(),
		c.watchCmd(),
		c.importCmd(),
		c.serveCmd(),
		generateConfigCmd,
		versionCmd,
	)

	return rootCmd
}

// container loads and validates the configuration and builds the shared dependencies
func (c *cli) container() (*app.Container, error) {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.service != "" {
		cfg.Service = c.service
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	container, err := app.NewContainer(cfg, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	return container, nil
}

func (c *cli) print(container *app.Container, resp transloadit.Response) error {
	return utils.WriteResponse(c.out, resp, container.Config.Output)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reeltime/internal/config"
	"reeltime/internal/engine"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !overwrite {
				_, err := os.Stat(target)
				if err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
				if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveInitTarget(path string) (string, error) {
	if target := strings.TrimSpace(path); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and the scene policy it produces",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				fmt.Fprintln(out, statusLine("Config", statusError, err.Error(), colorize))
				return fmt.Errorf("load config: %w", err)
			}
			message := path
			if !exists {
				message = path + " (not found, defaults used)"
			}
			fmt.Fprintln(out, statusLine("Config", statusOK, message, colorize))

			if err := engine.PolicyFromConfig(cfg).Validate(); err != nil {
				fmt.Fprintln(out, statusLine("Scene policy", statusError, err.Error(), colorize))
				return err
			}
			fmt.Fprintln(out, statusLine("Scene policy", statusOK, "consistent", colorize))
			fmt.Fprintln(out, statusLine("State dir", statusInfo, cfg.Paths.StateDir, colorize))
			fmt.Fprintln(out, statusLine("Log dir", statusInfo, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

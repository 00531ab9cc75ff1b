// cmd/tools/triage-cli/cmd_registry.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"maintenance-triage/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect, export and edit the activity registry",
	}
	cmd.AddCommand(newRegistryValidateCmd())
	cmd.AddCommand(newRegistryExportCmd())
	cmd.AddCommand(newRegistryUpdateCmd())
	return cmd
}

func newRegistryValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a registry file for missing fields and duplicate task types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry %s is invalid: %w", path, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry %s (version %s) is valid\n", path, reg.Version)
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "  %-20s %-28s timeout=%s retries=%d\n", a.TaskType, a.ID, a.Timeout, a.Retries)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", defaultRegistryPath, "Path to registry file")
	return cmd
}

func newRegistryExportCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in activity definitions to a registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.DefaultRegistry()
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d activities to %s\n", len(reg.Activities), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", defaultRegistryPath, "Destination path")
	return cmd
}

func newRegistryUpdateCmd() *cobra.Command {
	var path, id, field, value string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set one field of an activity (version, displayName, description, category, taskType, timeout, retries)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.SetField(id, field, value); err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("update leaves registry invalid: %w", err)
			}
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.%s = %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", defaultRegistryPath, "Path to registry file")
	cmd.Flags().StringVar(&id, "id", "", "Activity ID")
	cmd.Flags().StringVar(&field, "field", "", "Field to update")
	cmd.Flags().StringVar(&value, "value", "", "New value")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

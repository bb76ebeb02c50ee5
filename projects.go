package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	projectsCmd = &cobra.Command{
		Use:   "projects",
		Short: "Manage projects and their saves",
	}

	projectsListCmd = &cobra.Command{
		Use:   "list [project]",
		Short: "List projects, or the saves of one project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProjectsList,
	}

	projectsNewCmd = &cobra.Command{
		Use:   "new <project>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectsNew,
	}

	projectsRenameCmd = &cobra.Command{
		Use:   "rename <project> [save] <name>",
		Short: "Rename a project, or give one of its saves a name",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runProjectsRename,
	}

	projectsDeleteCmd = &cobra.Command{
		Use:   "delete <project> [save]",
		Short: "Delete a project, or one of its saves",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runProjectsDelete,
	}
)

func init() {
	projectsCmd.AddCommand(projectsListCmd, projectsNewCmd, projectsRenameCmd, projectsDeleteCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	store, err := projectStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		saves, err := store.ListSaves(args[0])
		if err != nil {
			return err
		}
		for _, s := range saves {
			fmt.Fprintf(out, "%s  %-4s  %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Format, s.Filename)
		}
		return nil
	}

	projects, err := store.ListProjects()
	if err != nil {
		return err
	}
	for _, name := range projects {
		saves, err := store.ListSaves(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == cfg.UI.LastProject {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s (%d saves)\n", marker, name, len(saves))
	}
	return nil
}

func runProjectsNew(cmd *cobra.Command, args []string) error {
	store, err := projectStore()
	if err != nil {
		return err
	}
	if err := store.CreateProject(args[0]); err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
	return nil
}

func runProjectsRename(cmd *cobra.Command, args []string) error {
	store, err := projectStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 3 {
		filename, err := store.RenameSave(args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("rename save: %w", err)
		}
		fmt.Fprintf(out, "renamed %s/%s to %s\n", args[0], args[1], filename)
		return nil
	}

	if err := store.RenameProject(args[0], args[1]); err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	if cfg.UI.LastProject == args[0] {
		cfg.UI.LastProject = args[1]
		if err := saveConfig(); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "renamed %s to %s\n", args[0], args[1])
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	store, err := projectStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		if err := store.DeleteSave(args[0], args[1]); err != nil {
			return fmt.Errorf("delete save: %w", err)
		}
		fmt.Fprintf(out, "deleted %s/%s\n", args[0], args[1])
		return nil
	}

	if err := store.DeleteProject(args[0]); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	fmt.Fprintf(out, "deleted %s\n", args[0])
	return nil
}

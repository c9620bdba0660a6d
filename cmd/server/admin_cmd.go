package main

import (
	"fmt"
	"strconv"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	userPassword        string
	categoryDescription string
	categoryHidden      bool
	locationHidden      bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := service.NewUserService(db.DB).Register(args[0], userPassword)
		if err != nil {
			return err
		}
		logger.Info("user created", zap.Uint("id", user.ID), zap.String("username", user.Username))
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user together with their posts and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewUserService(db.DB).Delete(args[0]); err != nil {
			return err
		}
		logger.Info("user deleted", zap.String("username", args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
		return nil
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage post categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <slug> <title>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := service.NewCategoryService(db.DB).Create(service.CategoryInput{
			Slug:        args[0],
			Title:       args[1],
			Description: categoryDescription,
			IsPublished: !categoryHidden,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created category %s (id %d)\n", category.Slug, category.ID)
		return nil
	},
}

var categoryPublishCmd = &cobra.Command{
	Use:   "publish <slug> <true|false>",
	Short: "Publish or hide a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		published, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid publish flag %q: %w", args[1], err)
		}
		if err := service.NewCategoryService(db.DB).SetPublished(args[0], published); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "category %s published=%t\n", args[0], published)
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a category; its posts lose their category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.NewCategoryService(db.DB).Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
		return nil
	},
}

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage post locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location, err := service.NewLocationService(db.DB).Create(args[0], !locationHidden)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created location %s (id %d)\n", location.Name, location.ID)
		return nil
	},
}

var locationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a location; its posts lose their location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid location id %q: %w", args[0], err)
		}
		if err := service.NewLocationService(db.DB).Delete(uint(id)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted location %d\n", id)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Password for the new account")
	_ = userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd, userDeleteCmd)

	categoryAddCmd.Flags().StringVarP(&categoryDescription, "description", "d", "", "Category description")
	categoryAddCmd.Flags().BoolVar(&categoryHidden, "hidden", false, "Create the category unpublished")
	categoryCmd.AddCommand(categoryAddCmd, categoryPublishCmd, categoryDeleteCmd)

	locationAddCmd.Flags().BoolVar(&locationHidden, "hidden", false, "Create the location unpublished")
	locationCmd.AddCommand(locationAddCmd, locationDeleteCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"terminal-terrace/edustream/internal/logging"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/rbac"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const appName = "policyctl"

func rootCmd(open storeOpener) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Content moderation and role permission tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	newLogger := func(cmd *cobra.Command) zerolog.Logger {
		logger, err := logging.New().
			FromBuffer(cmd.ErrOrStderr()).
			Level(logLevel).
			Format("text").
			With("service", appName).
			Make()
		if err != nil {
			return zerolog.Nop()
		}
		return logger.Logger
	}

	cmd.AddCommand(moderateCmd())
	cmd.AddCommand(checkCmd(open, newLogger))
	cmd.AddCommand(rolesCmd(open, newLogger))
	return cmd
}

func moderateCmd() *cobra.Command {
	var (
		title       string
		description string
		kind        string
		policyPath  string
	)

	cmd := &cobra.Command{
		Use:   "moderate",
		Short: "Evaluate a title and description against the keyword policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentKind, err := moderation.ParseContentKind(kind)
			if err != nil {
				return err
			}

			policy := moderation.DefaultPolicy()
			if policyPath != "" {
				if policy, err = moderation.LoadPolicyFile(policyPath); err != nil {
					return err
				}
			}

			verdict := moderation.NewModerator(policy).Evaluate(moderation.ContentSubmission{
				Title:       title,
				Description: description,
				Kind:        contentKind,
			})
			return writeJSON(cmd.OutOrStdout(), verdict)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Content title")
	cmd.Flags().StringVar(&description, "description", "", "Content description")
	cmd.Flags().StringVar(&kind, "kind", string(moderation.KindVideo), "Content kind (video, article)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML policy file with sensitiveTerms and culturalExceptions")
	return cmd
}

func checkCmd(open storeOpener, newLogger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var (
		configPath string
		userFlag   string
		permission string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a user holds a permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			store, closeStore, err := open(configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			resolver := rbac.NewResolver(store, rbac.WithCacheTTL(0), rbac.WithLogger(newLogger(cmd)))
			allowed, err := resolver.Check(cmd.Context(), userID, permission)
			if err != nil {
				if rbac.IsUnverified(err) {
					return fmt.Errorf("%s: %w", rbac.UnverifiedMessage, err)
				}
				return err
			}

			result := "denied"
			if allowed {
				result = "allowed"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", userID, permission, result)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	cmd.Flags().StringVar(&userFlag, "user", "", "User id")
	cmd.Flags().StringVar(&permission, "permission", "", "Permission name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("permission")
	return cmd
}

func rolesCmd(open storeOpener, newLogger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var (
		configPath string
		userFlag   string
	)

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Print a user's roles and effective permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			store, closeStore, err := open(configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			resolver := rbac.NewResolver(store, rbac.WithCacheTTL(0), rbac.WithLogger(newLogger(cmd)))
			snap, err := resolver.Resolve(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("%s: %w", rbac.UnverifiedMessage, err)
			}

			roles := make([]string, 0, snap.Roles.Len())
			for _, r := range snap.Roles.Slice() {
				roles = append(roles, r.String())
			}
			perms := make([]string, 0, snap.Permissions.Len())
			for _, p := range snap.Permissions.Names() {
				perms = append(perms, p.String())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:        %s\n", userID)
			fmt.Fprintf(out, "roles:       %s\n", strings.Join(roles, ", "))
			fmt.Fprintf(out, "permissions: %s\n", strings.Join(perms, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	cmd.Flags().StringVar(&userFlag, "user", "", "User id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create, list, and change the role of user accounts without going through the HTTP API.",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserGrantCmd())
	cmd.AddCommand(newUserRevokeCmd())

	return cmd
}

// ---------- user create ----------

func newUserCreateCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
		admin    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user account",
		Example: `  hearth user create --username alice --email alice@example.com --admin
  hearth user create --username alice --email alice@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(username, email, password, admin)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runUserCreate(username, email, password string, admin bool) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := auth.NewService(st, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	ctx := context.Background()

	acct, err := svc.Register(ctx, username, email, password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("username or email already exists")
		}
		return err
	}

	if admin {
		if _, err := st.SetAdmin(ctx, acct.Username, true); err != nil {
			return fmt.Errorf("account created but granting admin failed: %w", err)
		}
	}

	role := "user"
	if admin {
		role = "admin"
	}
	fmt.Printf("Created %s %q (%s)\n", role, acct.Username, acct.Email)
	return nil
}

// ---------- user list ----------

func newUserListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runUserList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(accounts)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts yet. Use 'hearth user create' to create one.")
		return nil
	}

	fmt.Printf("%-20s %-30s %-8s %-20s\n", "USERNAME", "EMAIL", "ADMIN", "CREATED")
	fmt.Printf("%-20s %-30s %-8s %-20s\n", "--------", "-----", "-----", "-------")
	for _, a := range accounts {
		isAdmin := "no"
		if a.IsAdmin {
			isAdmin = "yes"
		}
		fmt.Printf("%-20s %-30s %-8s %-20s\n", a.Username, a.Email, isAdmin, a.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// ---------- user grant / revoke ----------

func newUserGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <username>...",
		Short: "Grant the admin role to one or more accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetAdmin(args, true)
		},
	}
}

func newUserRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <username>...",
		Short: "Revoke the admin role from one or more accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetAdmin(args, false)
		},
	}
}

func runUserSetAdmin(usernames []string, grant bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := auth.NewService(st, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	res := svc.SetAdminBatch(context.Background(), usernames, grant)

	verb := "Granted admin to"
	if !grant {
		verb = "Revoked admin from"
	}
	fmt.Printf("%s %d account(s)\n", verb, res.Updated)
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Username, f.Reason)
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("%d account(s) could not be updated", len(res.Failures))
	}
	return nil
}

package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/store"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"u", "users"},
	Short:   "Inspect users and change passwords",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <number> <password>",
	Short: "Set a user's password",
	Long:  `Set the password of the user with the given number. Existing sessions stay valid until they expire.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runUserPasswd,
}

func runUserList(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	users, err := store.New(db).ListUsers(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found. Run \"lab-roster init\" first.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NUMBER\tUSERNAME\tROLE")
	fmt.Fprintln(w, "------\t--------\t----")
	for _, user := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\n", user.Number, user.Username, user.Role.Name)
	}

	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("user number must be an integer: %q", args[0])
	}
	password := args[1]
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	hash, err := auth.BcryptHasher{}.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := store.New(db).UpdatePassword(cmd.Context(), number, hash); err != nil {
		if store.IsNotFound(err) {
			return fmt.Errorf("no user with number %d", number)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	logger.Info("Password changed", "number", number)
	fmt.Fprintf(cmd.OutOrStdout(), "Password for user %d updated.\n", number)
	return nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userPasswdCmd)
}

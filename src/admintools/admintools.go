package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.nextdev.network/nextdev/nextdev/src/auth"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/website"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	createUserCommand := &cobra.Command{
		Use:   "createuser [username] [password]",
		Short: "Creates a new user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := args[1]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			exists, err := nddata.UserExists(ctx, conn, username)
			if err != nil {
				panic(err)
			}
			if exists {
				fmt.Printf("%s already exists. Please pick a different username.\n\n", username)
				os.Exit(1)
			}

			hashedPassword := auth.HashPassword(password)
			user, err := nddata.CreateUser(ctx, conn, username, hashedPassword.String(), models.RoleUser)
			if err != nil {
				panic(err)
			}

			fmt.Printf("New user added!\nID: %d\nUsername: %s\n", user.ID, user.Username)
			fmt.Printf("You can promote the user with the 'setrole' command as follows:\n")
			fmt.Printf("setrole %s admin\n", username)
		},
	}
	adminCommand.AddCommand(createUserCommand)

	createAdminCommand := &cobra.Command{
		Use:   "createadmin [username] [password]",
		Short: "Creates a new admin user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := args[1]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			exists, err := nddata.UserExists(ctx, conn, username)
			if err != nil {
				panic(err)
			}
			if exists {
				fmt.Printf("%s already exists. Please pick a different username.\n\n", username)
				os.Exit(1)
			}

			hashedPassword := auth.HashPassword(password)
			user, err := nddata.CreateUser(ctx, conn, username, hashedPassword.String(), models.RoleAdmin)
			if err != nil {
				panic(err)
			}

			fmt.Printf("New admin added!\nID: %d\nUsername: %s\n", user.ID, user.Username)
		},
	}
	adminCommand.AddCommand(createAdminCommand)

	seedTestUsersCommand := &cobra.Command{
		Use:   "seedtestusers",
		Short: "Creates a batch of test accounts (password \"password123\")",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			testUsers := []struct {
				username string
				role     models.UserRole
			}{
				{"test_admin", models.RoleAdmin},
				{"test_mod", models.RoleModerator},
				{"test_user1", models.RoleUser},
				{"test_user2", models.RoleUser},
				{"test_user3", models.RoleUser},
			}

			for _, tu := range testUsers {
				exists, err := nddata.UserExists(ctx, conn, tu.username)
				if err != nil {
					panic(err)
				}
				if exists {
					fmt.Printf("%s already exists, skipping\n", tu.username)
					continue
				}

				hashedPassword := auth.HashPassword("password123")
				user, err := nddata.CreateUser(ctx, conn, tu.username, hashedPassword.String(), tu.role)
				if err != nil {
					panic(err)
				}
				fmt.Printf("Created %s (%s)\n", user.Username, user.Role)
			}
		},
	}
	adminCommand.AddCommand(seedTestUsersCommand)

	setPasswordCommand := &cobra.Command{
		Use:   "setpassword [username] [new password]",
		Short: "Replace a user's password",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := args[1]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, username)

			hashedPassword := auth.HashPassword(password)
			err := nddata.SetUserPassword(ctx, conn, user.ID, hashedPassword.String())
			if err != nil {
				panic(err)
			}

			fmt.Printf("Successfully updated password for '%s'\n", user.Username)
		},
	}
	adminCommand.AddCommand(setPasswordCommand)

	setRoleCommand := &cobra.Command{
		Use:   "setrole [username] [user/moderator/admin]",
		Short: "Set a user's role manually",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a role.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			var role models.UserRole
			switch args[1] {
			case "user":
				role = models.RoleUser
			case "moderator":
				role = models.RoleModerator
			case "admin":
				role = models.RoleAdmin
			default:
				fmt.Printf("Unknown role '%s'.\n\n", args[1])
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, username)

			err := nddata.SetUserRole(ctx, conn, user.ID, role)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Successfully set %s's role to %s\n\n", user.Username, role)
		},
	}
	adminCommand.AddCommand(setRoleCommand)

	banUserCommand := &cobra.Command{
		Use:   "banuser [username] [true/false]",
		Short: "Toggle a user's ban",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and 'true' or 'false'.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			banned := args[1] == "true"

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, username)

			err := nddata.SetUserBanned(ctx, conn, user.ID, banned)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Successfully set %s's is_banned to %v\n\n", user.Username, banned)
		},
	}
	adminCommand.AddCommand(banUserCommand)

	removeUserCommand := &cobra.Command{
		Use:   "removeuser [username]",
		Short: "Delete a user and all of their content",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, username)

			err := nddata.DeleteUser(ctx, conn, user.ID)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Deleted %s and all of their posts, comments, ratings, and messages.\n\n", user.Username)
		},
	}
	adminCommand.AddCommand(removeUserCommand)
}

func mustFetchUser(ctx context.Context, conn db.ConnOrTx, username string) *models.User {
	user, err := nddata.FetchUserByUsername(ctx, conn, username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			fmt.Printf("User '%s' not found\n", username)
			os.Exit(1)
		}
		panic(err)
	}
	return user
}

package migration

import (
	"context"
	"fmt"
	"math/rand"

	"git.nextdev.network/nextdev/nextdev/src/auth"
	"git.nextdev.network/nextdev/nextdev/src/config"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/nddata"
	"git.nextdev.network/nextdev/nextdev/src/utils"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/tracelog"
)

// Creates only what's necessary to get the site running. Not really very
// useful for local dev on its own; sample data makes things a lot better.
func BareMinimumSeed() {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	fmt.Println("Creating admin user (\"admin\"/\"password123\")...")
	seedUser(ctx, conn, "admin", models.RoleAdmin)
}

// Seeds the database with sample data for local dev.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	fmt.Println("Creating a moderator (\"mod\"/\"password123\")...")
	mod := seedUser(ctx, conn, "mod", models.RoleModerator)

	fmt.Println("Creating normal users (all with password \"password123\")...")
	alice := seedUser(ctx, conn, "alice", models.RoleUser)
	bob := seedUser(ctx, conn, "bob", models.RoleUser)
	charlie := seedUser(ctx, conn, "charlie", models.RoleUser)
	users := []*models.User{mod, alice, bob, charlie}

	fmt.Println("Creating a banned spammer...")
	spammer := seedUser(ctx, conn, "hot_singletons", models.RoleUser)
	utils.Must(nddata.SetUserBanned(ctx, conn, spammer.ID, true))

	fmt.Println("Creating tags...")
	var tagIDs []int
	for _, name := range []string{"golang", "postgres", "webdev", "gamedev", "offtopic"} {
		tag := utils.Must1(nddata.CreateTag(ctx, conn, name))
		tagIDs = append(tagIDs, tag.ID)
	}

	fmt.Println("Creating posts, comments, and ratings...")
	for i := 0; i < 20; i++ {
		author := users[rand.Intn(len(users))]
		post := utils.Must1(nddata.CreatePost(ctx, conn,
			lorem.Sentence(3, 8),
			lorem.Paragraph(2, 5),
			author.ID,
			randomTags(tagIDs),
		))

		var commentIDs []int
		for c := 0; c < rand.Intn(6); c++ {
			commenter := users[rand.Intn(len(users))]
			var parentID *int
			if len(commentIDs) > 0 && randomBool() {
				parentID = &commentIDs[rand.Intn(len(commentIDs))]
			}
			comment := utils.Must1(nddata.CreateComment(ctx, conn, post.ID, commenter.ID, parentID, lorem.Sentence(4, 20)))
			commentIDs = append(commentIDs, comment.ID)
		}

		for _, rater := range users {
			if rater.ID == author.ID || randomBool() {
				continue
			}
			utils.Must(nddata.SetRating(ctx, conn, rater.ID, post.ID, rand.Intn(4) > 0))
		}

		for v := 0; v < rand.Intn(50); v++ {
			utils.Must1(nddata.IncrementPostViews(ctx, conn, post.ID))
		}
	}

	fmt.Println("Creating private messages...")
	for i := 0; i < 10; i++ {
		sender := users[rand.Intn(len(users))]
		recipient := users[rand.Intn(len(users))]
		if sender.ID == recipient.ID {
			continue
		}
		utils.Must1(nddata.SendMessage(ctx, conn, sender.ID, recipient.ID, lorem.Sentence(3, 15)))
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, username string, role models.UserRole) *models.User {
	hashed := auth.HashPassword("password123")
	return utils.Must1(nddata.CreateUser(ctx, conn, username, hashed.String(), role))
}

func randomTags(tagIDs []int) []int {
	var picked []int
	for _, id := range tagIDs {
		if rand.Intn(3) == 0 {
			picked = append(picked, id)
		}
	}
	return picked
}

func randomBool() bool {
	return rand.Intn(2) == 1
}

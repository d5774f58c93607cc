// Seed tool: fills the blog schema with synthetic users, posts and comments.
// A share of posts is left without comments so deletes of commentless posts
// can be exercised against real data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/iliyamo/postboard/internal/config"
	"github.com/iliyamo/postboard/internal/database"
	"github.com/iliyamo/postboard/internal/logging"
	"github.com/iliyamo/postboard/internal/seed"
)

func main() {
	var opts seed.Options
	var batch int
	var migrate bool
	flag.IntVar(&opts.Users, "users", 50, "number of users")
	flag.IntVar(&opts.PostsPerUser, "posts-per-user", 5, "posts per user")
	flag.IntVar(&opts.MaxComments, "max-comments", 4, "maximum comments on a commented post")
	flag.Float64Var(&opts.Commentless, "commentless", 0.2, "fraction of posts without comments")
	flag.Float64Var(&opts.WithAddress, "with-address", 0.7, "fraction of users with an address")
	flag.StringVar(&opts.Password, "password", "password", "plain password for every seeded user")
	flag.IntVar(&opts.BcryptCost, "bcrypt-cost", 10, "bcrypt cost")
	flag.IntVar(&opts.ContentSize, "content-size", 120, "post content size in characters")
	flag.StringVar(&opts.AdminEmail, "admin-email", "admin@example.com", "email of the seeded ADMIN user (empty for none)")
	flag.IntVar(&batch, "batch", 500, "rows per insert statement")
	flag.BoolVar(&migrate, "migrate", true, "apply pending migrations first")
	flag.Parse()

	cfg := config.Load()
	logger := logging.Setup("postboard-seed", cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if migrate {
		if err := database.Migrate(ctx, db.DB, "up"); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	r := rand.New(rand.NewSource(start.UnixNano()))
	ds, err := seed.Generate(r, opts, start)
	if err != nil {
		logger.Error("generate failed", "error", err)
		os.Exit(1)
	}
	if err := seed.Insert(ctx, db, ds, batch); err != nil {
		logger.Error("insert failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeded",
		"addresses", len(ds.Addresses),
		"users", len(ds.Users),
		"posts", len(ds.Posts),
		"comments", len(ds.Comments),
		"took", time.Since(start).Truncate(time.Millisecond).String(),
	)
}

// Command seed fills the portal database with demo accounts and listings.
package main

import (
	"flag"
	"log"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numListings := flag.Int("listings", 40, "Number of listings to create per kind")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing (accounts cannot log in)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	maxDays := flag.Int("days", 90, "Spread creation dates over this many days")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d listings per kind, clean=%v\n", *numUsers, *numListings, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumListings: *numListings,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *fast,
		DryRun:      *dryRun,
		MaxDays:     *maxDays,
	}
	res, err := seed.NewSeeder(db, opts).Seed(opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if !*dryRun {
		if err := seed.Accounts(db, seed.DefaultPassword); err != nil {
			log.Fatalf("❌ Built-in account seeding failed: %v", err)
		}
	}

	log.Printf("✨ All done! %d users, %d approved properties.", len(res.Users), len(res.Approved))
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}

package seed

import (
	"fmt"
	"log"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumListings int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	MaxDays     int
}

// Distribution weights the moderation status of generated listings.
type Distribution struct {
	Approved int
	Pending  int
	Rejected int
}

var defaultDistribution = Distribution{Approved: 7, Pending: 2, Rejected: 1}

// computeCounts splits total by the weights of d. Rounding remainders go
// to the approved bucket.
func computeCounts(total int, d Distribution) (approved, pending, rejected int) {
	weight := d.Approved + d.Pending + d.Rejected
	if weight <= 0 || total <= 0 {
		return 0, 0, 0
	}
	pending = total * d.Pending / weight
	rejected = total * d.Rejected / weight
	approved = total - pending - rejected
	return approved, pending, rejected
}

// BuiltInAccount is a permanent account seeded on every environment.
type BuiltInAccount struct {
	Username string
	Email    string
	Role     models.Role
	District string
}

// BuiltInAccounts are the demo newsroom accounts.
var BuiltInAccounts = []BuiltInAccount{
	{Username: "newsdesk", Email: "newsdesk@portal.local", Role: models.RoleAdmin, District: "Ranchi"},
	{Username: "ranchi_reporter", Email: "ranchi.reporter@portal.local", Role: models.RoleReporter, District: "Ranchi"},
	{Username: "dhanbad_reporter", Email: "dhanbad.reporter@portal.local", Role: models.RoleReporter, District: "Dhanbad"},
}

// Accounts upserts the built-in accounts keyed by email. Existing
// passwords are left untouched.
func Accounts(db *gorm.DB, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash built-in password: %w", err)
	}
	for _, item := range BuiltInAccounts {
		user := models.User{
			Username: item.Username,
			Email:    item.Email,
			Password: string(hashed),
			Role:     item.Role,
			District: item.District,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "role", "district", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			return fmt.Errorf("seed built-in account %s: %w", item.Email, err)
		}
	}
	return nil
}

// Seeder fills the database with a realistic mix of accounts, listings
// and engagement.
type Seeder struct {
	db *gorm.DB
	f  *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, f: NewFactory(db, opts)}
}

// ClearAll empties every portal table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tables := []string{
		"comments", "property_inquiries", "property_amenities", "media_assets", "notifications",
		"news", "jobs", "events", "community_posts", "properties", "users",
	}
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Result summarizes one seeding run.
type Result struct {
	Users     []*models.User
	Admin     *models.User
	Listings  map[models.ContentKind]int
	Approved  []*models.Property
	Comments  int
	Inquiries int
}

// Seed creates users, listings of every kind and engagement on the
// approved ones.
func (s *Seeder) Seed(opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d listings per kind...", opts.NumUsers, opts.NumListings)
	if opts.ShouldClean && !opts.DryRun {
		if err := s.ClearAll(); err != nil {
			log.Printf("⚠️  Could not clear existing data: %v", err)
		}
	}

	res := &Result{Listings: make(map[models.ContentKind]int)}
	admin, err := s.f.CreateUser(models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	res.Admin = admin

	for i := 0; i < opts.NumUsers; i++ {
		role := models.RoleUser
		if i%5 == 0 {
			role = models.RoleReporter
		}
		user, err := s.f.CreateUser(role)
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		res.Users = append(res.Users, user)
	}
	if len(res.Users) == 0 {
		return nil, fmt.Errorf("no users created")
	}
	log.Printf("✓ %d users created", len(res.Users))

	if err := s.seedListings(res, opts.NumListings); err != nil {
		return nil, err
	}
	if err := s.seedEngagement(res); err != nil {
		return nil, err
	}
	log.Printf("🎉 Seeding completed: %d comments, %d inquiries", res.Comments, res.Inquiries)
	return res, nil
}

func (s *Seeder) seedListings(res *Result, perKind int) error {
	approved, pending, rejected := computeCounts(perKind, defaultDistribution)
	statuses := make([]models.ModerationStatus, 0, perKind)
	for i := 0; i < approved; i++ {
		statuses = append(statuses, models.StatusApproved)
	}
	for i := 0; i < pending; i++ {
		statuses = append(statuses, models.StatusPending)
	}
	for i := 0; i < rejected; i++ {
		statuses = append(statuses, models.StatusRejected)
	}

	for i, status := range statuses {
		author := res.Users[i%len(res.Users)]
		mod := res.Admin.ID
		builders := []struct {
			kind  models.ContentKind
			build func() any
		}{
			{models.KindNews, func() any { return s.f.BuildNews(author, status, mod) }},
			{models.KindJob, func() any { return s.f.BuildJob(author, status, mod) }},
			{models.KindEvent, func() any { return s.f.BuildEvent(author, status, mod) }},
			{models.KindCommunityPost, func() any { return s.f.BuildCommunityPost(author, status, mod) }},
			{models.KindProperty, func() any { return s.f.BuildProperty(author, status, mod) }},
		}
		for _, b := range builders {
			item := b.build()
			if err := s.f.persist(item, "Create "+string(b.kind)); err != nil {
				return fmt.Errorf("failed to create %s: %w", b.kind, err)
			}
			res.Listings[b.kind]++
			if p, ok := item.(*models.Property); ok && status == models.StatusApproved {
				res.Approved = append(res.Approved, p)
			}
		}
	}
	log.Printf("✓ listings created: %v", res.Listings)
	return nil
}

func (s *Seeder) seedEngagement(res *Result) error {
	for i, property := range res.Approved {
		for j := 0; j < 3 && j < len(res.Users); j++ {
			user := res.Users[(i+j+1)%len(res.Users)]
			if user.ID == property.AuthorID {
				continue
			}
			if _, err := s.f.CreateInquiry(user, property); err != nil {
				return fmt.Errorf("failed to create inquiry: %w", err)
			}
			res.Inquiries++
			if _, err := s.f.CreateComment(user, models.KindProperty, property.ID); err != nil {
				return fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++
		}
	}
	return nil
}

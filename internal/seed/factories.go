// Package seed provides helpers to create demo data for the portal
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "Password123!"

// Districts are the Jharkhand districts listings are spread across.
var Districts = []string{
	"Ranchi", "Dhanbad", "Jamshedpur", "Bokaro", "Deoghar", "Hazaribagh",
	"Giridih", "Ramgarh", "Dumka", "Palamu",
}

var (
	newsCategories = []string{"politics", "weather", "sports", "education", "business", "health"}
	jobTypes       = []string{"FULL_TIME", "PART_TIME", "CONTRACT", "INTERNSHIP"}
	propertyTypes  = []string{
		models.PropertyTypeApartment, models.PropertyTypeHouse, models.PropertyTypeVilla,
		models.PropertyTypePlot, models.PropertyTypeCommercial, models.PropertyTypePG,
	}
	furnishings = []string{models.FurnishingFull, models.FurnishingSemi, models.FurnishingNone}
	posters     = []string{models.PostedByOwner, models.PostedByAgent, models.PostedByBuilder}
	amenities   = []string{"parking", "lift", "power backup", "security", "gym", "garden", "water supply"}
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	r    *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID  uint
	userSeq int
	hashed  string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	f := &Factory{
		db:     db,
		opts:   opts,
		r:      rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
	if opts.SkipBcrypt {
		f.hashed = DefaultPassword
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.hashed = string(hashed)
	}
	return f
}

func (f *Factory) pick(values []string) string {
	return values[f.r.Intn(len(values))]
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.r.Intn(maxDays))*24*time.Hour +
		time.Duration(f.r.Intn(24))*time.Hour +
		time.Duration(f.r.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(value any, describe string) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] %s (no DB write)", describe)
		return nil
	}
	return f.db.Create(value).Error
}

// CreateUser constructs and persists a sample account with role.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	f.userSeq++
	username := fmt.Sprintf("%s%d", gofakeit.Username(), f.userSeq)
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.hashed,
		Role:     role,
		Phone:    fmt.Sprintf("9%09d", f.r.Intn(1_000_000_000)),
		District: f.pick(Districts),
	}
	for _, override := range overrides {
		override(user)
	}
	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
	}
	if err := f.persist(user, "CreateUser "+user.Username); err != nil {
		return nil, err
	}
	return user, nil
}

// base fills the shared listing fields. Approved and rejected listings
// are attributed to moderator.
func (f *Factory) base(author *models.User, title string, status models.ModerationStatus, moderator uint) models.ListingBase {
	created := f.createdAt()
	b := models.ListingBase{
		Title:     title,
		Slug:      slug.Make(title),
		AuthorID:  author.ID,
		Status:    status,
		State:     "Jharkhand",
		District:  f.pick(Districts),
		City:      gofakeit.City(),
		CreatedAt: created,
	}
	if status != models.StatusPending {
		at := created.Add(time.Duration(f.r.Intn(48)+1) * time.Hour)
		b.ModeratedBy = &moderator
		b.ModeratedAt = &at
	}
	if status == models.StatusRejected {
		b.RejectionReason = "Duplicate submission"
	}
	return b
}

func (f *Factory) gallery(kind models.ContentKind, n int) []models.MediaAsset {
	media := make([]models.MediaAsset, 0, n)
	for i := 0; i < n; i++ {
		media = append(media, models.MediaAsset{
			Role:     models.MediaRoleImage,
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s-%s/800/600", kind, gofakeit.UUID()),
			Position: i,
		})
	}
	return media
}

// BuildNews constructs an unsaved news article.
func (f *Factory) BuildNews(author *models.User, status models.ModerationStatus, moderator uint) *models.News {
	return &models.News{
		ListingBase: f.base(author, gofakeit.Sentence(6), status, moderator),
		Content:     gofakeit.Paragraph(2, 4, 12, "\n\n"),
		Category:    f.pick(newsCategories),
		Media:       f.gallery(models.KindNews, f.r.Intn(3)),
	}
}

// BuildJob constructs an unsaved job posting with at least one image.
func (f *Factory) BuildJob(author *models.User, status models.ModerationStatus, moderator uint) *models.Job {
	deadline := time.Now().AddDate(0, 0, f.r.Intn(60)+7)
	return &models.Job{
		ListingBase: f.base(author, gofakeit.JobTitle()+" at "+gofakeit.Company(), status, moderator),
		Description: gofakeit.Paragraph(1, 3, 10, "\n"),
		Company:     gofakeit.Company(),
		JobType:     f.pick(jobTypes),
		Salary:      fmt.Sprintf("%d - %d LPA", f.r.Intn(5)+2, f.r.Intn(10)+8),
		Deadline:    &deadline,
		Media:       f.gallery(models.KindJob, f.r.Intn(2)+1),
	}
}

// BuildEvent constructs an unsaved event a few weeks out.
func (f *Factory) BuildEvent(author *models.User, status models.ModerationStatus, moderator uint) *models.Event {
	starts := time.Now().AddDate(0, 0, f.r.Intn(30)+1)
	ends := starts.Add(time.Duration(f.r.Intn(6)+2) * time.Hour)
	return &models.Event{
		ListingBase: f.base(author, gofakeit.HipsterSentence(4), status, moderator),
		Description: gofakeit.Paragraph(1, 3, 10, "\n"),
		Venue:       gofakeit.Street(),
		StartsAt:    &starts,
		EndsAt:      &ends,
		Media:       f.gallery(models.KindEvent, f.r.Intn(3)),
	}
}

// BuildCommunityPost constructs an unsaved community board post.
func (f *Factory) BuildCommunityPost(author *models.User, status models.ModerationStatus, moderator uint) *models.CommunityPost {
	return &models.CommunityPost{
		ListingBase: f.base(author, gofakeit.Question(), status, moderator),
		Content:     gofakeit.Paragraph(1, 2, 12, "\n"),
		Media:       f.gallery(models.KindCommunityPost, f.r.Intn(2)),
	}
}

// BuildProperty constructs an unsaved sale or rental property.
func (f *Factory) BuildProperty(author *models.User, status models.ModerationStatus, moderator uint) *models.Property {
	ptype := f.pick(propertyTypes)
	p := &models.Property{
		ListingBase:      f.base(author, fmt.Sprintf("%d BHK %s in %s", f.r.Intn(4)+1, ptype, gofakeit.Street()), status, moderator),
		Description:      gofakeit.Paragraph(1, 3, 12, "\n"),
		PropertyType:     ptype,
		PropertyStatus:   models.PropertyForSale,
		Area:             float64(f.r.Intn(2500) + 350),
		Bedrooms:         f.r.Intn(4) + 1,
		Bathrooms:        f.r.Intn(3) + 1,
		Furnishing:       f.pick(furnishings),
		PostedByType:     f.pick(posters),
		Availability:     "READY_TO_MOVE",
		ParkingAvailable: f.r.Intn(2) == 0,
		Locality:         gofakeit.Street(),
		ContactPhone:     author.Phone,
		Media:            f.gallery(models.KindProperty, f.r.Intn(4)+1),
	}
	if f.r.Intn(3) == 0 {
		p.PropertyStatus = models.PropertyForRent
		p.Price = float64((f.r.Intn(40) + 5) * 1000)
	} else {
		p.Price = float64((f.r.Intn(150) + 15) * 100000)
	}
	n := f.r.Intn(len(amenities))
	p.SetAmenities(amenities[:n])
	return p
}

// CreateComment persists a comment by user on listing (kind, id).
func (f *Factory) CreateComment(user *models.User, kind models.ContentKind, id uint) (*models.Comment, error) {
	comment := &models.Comment{Content: gofakeit.Sentence(10), UserID: user.ID}
	if err := comment.SetTarget(kind, id); err != nil {
		return nil, err
	}
	if err := f.persist(comment, fmt.Sprintf("CreateComment %s/%d", kind, id)); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateInquiry persists an inquiry by user on property. Half of them
// stop at the click phase.
func (f *Factory) CreateInquiry(user *models.User, property *models.Property) (*models.PropertyInquiry, error) {
	clicked := f.createdAt()
	inquiry := &models.PropertyInquiry{
		PropertyID: property.ID,
		UserID:     user.ID,
		Status:     models.InquiryClicked,
		ClickedAt:  clicked,
	}
	if f.r.Intn(2) == 0 {
		submitted := clicked.Add(time.Duration(f.r.Intn(30)+1) * time.Minute)
		inquiry.Status = models.InquiryNew
		inquiry.Phone = "+91" + user.Phone
		inquiry.Message = gofakeit.Sentence(12)
		inquiry.SubmittedAt = &submitted
	}
	if err := f.persist(inquiry, fmt.Sprintf("CreateInquiry property=%d user=%d", property.ID, user.ID)); err != nil {
		return nil, err
	}
	return inquiry, nil
}

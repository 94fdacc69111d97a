// Package service implements the moderation lifecycle and the portal's
// business operations on top of the repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/featureflags"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/media"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"

	"github.com/gosimple/slug"
)

// Notifier hands a notification off for asynchronous delivery. Notify must
// not block on delivery and never reports failure.
type Notifier interface {
	Notify(ctx context.Context, msg models.NotificationMessage)
}

// MediaStore uploads and deletes listing media.
type MediaStore interface {
	UploadMany(ctx context.Context, folder string, files []media.File) ([]media.Object, error)
	Delete(ctx context.Context, publicID string) error
}

// Upload is a batch of files for one media role, in upload order.
type Upload struct {
	Role  string
	Files []media.File
}

// MediaPolicy constrains the media a listing is created with.
type MediaPolicy struct {
	MinImages   int
	FloorPlans  bool
	MaxPerGroup int
}

// PolicyFor returns the media policy item is created under.
func PolicyFor(item models.Listing) MediaPolicy {
	p := MediaPolicy{MaxPerGroup: 10}
	if r, ok := item.(models.MediaRequirer); ok {
		p.MinImages = r.MinImages()
	}
	if item.Kind() == models.KindProperty {
		p.FloorPlans = true
		p.MaxPerGroup = 20
	}
	return p
}

func (p MediaPolicy) check(uploads []Upload) error {
	images := 0
	for _, u := range uploads {
		switch u.Role {
		case models.MediaRoleImage:
			images += len(u.Files)
		case models.MediaRoleFloorPlan:
			if !p.FloorPlans && len(u.Files) > 0 {
				return models.NewValidationError("floor plans are not accepted for this listing")
			}
		default:
			return models.NewValidationError("unknown media role " + u.Role)
		}
		if p.MaxPerGroup > 0 && len(u.Files) > p.MaxPerGroup {
			return models.NewValidationError(fmt.Sprintf("at most %d files per upload", p.MaxPerGroup))
		}
	}
	if images < p.MinImages {
		return models.NewValidationError(fmt.Sprintf("at least %d image(s) required", p.MinImages))
	}
	return nil
}

// LifecycleDeps are the collaborators of a Lifecycle.
type LifecycleDeps struct {
	Media    MediaStore
	Notifier Notifier
	Flags    *featureflags.Manager
	CacheTTL time.Duration
}

// Lifecycle drives one listing kind through create, approval, rejection and
// deletion. All five kinds share this implementation.
type Lifecycle[T models.Listing] struct {
	repo     repository.ListingRepository[T]
	kind     models.ContentKind
	media    MediaStore
	notifier Notifier
	flags    *featureflags.Manager
	cacheTTL time.Duration
	now      func() time.Time
}

// NewLifecycle returns the lifecycle manager of the kind stored in repo.
func NewLifecycle[T models.Listing](repo repository.ListingRepository[T], deps LifecycleDeps) *Lifecycle[T] {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Lifecycle[T]{
		repo:     repo,
		kind:     repo.Kind(),
		media:    deps.Media,
		notifier: deps.Notifier,
		flags:    deps.Flags,
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// Kind returns the content kind managed by l.
func (l *Lifecycle[T]) Kind() models.ContentKind { return l.kind }

// Create validates item, uploads its media and stores it. Admin authors
// publish immediately; everyone else waits for moderation.
func (l *Lifecycle[T]) Create(ctx context.Context, actor models.Actor, item T, uploads []Upload) (T, error) {
	var zero T
	if actor.ID == 0 {
		return zero, models.NewUnauthorizedError("Authentication required")
	}
	ctx, span := observability.GetTraceLayer().TraceLifecycle(ctx, string(l.kind), "create")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	base := item.Base()
	base.Title = strings.TrimSpace(base.Title)
	if err = item.Validate(); err != nil {
		return zero, err
	}
	if err = PolicyFor(item).check(uploads); err != nil {
		return zero, err
	}

	now := l.now()
	base.ID = 0
	base.AuthorID = actor.ID
	base.Slug = slug.Make(base.Title)
	base.RejectionReason = ""
	base.ModeratedBy, base.ModeratedAt = nil, nil
	base.Status = models.StatusPending
	if actor.IsAdmin() {
		base.Status = models.StatusApproved
		moderator := actor.ID
		base.ModeratedBy, base.ModeratedAt = &moderator, &now
	}

	assets, err := l.upload(ctx, base.Slug, uploads)
	if err != nil {
		return zero, err
	}
	item.SetMedia(assets)

	if err = l.repo.Create(ctx, item); err != nil {
		l.deleteMedia(ctx, assets)
		return zero, err
	}

	cache.InvalidateLists(ctx, string(l.kind))
	observability.LogTransition(ctx, string(l.kind), item.GetID(), "create", actor.ID,
		map[string]interface{}{"status": string(base.Status), "media": len(assets)})
	return item, nil
}

func (l *Lifecycle[T]) upload(ctx context.Context, listingSlug string, uploads []Upload) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	for _, u := range uploads {
		if len(u.Files) == 0 {
			continue
		}
		if l.media == nil {
			l.deleteMedia(ctx, assets)
			return nil, models.NewUpstreamError("Media storage is not configured", nil)
		}
		objs, err := l.media.UploadMany(ctx, media.Folder(l.kind, u.Role, listingSlug), u.Files)
		if err != nil {
			l.deleteMedia(ctx, assets)
			if models.ErrorCode(err) == models.CodeValidation {
				return nil, err
			}
			return nil, models.NewUpstreamError("Media upload failed", err)
		}
		for i, o := range objs {
			assets = append(assets, models.MediaAsset{
				OwnerType: l.repo.Schema().Table,
				Role:      u.Role,
				URL:       o.URL,
				PublicID:  o.PublicID,
				Position:  i,
			})
		}
	}
	return assets, nil
}

// deleteMedia removes stored objects by handle. Failures are logged and
// counted, never returned.
func (l *Lifecycle[T]) deleteMedia(ctx context.Context, assets []models.MediaAsset) {
	for _, a := range assets {
		if a.PublicID == "" {
			continue
		}
		if l.media == nil {
			observability.MediaDeleteFailures.WithLabelValues(string(l.kind)).Inc()
			continue
		}
		if err := l.media.Delete(ctx, a.PublicID); err != nil {
			observability.MediaDeleteFailures.WithLabelValues(string(l.kind)).Inc()
			middleware.Logger.WarnContext(ctx, "media deletion failed",
				slog.String("kind", string(l.kind)),
				slog.String("public_id", a.PublicID),
				slog.String("error", err.Error()))
		}
	}
}

// Get returns one listing. Listings awaiting or failing moderation are only
// visible to their author and to admins; to anyone else they do not exist.
func (l *Lifecycle[T]) Get(ctx context.Context, viewer models.Actor, id uint) (T, error) {
	var item T
	err := cache.Aside(ctx, cache.ListingKey(string(l.kind), id), &item, l.cacheTTL, func() error {
		found, err := l.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !canView(viewer, item.Base()) {
		var zero T
		return zero, models.NewNotFoundError(string(l.kind), id)
	}
	return item, nil
}

func canView(viewer models.Actor, b *models.ListingBase) bool {
	return b.IsApproved() || viewer.IsAdmin() || viewer.Owns(b.AuthorID)
}

// Visible reports NotFound unless viewer may see listing id.
func (l *Lifecycle[T]) Visible(ctx context.Context, viewer models.Actor, id uint) error {
	_, err := l.Get(ctx, viewer, id)
	return err
}

// Update lets the author change content fields through mutate. Identity,
// authorship, moderation state and media are preserved whatever mutate does.
func (l *Lifecycle[T]) Update(ctx context.Context, actor models.Actor, id uint, mutate func(T) error) (T, error) {
	var zero T
	item, err := l.repo.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	base := item.Base()
	if !actor.Owns(base.AuthorID) {
		return zero, models.NewForbiddenError("Only the author can edit this " + string(l.kind))
	}

	kept := *base
	mediaBefore := item.GetMedia()
	if err := mutate(item); err != nil {
		return zero, err
	}
	base = item.Base()
	title := strings.TrimSpace(base.Title)
	*base = models.ListingBase{
		ID:              kept.ID,
		Title:           title,
		Slug:            kept.Slug,
		AuthorID:        kept.AuthorID,
		Status:          kept.Status,
		RejectionReason: kept.RejectionReason,
		ModeratedBy:     kept.ModeratedBy,
		ModeratedAt:     kept.ModeratedAt,
		State:           base.State,
		District:        base.District,
		City:            base.City,
		CreatedAt:       kept.CreatedAt,
		UpdatedAt:       kept.UpdatedAt,
	}
	if title != kept.Title {
		base.Slug = slug.Make(title)
	}
	item.SetMedia(mediaBefore)

	if err := item.Validate(); err != nil {
		return zero, err
	}
	if err := l.repo.Save(ctx, item); err != nil {
		return zero, err
	}
	cache.InvalidateListing(ctx, string(l.kind), id)
	observability.LogTransition(ctx, string(l.kind), id, "update", actor.ID, nil)
	return item, nil
}

// Approve publishes a listing. Approving an approved listing is a no-op.
func (l *Lifecycle[T]) Approve(ctx context.Context, actor models.Actor, id uint) (T, error) {
	var zero T
	if !actor.IsAdmin() {
		return zero, models.NewForbiddenError("Only admins can approve content")
	}
	ctx, span := observability.GetTraceLayer().TraceLifecycle(ctx, string(l.kind), "approve")
	item, err := l.repo.FindByID(ctx, id)
	if err != nil {
		observability.EndSpan(span, err)
		return zero, err
	}
	base := item.Base()
	if base.Status == models.StatusApproved {
		observability.EndSpan(span, nil)
		return item, nil
	}

	if err := l.moderate(ctx, actor, base, models.StatusApproved, ""); err != nil {
		observability.EndSpan(span, err)
		return zero, err
	}
	observability.EndSpan(span, nil)

	l.notify(ctx, base, fmt.Sprintf("Your %s %q has been approved and is now live.", l.label(), base.Title), "Approved")
	return item, nil
}

// Reject hides a listing with a reason. Published listings cannot be
// rejected; they can only be deleted.
func (l *Lifecycle[T]) Reject(ctx context.Context, actor models.Actor, id uint, reason string) (T, error) {
	var zero T
	if !actor.IsAdmin() {
		return zero, models.NewForbiddenError("Only admins can reject content")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return zero, models.NewValidationError("rejection reason is required")
	}
	ctx, span := observability.GetTraceLayer().TraceLifecycle(ctx, string(l.kind), "reject")
	item, err := l.repo.FindByID(ctx, id)
	if err != nil {
		observability.EndSpan(span, err)
		return zero, err
	}
	base := item.Base()
	if base.Status == models.StatusApproved {
		err = models.NewValidationError("approved content cannot be rejected")
		observability.EndSpan(span, err)
		return zero, err
	}

	if err := l.moderate(ctx, actor, base, models.StatusRejected, reason); err != nil {
		observability.EndSpan(span, err)
		return zero, err
	}
	observability.EndSpan(span, nil)

	l.notify(ctx, base, fmt.Sprintf("Your %s %q was rejected: %s", l.label(), base.Title, reason), "Rejected")
	return item, nil
}

func (l *Lifecycle[T]) moderate(ctx context.Context, actor models.Actor, base *models.ListingBase, status models.ModerationStatus, reason string) error {
	now := l.now()
	moderator := actor.ID
	err := l.repo.UpdateFields(ctx, base.ID, map[string]interface{}{
		"status":           status,
		"rejection_reason": reason,
		"moderated_by":     moderator,
		"moderated_at":     now,
	})
	if err != nil {
		return err
	}
	from := base.Status
	base.Status, base.RejectionReason = status, reason
	base.ModeratedBy, base.ModeratedAt = &moderator, &now

	cache.InvalidateListing(ctx, string(l.kind), base.ID)
	observability.LogTransition(ctx, string(l.kind), base.ID, strings.ToLower(string(status)), actor.ID,
		map[string]interface{}{"from": string(from)})
	return nil
}

func (l *Lifecycle[T]) notify(ctx context.Context, base *models.ListingBase, message, title string) {
	if l.notifier == nil {
		return
	}
	ref := base.ID
	l.notifier.Notify(ctx, models.NotificationMessage{
		UserID:        base.AuthorID,
		Title:         title,
		Message:       message,
		ReferenceID:   &ref,
		ReferenceType: string(l.kind),
	})
}

func (l *Lifecycle[T]) label() string {
	return strings.ReplaceAll(string(l.kind), "_", " ")
}

// Delete removes a listing with its comments and media rows, then deletes
// the stored media objects best-effort. Only the author or an admin may
// delete; anyone else leaves the store untouched.
func (l *Lifecycle[T]) Delete(ctx context.Context, actor models.Actor, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceLifecycle(ctx, string(l.kind), "delete")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	item, err := l.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	base := item.Base()
	if !actor.IsAdmin() && !actor.Owns(base.AuthorID) {
		err = models.NewForbiddenError("Only the author or an admin can delete this " + l.label())
		return err
	}

	if err = l.repo.Delete(ctx, id); err != nil {
		return err
	}
	l.deleteMedia(ctx, item.GetMedia())

	cache.InvalidateListing(ctx, string(l.kind), id)
	observability.LogTransition(ctx, string(l.kind), id, "delete", actor.ID,
		map[string]interface{}{"status": string(base.Status), "media": len(item.GetMedia())})
	return nil
}

// ListApproved returns a page of published listings, newest first.
func (l *Lifecycle[T]) ListApproved(ctx context.Context, page, size int) (filter.Page[T], error) {
	return l.search(ctx, filter.Approved(page, size))
}

// ListPending returns the moderation queue, oldest first. Admin only.
func (l *Lifecycle[T]) ListPending(ctx context.Context, actor models.Actor, page, size int) (filter.Page[T], error) {
	if !actor.IsAdmin() {
		return filter.Page[T]{}, models.NewForbiddenError("Only admins can view pending content")
	}
	q := filter.NewQuery(page, size, filter.Predicate{Field: filter.FieldStatus, Op: filter.OpEq, Value: string(models.StatusPending)})
	q.Sort.Desc = false
	return l.page(ctx, q)
}

// ListByAuthor returns an author's listings. The author and admins see
// every status; other viewers only published listings.
func (l *Lifecycle[T]) ListByAuthor(ctx context.Context, viewer models.Actor, authorID uint, page, size int) (filter.Page[T], error) {
	preds := []filter.Predicate{{Field: filter.FieldAuthor, Op: filter.OpEq, Value: authorID}}
	if !viewer.IsAdmin() && !viewer.Owns(authorID) {
		preds = append(preds, filter.Predicate{Field: filter.FieldStatus, Op: filter.OpEq, Value: string(models.StatusApproved)})
	}
	return l.page(ctx, filter.NewQuery(page, size, preds...))
}

// Search compiles req and returns the matching page of published listings.
func (l *Lifecycle[T]) Search(ctx context.Context, req filter.Request) (filter.Page[T], error) {
	q, err := filter.Compile(req, l.repo.Schema())
	if err != nil {
		return filter.Page[T]{}, err
	}
	return l.search(ctx, q)
}

// search runs a public query, served from the search cache when enabled.
func (l *Lifecycle[T]) search(ctx context.Context, q filter.Query) (filter.Page[T], error) {
	done := observability.TrackSearch(string(l.kind))
	ctx, span := observability.GetTraceLayer().TraceLifecycle(ctx, string(l.kind), "search")

	var (
		result  filter.Page[T]
		fetched bool
	)
	fetch := func() error {
		fetched = true
		p, err := l.page(ctx, q)
		if err != nil {
			return err
		}
		result = p
		return nil
	}

	var err error
	if l.flags.Enabled(featureflags.SearchCache, 0) {
		err = cache.Aside(ctx, cache.SearchKey(ctx, string(l.kind), q.Fingerprint()), &result, l.cacheTTL, fetch)
	} else {
		err = fetch()
	}
	observability.EndSpan(span, err)
	if err != nil {
		return filter.Page[T]{}, err
	}
	done(!fetched)
	return result, nil
}

func (l *Lifecycle[T]) page(ctx context.Context, q filter.Query) (filter.Page[T], error) {
	items, total, err := l.repo.FindAll(ctx, q)
	if err != nil {
		return filter.Page[T]{}, err
	}
	return filter.NewPage(items, total, q), nil
}

// PurgeRejected deletes REJECTED listings last moderated before cutoff,
// at most limit of them, and returns how many were removed.
func (l *Lifecycle[T]) PurgeRejected(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	items, err := l.repo.FindRejectedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, item := range items {
		id := item.GetID()
		if err := l.repo.Delete(ctx, id); err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return removed, err
		}
		l.deleteMedia(ctx, item.GetMedia())
		cache.Invalidate(ctx, cache.ListingKey(string(l.kind), id))
		observability.LogTransition(ctx, string(l.kind), id, "purge", 0, nil)
		removed++
	}
	if removed > 0 {
		cache.InvalidateLists(ctx, string(l.kind))
	}
	return removed, nil
}

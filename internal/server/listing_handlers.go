package server

import (
	"context"
	"encoding/json"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// listingHandlers serves the routes shared by every listing kind.
type listingHandlers[T models.Listing] struct {
	s        *Server
	path     string
	lc       *service.Lifecycle[T]
	newItem  func() T
	afterGet func(ctx context.Context, id uint)
}

// moderationRoute is the admin surface of one listing kind.
type moderationRoute struct {
	path    string
	kind    models.ContentKind
	pending fiber.Handler
	approve fiber.Handler
	reject  fiber.Handler
}

func registerListingRoutes[T models.Listing](s *Server, api fiber.Router, path string, lc *service.Lifecycle[T], newItem func() T) *listingHandlers[T] {
	h := &listingHandlers[T]{s: s, path: path, lc: lc, newItem: newItem}
	authRequired := middleware.AuthRequired(s.config.JWTSecret, s.redis)
	optionalAuth := middleware.OptionalAuth(s.config.JWTSecret, s.redis)

	g := api.Group("/"+path, middleware.TagContentKind(lc.Kind()))
	g.Get("/", h.list)
	g.Get("/search", s.limiter.Handle(middleware.SearchQuota), h.search)
	g.Get("/mine", authRequired, h.mine)
	g.Post("/", authRequired, s.limiter.Handle(middleware.CreateQuota), h.create)
	g.Get("/:id/comments", optionalAuth, h.listComments)
	g.Post("/:id/comments", authRequired, s.limiter.Handle(middleware.CommentQuota), h.createComment)
	g.Get("/:id", optionalAuth, h.get)
	g.Put("/:id", authRequired, h.update)
	g.Delete("/:id", authRequired, h.remove)

	s.moderation = append(s.moderation, moderationRoute{
		path:    path,
		kind:    lc.Kind(),
		pending: h.pending,
		approve: h.approve,
		reject:  h.reject,
	})
	return h
}

// list handles GET /api/{kind}
func (h *listingHandlers[T]) list(c *fiber.Ctx) error {
	page, size := pageParams(c)
	result, err := h.lc.ListApproved(c.UserContext(), page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// search handles GET /api/{kind}/search
func (h *listingHandlers[T]) search(c *fiber.Ctx) error {
	req, err := filter.FromQueryArgs(func(key string) string { return c.Query(key) })
	if err != nil {
		return respond(c, err)
	}
	return h.runSearch(c, req)
}

// searchBody handles POST /api/{kind}/search with a JSON filter request.
func (h *listingHandlers[T]) searchBody(c *fiber.Ctx) error {
	var req filter.Request
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return respond(c, models.NewValidationError("Invalid search request"))
		}
	}
	return h.runSearch(c, req)
}

func (h *listingHandlers[T]) runSearch(c *fiber.Ctx, req filter.Request) error {
	result, err := h.lc.Search(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// get handles GET /api/{kind}/:id
func (h *listingHandlers[T]) get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	item, err := h.lc.Get(c.UserContext(), viewer, id)
	if err != nil {
		return respond(c, err)
	}
	if h.afterGet != nil && item.Base().IsApproved() && !viewer.Owns(item.Base().AuthorID) {
		h.afterGet(c.UserContext(), id)
	}
	return c.JSON(item)
}

// mine handles GET /api/{kind}/mine
func (h *listingHandlers[T]) mine(c *fiber.Ctx) error {
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := h.lc.ListByAuthor(c.UserContext(), actor, actor.ID, page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// create handles POST /api/{kind}
func (h *listingHandlers[T]) create(c *fiber.Ctx) error {
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	item := h.newItem()
	uploads, err := decodeListing(c, item)
	if err != nil {
		return respond(c, err)
	}
	normalizeListing(item)

	created, err := h.lc.Create(c.UserContext(), actor, item, uploads)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// update handles PUT /api/{kind}/:id
func (h *listingHandlers[T]) update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	updated, err := h.lc.Update(c.UserContext(), actor, id, func(item T) error {
		var keep *models.Property
		if p, ok := any(item).(*models.Property); ok {
			snapshot := *p
			keep = &snapshot
		}
		if err := c.BodyParser(item); err != nil {
			return models.NewValidationError("Invalid request body")
		}
		if p, ok := any(item).(*models.Property); ok && keep != nil {
			// Sale status and counters have their own endpoints.
			p.PropertyStatus = keep.PropertyStatus
			p.ViewCount = keep.ViewCount
		}
		normalizeListing(item)
		return nil
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(updated)
}

// remove handles DELETE /api/{kind}/:id
func (h *listingHandlers[T]) remove(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	if err := h.lc.Delete(c.UserContext(), actor, id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listComments handles GET /api/{kind}/:id/comments
func (h *listingHandlers[T]) listComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := h.s.comments.ListComments(c.UserContext(), viewer, h.lc.Kind(), id, page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// createComment handles POST /api/{kind}/:id/comments
func (h *listingHandlers[T]) createComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respond(c, models.NewValidationError("Invalid request body"))
	}
	comment, err := h.s.comments.CreateComment(c.UserContext(), actor, service.CreateCommentInput{
		Kind:      h.lc.Kind(),
		ListingID: id,
		Content:   req.Content,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// pending handles GET /api/admin/{kind}/pending
func (h *listingHandlers[T]) pending(c *fiber.Ctx) error {
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	page, size := pageParams(c)
	result, err := h.lc.ListPending(c.UserContext(), actor, page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// approve handles POST /api/admin/{kind}/:id/approve
func (h *listingHandlers[T]) approve(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	item, err := h.lc.Approve(c.UserContext(), actor, id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(item)
}

// reject handles POST /api/admin/{kind}/:id/reject
func (h *listingHandlers[T]) reject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := h.s.actor(c)
	if err != nil {
		return respond(c, err)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respond(c, models.NewValidationError("Invalid request body"))
		}
	}
	item, err := h.lc.Reject(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(item)
}

// normalizeListing applies decoding fix-ups the models need.
func normalizeListing(item any) {
	if p, ok := item.(*models.Property); ok {
		p.SetAmenities(p.Amenities)
	}
}

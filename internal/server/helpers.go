package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"unicode"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/media"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respond writes err with the status its error code maps to.
func respond(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// pageParams reads the zero-based page and the page size.
func pageParams(c *fiber.Ctx) (page, size int) {
	return c.QueryInt("page", 0), c.QueryInt("size", 0)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// actor resolves the authorization context of the request. Anonymous
// requests get the zero Actor.
func (s *Server) actor(c *fiber.Ctx) (models.Actor, error) {
	userID, _ := c.Locals("userID").(uint)
	if userID == 0 {
		return models.Actor{}, nil
	}
	actor, err := s.users.Actor(c.UserContext(), userID)
	if models.IsNotFound(err) {
		return models.Actor{}, models.NewUnauthorizedError("Account no longer exists")
	}
	if err == nil {
		middleware.TagActor(c, actor)
	}
	return actor, err
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := s.actor(c)
		if err != nil {
			return respond(c, err)
		}
		if !actor.IsAdmin() {
			return respond(c, models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Multipart field names of listing submissions.
const (
	formData       = "data"
	formImages     = "images"
	formFloorPlans = "floorPlans"
)

// decodeListing fills item from the request body. JSON bodies carry only
// fields; multipart bodies carry the JSON in the "data" field plus image
// and floor plan files.
func decodeListing(c *fiber.Ctx, item any) ([]service.Upload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(item); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart body")
	}
	if data := form.Value[formData]; len(data) > 0 {
		if err := json.Unmarshal([]byte(data[0]), item); err != nil {
			return nil, models.NewValidationError("Invalid data field: " + err.Error())
		}
	}

	var uploads []service.Upload
	for role, field := range map[string]string{
		models.MediaRoleImage:     formImages,
		models.MediaRoleFloorPlan: formFloorPlans,
	} {
		files, err := readFiles(form.File[field])
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			uploads = append(uploads, service.Upload{Role: role, Files: files})
		}
	}
	// Images first so positions and folders are deterministic.
	if len(uploads) == 2 && uploads[0].Role != models.MediaRoleImage {
		uploads[0], uploads[1] = uploads[1], uploads[0]
	}
	return uploads, nil
}

func readFiles(headers []*multipart.FileHeader) ([]media.File, error) {
	files := make([]media.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, models.NewValidationError("Unable to read upload " + h.Filename)
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, models.NewValidationError("Unable to read upload " + h.Filename)
		}
		files = append(files, media.File{
			Filename:    h.Filename,
			ContentType: h.Header.Get(fiber.HeaderContentType),
			Content:     content,
		})
	}
	return files, nil
}

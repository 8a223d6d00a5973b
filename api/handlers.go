package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

// PriorityHeader carries the client's advisory scheduling hint. The server
// logs it for observability; it never changes response semantics.
const PriorityHeader = "X-Inlay-Priority"

// ErrorResponse is the JSON error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleGetAttribution returns the attribution record for one document.
// A document with no tracked changes is a 404; clients render it as fully
// human-authored.
func (s *Server) handleGetAttribution(c *fiber.Ctx) error {
	doc := authorship.DocumentID(c.Query("document"))
	if doc == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document parameter required"})
	}

	if priority := c.Get(PriorityHeader); priority != "" {
		s.logger.Debug("attribution query",
			zap.String("document", doc.String()),
			zap.String("priority", priority),
		)
	}

	result, err := s.store.Get(c.Context(), doc)
	if err != nil {
		var notFound attrstore.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no attribution recorded for document"})
		}

		s.logger.Error("getting attribution",
			zap.String("document", doc.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load attribution"})
	}

	return c.JSON(authorship.Record{Document: doc, Lines: result})
}

// handlePutAttribution replaces the attribution record for one document.
// Agents and trackers post the full record after each tracked change.
func (s *Server) handlePutAttribution(c *fiber.Ctx) error {
	var record authorship.Record
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid attribution record"})
	}

	if record.Document == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document field required"})
	}

	if record.Lines == nil {
		record.Lines = authorship.AttributionResult{}
	}

	if err := s.store.Put(c.Context(), record.Document, record.Lines); err != nil {
		s.logger.Error("storing attribution",
			zap.String("document", record.Document.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to store attribution"})
	}

	s.logger.Info("attribution stored",
		zap.String("document", record.Document.String()),
		zap.Int("lines", len(record.Lines)),
	)

	return c.SendStatus(fiber.StatusNoContent)
}

// handleDeleteAttribution removes the attribution record for one document.
// Deleting a document that has no record succeeds.
func (s *Server) handleDeleteAttribution(c *fiber.Ctx) error {
	doc := authorship.DocumentID(c.Query("document"))
	if doc == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document parameter required"})
	}

	if err := s.store.Delete(c.Context(), doc); err != nil {
		s.logger.Error("deleting attribution",
			zap.String("document", doc.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete attribution"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-nyaya/pkg/law"
	"github.com/teslashibe/go-nyaya/pkg/query"
	"github.com/teslashibe/go-nyaya/pkg/session"
	"github.com/teslashibe/go-nyaya/pkg/voice"
)

var errVoiceNotConnected = errors.New("web: voice bridge not connected")

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  Version,
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleOptions(c *fiber.Ctx) error {
	return c.JSON(options())
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sess.View())
}

// lookup resolves the :id route parameter.
func (s *Server) lookup(c *fiber.Ctx) (*Session, error) {
	sess := s.sessions.Get(c.Params("id"))
	if sess == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return sess, nil
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(sess.View())
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if !s.sessions.Remove(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StateUpdate is the body of PUT /api/sessions/:id/state. Absent fields
// are left unchanged.
type StateUpdate struct {
	Audience       *string `json:"audience"`
	QueryFocus     *string `json:"query_focus"`
	OutputLanguage *string `json:"output_language"`
	Query          *string `json:"query"`
}

func (s *Server) handleUpdateState(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}

	var req StateUpdate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctrl := sess.Controller()
	if req.Audience != nil {
		if err := ctrl.SetAudience(*req.Audience); err != nil {
			return badOption(err)
		}
	}
	if req.QueryFocus != nil {
		if err := ctrl.SetQueryFocus(*req.QueryFocus); err != nil {
			return badOption(err)
		}
	}
	if req.OutputLanguage != nil {
		if err := ctrl.SetOutputLanguage(*req.OutputLanguage); err != nil {
			return badOption(err)
		}
	}
	if req.Query != nil {
		ctrl.SetQuery(*req.Query)
	}
	return c.JSON(sess.View())
}

func (s *Server) handleToggleLaw(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	opt, err := law.Lookup(c.Params("law"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := sess.Controller().ToggleLaw(opt.ID); err != nil {
		return badOption(err)
	}
	return c.JSON(sess.View())
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}

	err = sess.Controller().Submit(c.UserContext())
	switch {
	case err == nil:
		return c.JSON(sess.View())
	case errors.Is(err, query.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(sess.View())
	case errors.Is(err, session.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(sess.View())
	default:
		return c.Status(fiber.StatusBadGateway).JSON(sess.View())
	}
}

func (s *Server) handleCopy(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	// The browser writes the clipboard; the server only tracks the ack.
	if err := sess.Controller().Copy(nil); err != nil {
		if errors.Is(err, session.ErrNothingToCopy) {
			return fiber.NewError(fiber.StatusConflict, "no response to copy")
		}
		return err
	}
	return c.JSON(sess.View())
}

func (s *Server) handleVoiceInput(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if err := sess.ToggleInput(); err != nil {
		return voiceError(err, voice.NoticeRecognitionUnsupported)
	}
	return c.JSON(sess.View())
}

func (s *Server) handleVoiceOutput(c *fiber.Ctx) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if err := sess.ToggleOutput(); err != nil {
		return voiceError(err, voice.NoticeSynthesisUnsupported)
	}
	return c.JSON(sess.View())
}

func badOption(err error) error {
	if errors.Is(err, query.ErrUnknownOption) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func voiceError(err error, notice string) error {
	switch {
	case errors.Is(err, errVoiceNotConnected):
		return fiber.NewError(fiber.StatusConflict, "voice bridge not connected")
	case errors.Is(err, voice.ErrUnsupported):
		return fiber.NewError(fiber.StatusNotImplemented, notice)
	case errors.Is(err, voice.ErrEmptyText):
		return fiber.NewError(fiber.StatusConflict, "no response to read aloud")
	default:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
}

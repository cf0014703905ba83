package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	policyuc "insurance-portal/internal/usecase/policy"
)

// PublicHandler serves the policy catalogue to anyone.
type PublicHandler struct{ policies *policyuc.Usecase }

func NewPublicHandler(policies *policyuc.Usecase) *PublicHandler {
	return &PublicHandler{policies: policies}
}

func (h *PublicHandler) Templates(c echo.Context) error {
	cards, err := h.policies.Browse(c.Request().Context())
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *PublicHandler) Template(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	card, err := h.policies.Template(c.Request().Context(), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

func (h *PublicHandler) TemplateByNumber(c echo.Context) error {
	card, err := h.policies.TemplateByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/domain/claim"
	"insurance-portal/internal/domain/ticket"
	claimuc "insurance-portal/internal/usecase/claim"
	enrollmentuc "insurance-portal/internal/usecase/enrollment"
	policyuc "insurance-portal/internal/usecase/policy"
	ticketuc "insurance-portal/internal/usecase/ticket"
	useruc "insurance-portal/internal/usecase/user"
)

// CustomerHandler serves /dashboard/customer.
type CustomerHandler struct {
	policies    *policyuc.Usecase
	enrollments *enrollmentuc.Usecase
	claims      *claimuc.Usecase
	tickets     *ticketuc.Usecase
	users       *useruc.Usecase
}

func NewCustomerHandler(p *policyuc.Usecase, e *enrollmentuc.Usecase, c *claimuc.Usecase, t *ticketuc.Usecase, u *useruc.Usecase) *CustomerHandler {
	return &CustomerHandler{policies: p, enrollments: e, claims: c, tickets: t, users: u}
}

type enrollReq struct {
	PolicyTemplateID int64  `json:"policyTemplateId" validate:"gt=0"`
	VehicleDetails   string `json:"vehicleDetails"`
}

// ---- policies & enrollments ----

func (h *CustomerHandler) Templates(c echo.Context) error {
	cards, err := h.policies.Browse(c.Request().Context())
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *CustomerHandler) Eligibility(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	res, err := h.enrollments.Eligibility(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CustomerHandler) Enroll(c echo.Context) error {
	var req enrollReq
	if err := bind(c, &req); err != nil {
		return handled(c, err)
	}
	v, err := h.enrollments.Enroll(c.Request().Context(), sess(c), req.PolicyTemplateID, req.VehicleDetails)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CustomerHandler) Enrollments(c echo.Context) error {
	list, err := h.enrollments.Mine(c.Request().Context(), sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ApprovedEnrollments feeds the claim form's enrollment picker.
func (h *CustomerHandler) ApprovedEnrollments(c echo.Context) error {
	list, err := h.enrollments.Approved(c.Request().Context(), sess(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ---- claims ----

func (h *CustomerHandler) SubmitClaim(c echo.Context) error {
	var in claim.SubmitInput
	if err := bind(c, &in); err != nil {
		return handled(c, err)
	}
	v, err := h.claims.Submit(c.Request().Context(), sess(c), in)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CustomerHandler) Claims(c echo.Context) error {
	list, err := h.claims.List(c.Request().Context(), sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CustomerHandler) Claim(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	v, err := h.claims.Get(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ---- support ----

func (h *CustomerHandler) CreateTicket(c echo.Context) error {
	var in ticket.CreateInput
	if err := bind(c, &in); err != nil {
		return handled(c, err)
	}
	v, err := h.tickets.Create(c.Request().Context(), sess(c), in)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CustomerHandler) Tickets(c echo.Context) error {
	list, err := h.tickets.List(c.Request().Context(), sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CustomerHandler) Ticket(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	v, err := h.tickets.Get(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CustomerHandler) Profile(c echo.Context) error {
	v, err := h.users.Profile(c.Request().Context(), sess(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

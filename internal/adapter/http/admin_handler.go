package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/domain/session"
	claimuc "insurance-portal/internal/usecase/claim"
	enrollmentuc "insurance-portal/internal/usecase/enrollment"
	"insurance-portal/internal/usecase/format"
	policyuc "insurance-portal/internal/usecase/policy"
	ticketuc "insurance-portal/internal/usecase/ticket"
	useruc "insurance-portal/internal/usecase/user"
)

// AdminHandler serves /dashboard/admin.
type AdminHandler struct {
	policies    *policyuc.Usecase
	enrollments *enrollmentuc.Usecase
	claims      *claimuc.Usecase
	tickets     *ticketuc.Usecase
	users       *useruc.Usecase
}

func NewAdminHandler(p *policyuc.Usecase, e *enrollmentuc.Usecase, c *claimuc.Usecase, t *ticketuc.Usecase, u *useruc.Usecase) *AdminHandler {
	return &AdminHandler{policies: p, enrollments: e, claims: c, tickets: t, users: u}
}

type notesReq struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type claimStatusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// ---- policies ----

func (h *AdminHandler) Policies(c echo.Context) error {
	list, err := h.policies.List(c.Request().Context(), sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) Policy(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	v, err := h.policies.Get(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AdminHandler) PolicyByNumber(c echo.Context) error {
	v, err := h.policies.GetByNumber(c.Request().Context(), sess(c), c.Param("number"))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// CreatePolicy leaves field checks to the usecase so the form gets its messages.
func (h *AdminHandler) CreatePolicy(c echo.Context) error {
	var in policy.Input
	if err := bind(c, &in); err != nil {
		return handled(c, err)
	}
	v, err := h.policies.Create(c.Request().Context(), sess(c), in)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *AdminHandler) UpdatePolicy(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	var in policy.Input
	if err := bind(c, &in); err != nil {
		return handled(c, err)
	}
	v, err := h.policies.Update(c.Request().Context(), sess(c), id, in)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AdminHandler) DeletePolicy(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	msg, err := h.policies.Delete(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

// ---- enrollments ----

func (h *AdminHandler) Enrollments(c echo.Context) error {
	b, err := h.enrollments.AdminBoard(c.Request().Context(), sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *AdminHandler) ApproveEnrollment(c echo.Context) error {
	return h.decide(c, h.enrollments.Approve)
}

func (h *AdminHandler) DeclineEnrollment(c echo.Context) error {
	return h.decide(c, h.enrollments.Decline)
}

func (h *AdminHandler) decide(c echo.Context, call func(context.Context, *session.Session, int64, string) (format.EnrollmentView, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	var req notesReq
	if err := bind(c, &req); err != nil {
		return handled(c, err)
	}
	v, err := call(c.Request().Context(), sess(c), id, req.Notes)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ---- claims ----

// Claims lists every claim, or only those in ?status= when given.
func (h *AdminHandler) Claims(c echo.Context) error {
	ctx := c.Request().Context()
	if status := c.QueryParam("status"); status != "" {
		list, err := h.claims.Filter(ctx, sess(c), status)
		if err != nil {
			return handled(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
	list, err := h.claims.List(ctx, sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) Claim(c echo.Context) error {
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

func (h *AdminHandler) UpdateClaimStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	var req claimStatusReq
	if err := bind(c, &req); err != nil {
		return handled(c, err)
	}
	v, err := h.claims.UpdateStatus(c.Request().Context(), sess(c), id, req.Status, req.Notes)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ---- support ----

// Tickets lists all tickets, or only unresolved ones with ?open=true.
func (h *AdminHandler) Tickets(c echo.Context) error {
	ctx := c.Request().Context()
	list := h.tickets.List
	if open, _ := strconv.ParseBool(c.QueryParam("open")); open {
		list = h.tickets.Open
	}
	items, err := list(ctx, sess(c), wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) Ticket(c echo.Context) error {
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

func (h *AdminHandler) ResolveTicket(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	var req notesReq
	if err := bind(c, &req); err != nil {
		return handled(c, err)
	}
	v, err := h.tickets.Resolve(c.Request().Context(), sess(c), id, req.Notes)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ---- users ----

// Users lists accounts; ?audience=customers narrows to customers.
func (h *AdminHandler) Users(c echo.Context) error {
	audience := useruc.AudienceAll
	if c.QueryParam("audience") == string(useruc.AudienceCustomers) {
		audience = useruc.AudienceCustomers
	}
	list, err := h.users.Users(c.Request().Context(), sess(c), audience, wantsReload(c))
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) User(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handled(c, err)
	}
	v, err := h.users.Detail(c.Request().Context(), sess(c), id)
	if err != nil {
		return handled(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

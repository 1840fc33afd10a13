package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/benefit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/admin"
	"pension-ledger/internal/usecase/enrollment"
	"pension-ledger/pkg/money"
)

type ParticipantHandler struct {
	uc    *enrollment.Usecase
	admin *admin.Usecase
}

func NewParticipantHandler(uc *enrollment.Usecase, adm *admin.Usecase) *ParticipantHandler {
	return &ParticipantHandler{uc: uc, admin: adm}
}

type registerReq struct {
	Program     string `json:"program"       validate:"required,oneof=gps prss"`
	DateOfBirth int    `json:"date_of_birth" validate:"required"`

	Scheme string `json:"scheme"  validate:"required_if=Program prss"`
	PlanID string `json:"plan_id" validate:"required_if=Program prss"`

	BasicSalary  int64  `json:"basic_salary"  validate:"required_if=Program gps,gte=0"`
	ServiceYears int    `json:"service_years" validate:"gte=0,lte=60"`
	EmployeeID   string `json:"employee_id"   validate:"required_if=Program gps"`
	Designation  string `json:"designation"   validate:"required_if=Program gps"`

	NomineeWallet   string `json:"nominee_wallet"   validate:"required,wallet"`
	NomineeName     string `json:"nominee_name"     validate:"required"`
	NomineeRelation string `json:"nominee_relation" validate:"required"`
}

func (h *ParticipantHandler) Register(c echo.Context, caller actor.Caller) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.Register(c.Request().Context(), caller, enrollment.RegisterInput{
		Program:              participant.Program(req.Program),
		DateOfBirth:          req.DateOfBirth,
		Scheme:               participant.Scheme(req.Scheme),
		PlanID:               req.PlanID,
		DeclaredSalary:       money.Amount(req.BasicSalary),
		DeclaredServiceYears: req.ServiceYears,
		EmployeeID:           req.EmployeeID,
		Designation:          req.Designation,
		NomineeWallet:        req.NomineeWallet,
		NomineeName:          req.NomineeName,
		NomineeRelation:      req.NomineeRelation,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ParticipantHandler) Get(c echo.Context, caller actor.Caller) error {
	p, err := h.uc.Get(c.Request().Context(), caller, c.Param("wallet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ParticipantHandler) Approve(c echo.Context, caller actor.Caller) error {
	p, err := h.uc.Approve(c.Request().Context(), caller, c.Param("wallet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type reasonReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ParticipantHandler) Reject(c echo.Context, caller actor.Caller) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.Reject(c.Request().Context(), caller, c.Param("wallet"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type verifyGPSReq struct {
	BasicSalary  int64  `json:"basic_salary"  validate:"gt=0"`
	ServiceYears int    `json:"service_years" validate:"gte=0,lte=60"`
	EmployeeID   string `json:"employee_id"   validate:"required"`
}

func (h *ParticipantHandler) VerifyGPS(c echo.Context, caller actor.Caller) error {
	var req verifyGPSReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.VerifyGPS(c.Request().Context(), caller, c.Param("wallet"), enrollment.VerifyGPSInput{
		Salary:     money.Amount(req.BasicSalary),
		Years:      req.ServiceYears,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ParticipantHandler) RequestClosure(c echo.Context, caller actor.Caller) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.RequestClosure(c.Request().Context(), caller, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ParticipantHandler) Close(c echo.Context, caller actor.Caller) error {
	p, err := h.uc.CloseAccount(c.Request().Context(), caller, c.Param("wallet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type listReq struct {
	Program           string `query:"program"            validate:"omitempty,oneof=gps prss"`
	ApplicationStatus string `query:"application_status" validate:"omitempty,oneof=pending approved rejected"`
	AccountStatus     string `query:"account_status"     validate:"omitempty,oneof=active closure_requested closed"`
	Limit             int    `query:"limit"              validate:"gte=0,lte=500"`
	Offset            int    `query:"offset"             validate:"gte=0"`
}

func (h *ParticipantHandler) List(c echo.Context, caller actor.Caller) error {
	var req listReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.admin.ListParticipants(c.Request().Context(), caller, participant.ListFilter{
		Program:           participant.Program(req.Program),
		ApplicationStatus: participant.ApplicationStatus(req.ApplicationStatus),
		AccountStatus:     participant.AccountStatus(req.AccountStatus),
		Limit:             req.Limit,
		Offset:            req.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"participants": out})
}

type auditReq struct {
	Wallet string `query:"wallet"`
	Action string `query:"action"`
	Limit  int    `query:"limit" validate:"gte=0,lte=500"`
}

func (h *ParticipantHandler) Audit(c echo.Context, caller actor.Caller) error {
	var req auditReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.admin.AuditHistory(c.Request().Context(), caller, audit.Filter{
		Wallet: req.Wallet,
		Action: audit.Action(req.Action),
		Limit:  req.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": out})
}

// Plans lists the PRSS plan catalog. Amounts are in local currency.
func (h *ParticipantHandler) Plans(c echo.Context) error {
	scheme := participant.Scheme(c.QueryParam("scheme"))
	if !scheme.Valid() {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "MissingRequiredField", Message: "scheme"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"scheme":     scheme,
		"min_months": benefit.SchemeMinMonths(scheme),
		"plans":      benefit.Plans(scheme),
	})
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/usecase/succession"
)

type SuccessionHandler struct{ uc *succession.Usecase }

func NewSuccessionHandler(uc *succession.Usecase) *SuccessionHandler {
	return &SuccessionHandler{uc: uc}
}

type deathReportReq struct {
	ProofRef string `json:"proof_ref" validate:"required"`
}

func (h *SuccessionHandler) ReportDeath(c echo.Context, caller actor.Caller) error {
	var req deathReportReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.ReportDeath(c.Request().Context(), caller, c.Param("wallet"), req.ProofRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type verifyDeathReq struct {
	ProofRef string `json:"proof_ref"`
}

func (h *SuccessionHandler) VerifyDeath(c echo.Context, caller actor.Caller) error {
	var req verifyDeathReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.VerifyDeath(c.Request().Context(), caller, c.Param("wallet"), req.ProofRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SuccessionHandler) RejectDeath(c echo.Context, caller actor.Caller) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.RejectDeath(c.Request().Context(), caller, c.Param("wallet"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type claimReq struct {
	NIDRef           string `json:"nid_ref"            validate:"required"`
	RelationProofRef string `json:"relation_proof_ref" validate:"required"`
}

func (h *SuccessionHandler) ApplyClaim(c echo.Context, caller actor.Caller) error {
	var req claimReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.ApplyNomineeClaim(c.Request().Context(), caller, c.Param("wallet"), req.NIDRef, req.RelationProofRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SuccessionHandler) ApproveClaim(c echo.Context, caller actor.Caller) error {
	p, err := h.uc.ApproveNomineeClaim(c.Request().Context(), caller, c.Param("wallet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SuccessionHandler) RejectClaim(c echo.Context, caller actor.Caller) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.RejectNomineeClaim(c.Request().Context(), caller, c.Param("wallet"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/disbursement"
	"pension-ledger/internal/usecase/fund"
	"pension-ledger/pkg/money"
)

// PensionHandler covers balances and payouts.
type PensionHandler struct {
	fund *fund.Usecase
	disb *disbursement.Usecase
}

func NewPensionHandler(f *fund.Usecase, d *disbursement.Usecase) *PensionHandler {
	return &PensionHandler{fund: f, disb: d}
}

// amounts travel as integer minor units of the ledger currency
type amountReq struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func (h *PensionHandler) Allocate(c echo.Context, caller actor.Caller) error {
	var req amountReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.fund.AllocateGPSFund(c.Request().Context(), caller, c.Param("wallet"), money.Amount(req.Amount))
	return respondParticipant(c, p, err)
}

func (h *PensionHandler) Contribute(c echo.Context, caller actor.Caller) error {
	var req amountReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.fund.ContributeMonthly(c.Request().Context(), caller, money.Amount(req.Amount))
	return respondParticipant(c, p, err)
}

func (h *PensionHandler) Sufficiency(c echo.Context, caller actor.Caller) error {
	s, err := h.fund.Sufficiency(c.Request().Context(), caller, c.Param("wallet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func respondParticipant(c echo.Context, p *participant.Participant, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func respondPayout(c echo.Context, res *disbursement.Result, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PensionHandler) Start(c echo.Context, caller actor.Caller) error {
	p, err := h.disb.StartPension(c.Request().Context(), caller)
	return respondParticipant(c, p, err)
}

func (h *PensionHandler) ChooseMonthly(c echo.Context, caller actor.Caller) error {
	p, err := h.disb.ChooseMonthlyPension(c.Request().Context(), caller)
	return respondParticipant(c, p, err)
}

func (h *PensionHandler) WithdrawFull(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.WithdrawFullPension(c.Request().Context(), caller)
	return respondPayout(c, res, err)
}

func (h *PensionHandler) WithdrawMonthly(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.WithdrawMonthlyPension(c.Request().Context(), caller)
	return respondPayout(c, res, err)
}

func (h *PensionHandler) ClaimGratuity(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.ClaimGPSGratuity(c.Request().Context(), caller)
	return respondPayout(c, res, err)
}

func (h *PensionHandler) NomineeChooseMonthly(c echo.Context, caller actor.Caller) error {
	p, err := h.disb.ChooseMonthlyPensionAsNominee(c.Request().Context(), caller, c.Param("wallet"))
	return respondParticipant(c, p, err)
}

func (h *PensionHandler) NomineeWithdrawMonthly(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.WithdrawMonthlyPensionAsNominee(c.Request().Context(), caller, c.Param("wallet"))
	return respondPayout(c, res, err)
}

func (h *PensionHandler) NomineeWithdrawFull(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.NomineeWithdrawFullPension(c.Request().Context(), caller, c.Param("wallet"))
	return respondPayout(c, res, err)
}

func (h *PensionHandler) NomineeClaimGratuity(c echo.Context, caller actor.Caller) error {
	res, err := h.disb.NomineeClaimGPSGratuity(c.Request().Context(), caller, c.Param("wallet"))
	return respondPayout(c, res, err)
}

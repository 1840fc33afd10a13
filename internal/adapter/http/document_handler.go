package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/document"
	docuc "pension-ledger/internal/usecase/document"
)

type DocumentHandler struct{ uc *docuc.Usecase }

func NewDocumentHandler(uc *docuc.Usecase) *DocumentHandler { return &DocumentHandler{uc: uc} }

func groupParam(c echo.Context) document.Group { return document.Group(c.Param("group")) }

func (h *DocumentHandler) List(c echo.Context, caller actor.Caller) error {
	docs, err := h.uc.List(c.Request().Context(), caller, c.Param("wallet"), groupParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

type submitReq struct {
	ContentRef string `json:"content_ref" validate:"required"`
}

func (h *DocumentHandler) Submit(c echo.Context, caller actor.Caller) error {
	var req submitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	d, err := h.uc.Submit(c.Request().Context(), caller, c.Param("wallet"), groupParam(c),
		document.Type(c.Param("type")), req.ContentRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type batchSubmitReq struct {
	Documents []struct {
		Type       string `json:"type"        validate:"required"`
		ContentRef string `json:"content_ref" validate:"required"`
	} `json:"documents" validate:"required,min=1,dive"`
}

func (h *DocumentHandler) SubmitBatch(c echo.Context, caller actor.Caller) error {
	var req batchSubmitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	items := make([]docuc.Submission, 0, len(req.Documents))
	for _, d := range req.Documents {
		items = append(items, docuc.Submission{Type: document.Type(d.Type), ContentRef: d.ContentRef})
	}
	docs, err := h.uc.SubmitBatch(c.Request().Context(), caller, c.Param("wallet"), groupParam(c), items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

type reviewReq struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"required_without=Approve"`
}

func (h *DocumentHandler) Review(c echo.Context, caller actor.Caller) error {
	var req reviewReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	d, err := h.uc.Review(c.Request().Context(), caller, c.Param("wallet"), groupParam(c),
		document.Type(c.Param("type")), req.Approve, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type batchReviewReq struct {
	Decisions []struct {
		Type    string `json:"type"   validate:"required"`
		Approve bool   `json:"approve"`
		Reason  string `json:"reason" validate:"required_without=Approve"`
	} `json:"decisions" validate:"required,min=1,dive"`
}

func (h *DocumentHandler) ReviewBatch(c echo.Context, caller actor.Caller) error {
	var req batchReviewReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	decisions := make([]docuc.Decision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		decisions = append(decisions, docuc.Decision{Type: document.Type(d.Type), Approve: d.Approve, Reason: d.Reason})
	}
	docs, err := h.uc.ReviewBatch(c.Request().Context(), caller, c.Param("wallet"), groupParam(c), decisions)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

func (h *DocumentHandler) ApproveAll(c echo.Context, caller actor.Caller) error {
	docs, err := h.uc.ApproveAllSubmitted(c.Request().Context(), caller, c.Param("wallet"), groupParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

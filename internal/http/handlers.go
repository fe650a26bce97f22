package http

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"time"

	"payslip/internal/core"
	"payslip/internal/export"
	"payslip/internal/log"
	"payslip/internal/services"
)

type itemView struct {
	ID        int
	Title     string
	Amount    string
	Formatted string
}

type ledgerView struct {
	Kind        core.Kind
	Heading     string
	Items       []itemView
	Total       string
	Suggestions []string
}

type formView struct {
	ID            string
	Details       core.Details
	Months        []string
	Ledgers       []ledgerView
	NetPay        string
	NetPayWords   string
	ExportEnabled bool
	Error         string
}

type previewView struct {
	ID            string
	Doc           export.Document
	Rows          []export.Row
	ExportEnabled bool
	Exported      string
	Error         string
}

type summaryResponse struct {
	TotalEarnings   string `json:"total_earnings"`
	TotalDeductions string `json:"total_deductions"`
	NetPay          string `json:"net_pay"`
	NetPayFormatted string `json:"net_pay_formatted"`
	NetPayWords     string `json:"net_pay_words"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the title catalog.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil || s.renderer == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["catalog"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["catalog"] = "ok"
		}
	}

	if s.slips.ExportEnabled() {
		checks["export_queue"] = "configured"
	} else {
		checks["export_queue"] = "disabled"
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

func (s *Server) handleNewDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.slips.NewDraft(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	SeeOther(w, r, slipPath(d.ID))
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	d, err := s.slips.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, d, d.Slip.Details, "")
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}

	id := r.PathValue("id")
	details, err := ParseDetailsForm(r.PostForm)
	if err == nil {
		_, err = s.slips.UpdateDetails(r.Context(), id, details)
	}
	switch {
	case err == nil:
		SeeOther(w, r, slipPath(id))
	case errors.Is(err, core.ErrInvalidMonth), errors.Is(err, core.ErrInvalidYear):
		d, getErr := s.slips.Get(r.Context(), id)
		if getErr != nil {
			s.fail(w, r, getErr)
			return
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, d, details, "Pay period: "+err.Error())
	default:
		s.fail(w, r, err)
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		NotFoundError("Unknown ledger").Write(w)
		return
	}
	if err := parseForm(w, r); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	s.apply(w, r, core.AddItem(kind, formValue(r.PostForm, "title")))
}

func (s *Server) handleSetAmount(w http.ResponseWriter, r *http.Request) {
	s.itemCommand(w, r, func(kind core.Kind, item int, form url.Values) core.Command {
		return core.SetAmount(kind, item, formValue(form, "amount"))
	})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	s.itemCommand(w, r, func(kind core.Kind, item int, form url.Values) core.Command {
		return core.RenameItem(kind, item, formValue(form, "title"))
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.itemCommand(w, r, func(kind core.Kind, item int, _ url.Values) core.Command {
		return core.RemoveItem(kind, item)
	})
}

// itemCommand resolves the kind and item path segments, parses the form
// and applies the command built by build.
func (s *Server) itemCommand(w http.ResponseWriter, r *http.Request, build func(core.Kind, int, url.Values) core.Command) {
	kind, ok := pathKind(r)
	if !ok {
		NotFoundError("Unknown ledger").Write(w)
		return
	}
	item, err := pathItemID(r)
	if err != nil {
		BadRequestError("Invalid item").Write(w)
		return
	}
	if err := parseForm(w, r); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	s.apply(w, r, build(kind, item, r.PostForm))
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, cmd core.Command) {
	id := r.PathValue("id")
	if _, err := s.slips.Apply(r.Context(), id, cmd); err != nil {
		s.fail(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Ledger command applied",
		append(log.NewFields().WithItem(string(cmd.Kind), cmd.ID).WithOperation(string(cmd.Op)).ToSlice(),
			log.FieldDraftID, id)...)
	SeeOther(w, r, slipPath(id)+"#"+string(cmd.Kind))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.slips.Document(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "preview.html", previewView{
		ID:            id,
		Doc:           doc,
		Rows:          doc.Rows(),
		ExportEnabled: s.slips.ExportEnabled(),
		Exported:      sanitizeInput(r.URL.Query().Get("exported")),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.slips.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewResponse().JSON(summaryResponse{
		TotalEarnings:   sum.TotalEarnings.StringFixed(2),
		TotalDeductions: sum.TotalDeductions.StringFixed(2),
		NetPay:          sum.NetPay.StringFixed(2),
		NetPayFormatted: core.FormatINR(sum.NetPay),
		NetPayWords:     sum.NetPayWords,
	}).Write(w)
}

// handleDownload renders the standalone slip document as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		InternalServerError("Export template not loaded").Write(w)
		return
	}
	doc, err := s.slips.Document(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, doc); err != nil {
		s.fail(w, r, err)
		return
	}
	NewResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": doc.FileName + ".html",
		})).
		Write(w)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name, err := s.slips.Export(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	SeeOther(w, r, slipPath(id, "preview")+"?exported="+url.QueryEscape(name))
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, d services.Draft, details core.Details, msg string) {
	sum := d.Slip.Summarize()
	view := formView{
		ID:            d.ID,
		Details:       details,
		Months:        core.Months(),
		NetPay:        core.FormatINR(sum.NetPay),
		NetPayWords:   core.Decorate(sum.NetPayWords),
		ExportEnabled: s.slips.ExportEnabled(),
		Error:         msg,
	}
	for _, l := range []struct {
		kind    core.Kind
		heading string
		ledger  core.Ledger
	}{
		{core.Earning, "Earnings", d.Slip.Earnings},
		{core.Deduction, "Deductions", d.Slip.Deductions},
	} {
		lv := ledgerView{
			Kind:        l.kind,
			Heading:     l.heading,
			Total:       core.FormatINR(l.ledger.Total()),
			Suggestions: s.slips.Suggestions(r.Context(), l.kind),
		}
		for _, it := range l.ledger.Items() {
			lv.Items = append(lv.Items, itemView{
				ID:        it.ID,
				Title:     it.Title,
				Amount:    it.Amount,
				Formatted: core.FormatINR(core.ParseAmount(it.Amount)),
			})
		}
		view.Ledgers = append(view.Ledgers, lv)
	}
	s.render(w, r, status, "form.html", view)
}

// render executes a page template into a buffer so that a template error
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	NewResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

// fail maps service errors to responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		NotFoundError("This slip has expired or does not exist. Start a new one from the home page.").Write(w)
	case errors.Is(err, core.ErrInvalidKind), errors.Is(err, services.ErrInvalidCommand):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, services.ErrExportDisabled):
		ErrorResponse(http.StatusServiceUnavailable, "Export is not configured on this server").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		InternalServerError("Something went wrong, please retry").Write(w)
	}
}

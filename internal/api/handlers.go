package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/mailer"
	"github.com/ignite/outreach/internal/pkg/httputil"
	"github.com/ignite/outreach/internal/pkg/logger"
	"github.com/ignite/outreach/internal/registry"
	"github.com/ignite/outreach/internal/resolver"
)

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// HandleConfigureSMTP swaps the active transport to an SMTP sender with
// the supplied account credentials.
func (s *Server) HandleConfigureSMTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	if input.Email == "" || input.Password == "" {
		httputil.BadRequest(w, "Email and Password are required")
		return
	}

	s.switcher.SetActive(mailer.NewSMTPSenderWithCredentials(s.smtpCfg, input.Email, input.Password))
	logger.Info("smtp transport configured", "account", input.Email)

	httputil.OK(w, map[string]any{
		"success": true,
		"message": "SMTP Configured successfully",
	})
}

// parsePreview is one entry of the bounded preview returned alongside a
// parse result.
type parsePreview struct {
	Email    string            `json:"email"`
	Name     string            `json:"name,omitempty"`
	Source   domain.NameSource `json:"source"`
	Greeting string            `json:"greeting"`
}

// HandleParseEmails runs the resolver over freeform recipient text.
func (s *Server) HandleParseEmails(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RawEmails string `json:"rawEmails"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}

	result, err := s.resolver.Resolve(r.Context(), input.RawEmails)
	if err != nil {
		if errors.Is(err, resolver.ErrEmptyInput) {
			httputil.BadRequest(w, "No emails provided")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	preview := make([]parsePreview, 0, 5)
	for _, rec := range result.Valid {
		if len(preview) == 5 {
			break
		}
		preview = append(preview, parsePreview{
			Email:    rec.Email,
			Name:     rec.Name,
			Source:   rec.Source,
			Greeting: rec.Greeting(),
		})
	}

	httputil.OK(w, map[string]any{
		"totalParsed":   len(result.Valid) + len(result.Invalid),
		"validCount":    len(result.Valid),
		"invalidCount":  len(result.Invalid),
		"validEmails":   result.Valid,
		"invalidEmails": result.Invalid,
		"previewSample": preview,
	})
}

// sendCampaignRequest is the dispatch start payload. Recipients usually
// come straight from a prior parse response.
type sendCampaignRequest struct {
	Recipients    []domain.ResolvedRecipient `json:"recipients"`
	Subject       string                     `json:"subject"`
	Body          string                     `json:"body"`
	SenderDetails domain.SenderDetails       `json:"senderDetails"`
	Footer        domain.Footer              `json:"footer"`
	Attachments   []domain.Attachment        `json:"attachments"`
}

// HandleSendCampaign registers a campaign and schedules its dispatch
// run, returning the campaign identifier immediately.
func (s *Server) HandleSendCampaign(w http.ResponseWriter, r *http.Request) {
	var input sendCampaignRequest
	if !httputil.Decode(w, r, &input) {
		return
	}

	if len(input.Recipients) == 0 {
		httputil.BadRequest(w, "Recipients list is empty")
		return
	}
	if input.Subject == "" || input.Body == "" {
		httputil.BadRequest(w, "Subject and Body are required")
		return
	}

	spec := domain.CampaignSpec{
		Subject:       input.Subject,
		BodyTemplate:  input.Body,
		SenderDetails: input.SenderDetails,
		Footer:        input.Footer,
		Attachments:   input.Attachments,
	}

	campaignID := uuid.New().String()
	s.registry.Create(campaignID, input.Recipients)

	s.engine.Dispatch(campaignID, input.Recipients, spec, func(event domain.Event) {
		s.registry.Apply(campaignID, event)
	})

	logger.Info("campaign started",
		"campaign", campaignID,
		"recipients", len(input.Recipients),
	)

	httputil.OK(w, map[string]any{
		"message":        "Campaign started successfully",
		"campaignId":     campaignID,
		"statusEndpoint": "/api/campaign-status/" + campaignID,
	})
}

// HandleCampaignStatus returns the full campaign aggregate.
func (s *Server) HandleCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			httputil.NotFound(w, "Campaign not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, campaign)
}

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/snarg/transcribe-relay/internal/config"
	"github.com/snarg/transcribe-relay/internal/metrics"
	"github.com/snarg/transcribe-relay/internal/transcribe"
)

// TranscribeRequest is the POST /transcribe body.
type TranscribeRequest struct {
	AudioBase64 string `json:"audioBase64" validate:"required"`
	MimeType    string `json:"mimeType" validate:"omitempty,max=255"`
	FileName    string `json:"fileName" validate:"omitempty,max=255"`
}

// TranscribeResponse is returned on success. Text may be empty.
type TranscribeResponse struct {
	Text string `json:"text"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match what the client sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// validationMessage turns the first validator failure into a client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request."
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "max":
		return fe.Field() + " is too long."
	default:
		return fe.Field() + " is invalid."
	}
}

// TranscribeHandler relays recorded audio to the configured provider.
type TranscribeHandler struct {
	cfg      *config.Config
	provider transcribe.Provider
	log      zerolog.Logger
	inFlight atomic.Int64
}

// NewTranscribeHandler creates a new transcription relay handler.
func NewTranscribeHandler(cfg *config.Config, provider transcribe.Provider, log zerolog.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		cfg:      cfg,
		provider: provider,
		log:      log.With().Str("handler", "transcribe").Logger(),
	}
}

// InFlight reports requests currently waiting on the provider.
func (h *TranscribeHandler) InFlight() int64 {
	return h.inFlight.Load()
}

// Routes registers the transcription endpoint.
func (h *TranscribeHandler) Routes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
}

// Transcribe handles POST /transcribe.
// Accepts {audioBase64, mimeType?, fileName?} and responds with {text}.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	providerName := h.provider.Name()

	// Deployment error, reported on use rather than at startup.
	if h.cfg.APIKey() == "" {
		h.log.Error().Str("provider", providerName).Msg("transcription requested without an API key")
		metrics.TranscriptionsTotal.WithLabelValues(providerName, metrics.OutcomeConfigError).Inc()
		WriteError(w, http.StatusInternalServerError, h.cfg.MissingKeyMessage())
		return
	}

	var req TranscribeRequest
	if err := ReadJSONBody(w, r, MaxBodyBytes, &req); err != nil {
		msg := err.Error()
		if !errors.Is(err, ErrPayloadTooLarge) && !errors.Is(err, ErrInvalidJSON) {
			h.log.Warn().Err(err).Msg("request body read failed")
			msg = "Failed to read request body."
		}
		metrics.TranscriptionsTotal.WithLabelValues(providerName, metrics.OutcomeBadRequest).Inc()
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if err := getValidator().Struct(req); err != nil {
		metrics.TranscriptionsTotal.WithLabelValues(providerName, metrics.OutcomeBadRequest).Inc()
		WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = transcribe.DefaultMimeType
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = transcribe.FileNameForMime(mimeType)
	}

	audio := transcribe.DecodeBase64(req.AudioBase64)
	if len(audio) == 0 {
		metrics.TranscriptionsTotal.WithLabelValues(providerName, metrics.OutcomeBadRequest).Inc()
		WriteError(w, http.StatusBadRequest, "audioBase64 did not contain any audio data.")
		return
	}
	metrics.AudioBytes.Observe(float64(len(audio)))

	if detected, media := transcribe.SniffMime(audio); !media {
		h.log.Warn().
			Str("mime_type", mimeType).
			Str("detected", detected).
			Msg("decoded audio does not look like a media container")
	}

	ctx := r.Context()
	if h.cfg.TranscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.TranscribeTimeout)
		defer cancel()
	}

	h.inFlight.Add(1)
	start := time.Now()
	result, err := h.provider.Transcribe(ctx, transcribe.Request{
		Audio:    audio,
		MimeType: mimeType,
		FileName: fileName,
	})
	elapsed := time.Since(start)
	h.inFlight.Add(-1)
	metrics.UpstreamDuration.WithLabelValues(providerName).Observe(elapsed.Seconds())

	if err != nil {
		msg, outcome := classifyUpstreamError(err)
		h.log.Error().Err(err).
			Str("provider", providerName).
			Str("outcome", outcome).
			Int("audio_bytes", len(audio)).
			Dur("upstream_ms", elapsed).
			Msg("transcription failed")
		metrics.TranscriptionsTotal.WithLabelValues(providerName, outcome).Inc()
		WriteError(w, http.StatusBadGateway, msg)
		return
	}

	h.log.Debug().
		Str("provider", providerName).
		Str("mime_type", mimeType).
		Int("audio_bytes", len(audio)).
		Int("text_len", len(result.Text)).
		Dur("upstream_ms", elapsed).
		Msg("transcription complete")
	metrics.TranscriptionsTotal.WithLabelValues(providerName, metrics.OutcomeOK).Inc()
	WriteJSON(w, http.StatusOK, TranscribeResponse{Text: result.Text})
}

// classifyUpstreamError picks the client message and metric outcome for a
// provider failure. Only provider-authored messages are passed through.
func classifyUpstreamError(err error) (msg, outcome string) {
	var upErr *transcribe.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Message, metrics.OutcomeUpstreamError
	}
	if errors.Is(err, transcribe.ErrInvalidResponse) {
		return err.Error(), metrics.OutcomeUpstreamError
	}
	if errors.Is(err, context.Canceled) {
		return "Transcription failed.", metrics.OutcomeCanceled
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Transcription timed out.", metrics.OutcomeTimeout
	}
	return "Transcription failed.", metrics.OutcomeTransport
}

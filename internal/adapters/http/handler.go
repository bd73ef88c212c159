package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	alertapp "github.com/PabloGalante/lifeline-agent/internal/app/alert"
	"github.com/PabloGalante/lifeline-agent/internal/app/profile"
	"github.com/PabloGalante/lifeline-agent/internal/app/submission"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// maxBodyBytes leaves room for a 5MB image after base64 expansion.
const maxBodyBytes = 8 << 20

type Server struct {
	profiles *profile.Service
	pipeline *submission.Pipeline
	alerts   *alertapp.Service
}

func NewServer(profiles *profile.Service, pipeline *submission.Pipeline, alerts *alertapp.Service) http.Handler {
	s := &Server{profiles: profiles, pipeline: pipeline, alerts: alerts}
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	r.HandleFunc("/auth/sign-in", s.handleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/auth/sign-up", s.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/sign-out", s.handleSignOut).Methods(http.MethodPost)

	r.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.handlePatchProfile).Methods(http.MethodPatch)
	r.HandleFunc("/profile/contacts", s.handleAddContact).Methods(http.MethodPost)
	r.HandleFunc("/profile/contacts/{id}", s.handleUpdateContact).Methods(http.MethodPut)
	r.HandleFunc("/profile/contacts/{id}", s.handleRemoveContact).Methods(http.MethodDelete)
	r.HandleFunc("/profile/conditions/{id}/toggle", s.handleToggleCondition).Methods(http.MethodPost)

	r.HandleFunc("/emergency/submissions", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/emergency/alerts", s.handleAlert).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	return chainMiddlewares(r, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.profiles.SignIn(r.Context(), req.Identity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.profiles.SignUp(r.Context(), req.Identity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.SignOut(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Profile
// ─────────────────────────────────────────────

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	var req patchProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.profiles.UpdateProfile(r.Context(), req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.profiles.AddContact(r.Context(), domain.ContactInput{Name: req.Name, PhoneNumber: req.PhoneNumber})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := domain.Contact{
		ID:          domain.ContactID(mux.Vars(r)["id"]),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	}
	p, err := s.profiles.UpdateContact(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveContact(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.RemoveContact(r.Context(), domain.ContactID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleToggleCondition(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.ToggleCondition(r.Context(), domain.ConditionID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ─────────────────────────────────────────────
// Emergency
// ─────────────────────────────────────────────

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submissionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := s.pipeline.Submit(r.Context(), req)
	status := http.StatusOK
	if out.Failure != nil {
		status = statusForKind(out.Failure.Kind)
	}
	writeJSON(w, status, toSubmissionResponse(out))
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	a, err := s.alerts.Trigger(r.Context(), alertapp.Request{Location: req.Location})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toAlertResponse(a))
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeErrorBody(w, http.StatusBadRequest, domain.KindValidation, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, kind domain.ErrorKind, msg string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: msg}})
}

// writeError maps a classified error to its status and fixed message. The
// raw error text is logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	log := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "kind", kind, "error", err)
	} else {
		log.Info("request rejected", "kind", kind, "error", err)
	}

	writeErrorBody(w, status, kind, domain.UserMessage(kind))
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindCapacityExceeded:
		return http.StatusConflict
	case domain.KindSetupRequired, domain.KindNoContacts:
		return http.StatusPreconditionFailed
	case domain.KindBusy:
		return http.StatusTooManyRequests
	case domain.KindServiceUnavailable, domain.KindInvalidResponse, domain.KindAlertFailed:
		return http.StatusBadGateway
	case domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeErrorBody(w, http.StatusNotFound, domain.KindNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeErrorBody(w, http.StatusMethodNotAllowed, domain.KindValidation, "method not allowed")
}

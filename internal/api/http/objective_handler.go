package http

import (
	"net/http"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

func (h *Handler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	objectives, err := h.svc.Objectives.ListObjectives(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if objectives == nil {
		objectives = []domain.Objective{}
	}
	writeJSON(w, http.StatusOK, objectives)
}

func (h *Handler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body objectiveRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate("date_limite", body.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	objective := &domain.Objective{Name: body.Name, TargetAmount: *body.Target, Deadline: deadline}
	if err := h.svc.Objectives.CreateObjective(r.Context(), userID, objective); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, objective)
}

func (h *Handler) GetObjective(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	objectiveID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	objective, err := h.svc.Objectives.GetObjective(r.Context(), userID, objectiveID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objective)
}

func (h *Handler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	objectiveID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body objectiveUpdateRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate("date_limite", body.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	changes := &domain.Objective{ID: objectiveID, Name: body.Name, Deadline: deadline}
	if body.Target != nil {
		changes.TargetAmount = *body.Target
	}
	objective, err := h.svc.Objectives.UpdateObjective(r.Context(), userID, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objective)
}

func (h *Handler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	objectiveID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Objectives.DeleteObjective(r.Context(), userID, objectiveID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	objectiveID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	contributions, err := h.svc.Objectives.ListContributions(r.Context(), userID, objectiveID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if contributions == nil {
		contributions = []domain.Contribution{}
	}
	writeJSON(w, http.StatusOK, contributions)
}

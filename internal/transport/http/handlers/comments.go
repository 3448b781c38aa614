package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/service"
	apierrors "github.com/pribylovaa/threads-service/internal/transport/http/errors"
	"github.com/pribylovaa/threads-service/internal/transport/http/middleware"
	"github.com/pribylovaa/threads-service/internal/tree"
)

// ListComments отдаёт дерево предмета.
// ?view=flat: плоский список в порядке обхода с полем level.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	view := r.URL.Query().Get("view")
	if view != "" && view != "nested" && view != "flat" {
		apierrors.WriteError(w, r, invalidArgument(fmt.Errorf("unknown view %q", view)))
		return
	}

	th, err := h.svc.Thread(r.Context(), itemID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if view == "flat" {
		flat := make([]FlatCommentDTO, 0, th.Total)
		tree.Walk(th.Comments, func(c models.Comment, level int) bool {
			flat = append(flat, flatFromModel(c, level))
			return true
		})

		writeJSON(w, http.StatusOK, FlatThreadResponse{ItemID: th.SubjectID, Total: th.Total, Comments: flat})
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{
		ItemID:   th.SubjectID,
		Total:    th.Total,
		Comments: commentsFromModel(th.Comments),
	})
}

func (h *Handlers) CountComments(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	n, err := h.svc.Count(r.Context(), itemID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{ItemID: itemID, Total: n})
}

// CreateComment: 201 при вставке; 200 {applied:false}, если родитель не найден.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in CreateCommentRequest
	if err := h.decodeValid(r, &in, false); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	author, _ := middleware.AuthorFrom(r.Context())

	mut, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		SubjectID: chi.URLParam(r, "item_id"),
		ParentID:  in.ParentID,
		Author:    author,
		Body:      in.Body,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !mut.Applied {
		status = http.StatusOK
	}

	writeJSON(w, status, mutationFromModel(mut))
}

func (h *Handlers) VoteComment(w http.ResponseWriter, r *http.Request) {
	var in VoteRequest
	if err := h.decodeValid(r, &in, false); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	mut, err := h.svc.Vote(r.Context(), service.VoteInput{
		SubjectID: chi.URLParam(r, "item_id"),
		CommentID: chi.URLParam(r, "id"),
		Direction: models.Direction(in.Direction),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mutationFromModel(mut))
}

// ReportComment принимает жалобу; тело ({reason}) необязательно.
func (h *Handlers) ReportComment(w http.ResponseWriter, r *http.Request) {
	var in ReportRequest
	if err := h.decodeValid(r, &in, true); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	reporter, _ := middleware.AuthorFrom(r.Context())

	err := h.svc.Report(r.Context(), service.ReportInput{
		SubjectID: chi.URLParam(r, "item_id"),
		CommentID: chi.URLParam(r, "id"),
		Reporter:  reporter,
		Reason:    in.Reason,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ReportResponse{Reported: true})
}

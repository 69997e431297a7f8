package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cctv-surveillance-reports/be/models"
	"cctv-surveillance-reports/be/observability"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type reportRecord interface {
	repository.Record
	GetLocation() string
}

// reportKind holds what differs between the activity and status endpoints.
type reportKind[T any] struct {
	kind       string // event and metric label
	noun       string // "Report", "Status"
	plural     string // "reports", "statuses"
	missingMsg string // answered on create when a required field is absent
}

// ReportHandler serves the CRUD endpoints of one report kind.
type ReportHandler[T any, P interface {
	*T
	reportRecord
}] struct {
	repo repository.Reports[T]
	hub  *services.EventHub
	log  *zap.Logger
	reportKind[T]
}

func NewActivityHandler(repo repository.Reports[models.ActivityReport], hub *services.EventHub, log *zap.Logger) *ReportHandler[models.ActivityReport, *models.ActivityReport] {
	return &ReportHandler[models.ActivityReport, *models.ActivityReport]{
		repo: repo,
		hub:  hub,
		log:  log.With(zap.String("kind", services.KindActivity)),
		reportKind: reportKind[models.ActivityReport]{
			kind:       services.KindActivity,
			noun:       "Report",
			plural:     "reports",
			missingMsg: "Please provide datetime, location, findings, and intensity",
		},
	}
}

func NewStatusHandler(repo repository.Reports[models.StatusReport], hub *services.EventHub, log *zap.Logger) *ReportHandler[models.StatusReport, *models.StatusReport] {
	return &ReportHandler[models.StatusReport, *models.StatusReport]{
		repo: repo,
		hub:  hub,
		log:  log.With(zap.String("kind", services.KindStatus)),
		reportKind: reportKind[models.StatusReport]{
			kind:       services.KindStatus,
			noun:       "Status",
			plural:     "statuses",
			missingMsg: "Please provide all required fields",
		},
	}
}

func (h *ReportHandler[T, P]) List(c *gin.Context) {
	records, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.internal(c, "fetch "+h.plural, err)
		return
	}
	respondList(c, records, len(records))
}

func (h *ReportHandler[T, P]) ListByLocation(c *gin.Context) {
	records, err := h.repo.ListByLocation(c.Request.Context(), c.Param("location"))
	if err != nil {
		h.internal(c, "fetch "+h.plural+" by location", err)
		return
	}
	respondList(c, records, len(records))
}

func (h *ReportHandler[T, P]) Get(c *gin.Context) {
	record, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, h.noun+" not found")
			return
		}
		h.internal(c, "fetch "+strings.ToLower(h.noun), err)
		return
	}
	respondData(c, http.StatusOK, "", record)
}

func (h *ReportHandler[T, P]) Create(c *gin.Context) {
	var req T
	if !h.bind(c, &req, h.missingMsg) {
		return
	}

	created, err := h.repo.Create(c.Request.Context(), &req)
	if err != nil {
		if h.rejected(c, err) {
			return
		}
		h.internal(c, "create "+strings.ToLower(h.noun), err)
		return
	}

	h.written(services.EventCreated, P(created))
	respondData(c, http.StatusCreated, h.noun+" created successfully", created)
}

func (h *ReportHandler[T, P]) Update(c *gin.Context) {
	var req T
	if !h.bind(c, &req, "") {
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, h.noun+" not found")
			return
		}
		if h.rejected(c, err) {
			return
		}
		h.internal(c, "update "+strings.ToLower(h.noun), err)
		return
	}

	h.written(services.EventUpdated, P(updated))
	respondData(c, http.StatusOK, h.noun+" updated successfully", updated)
}

func (h *ReportHandler[T, P]) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, h.noun+" not found")
			return
		}
		h.internal(c, "delete "+strings.ToLower(h.noun), err)
		return
	}

	observability.RecordReportWrite(h.kind, services.EventDeleted)
	h.hub.Publish(services.ReportEvent{Event: services.EventDeleted, Kind: h.kind, ID: id})
	respondMessage(c, http.StatusOK, h.noun+" deleted successfully")
}

func (h *ReportHandler[T, P]) written(event string, rec P) {
	observability.RecordReportWrite(h.kind, event)
	h.hub.Publish(services.ReportEvent{
		Event:    event,
		Kind:     h.kind,
		ID:       rec.GetID(),
		Location: rec.GetLocation(),
	})
	h.log.Info("report "+event, zap.String("id", rec.GetID()), zap.String("location", rec.GetLocation()))
}

// bind decodes and validates a report body. When missing is set it replaces
// the field messages if any required field is absent.
func (h *ReportHandler[T, P]) bind(c *gin.Context, dst *T, missing string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var cast *models.CastError
	if models.IsInvalid(err) || errors.As(err, &cast) {
		observability.RecordValidationRejection(h.kind)
	}
	if missing != "" && models.MissingRequired(err) {
		respondError(c, http.StatusBadRequest, missing)
		return false
	}
	bindFailed(c, err, "Invalid request body")
	return false
}

// rejected answers a validation failure and reports whether err was one.
func (h *ReportHandler[T, P]) rejected(c *gin.Context, err error) bool {
	var ve *repository.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	observability.RecordValidationRejection(h.kind)
	respondError(c, http.StatusBadRequest, ve.Error())
	return true
}

func (h *ReportHandler[T, P]) internal(c *gin.Context, action string, err error) {
	h.log.Error("failed to "+action, zap.Error(err))
	respondError(c, http.StatusInternalServerError, "Failed to "+action)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"photo-location-service/internal/api/dto"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/ports"
	"photo-location-service/internal/services"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultBandCount = 3
	maxBandCount     = 20
	maxBatchFiles    = 10000
)

// BatchHandler builds, stores and serves record batches.
type BatchHandler struct {
	Repo        ports.RecordRepository
	Extractor   ports.ExifExtractor
	Projections ports.ProjectionFactory
	// Optional; nil disables publishing.
	Publisher ports.RecordPublisher

	DefaultReference domain.ReferencePolicy
	Concurrency      int
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BuildBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if len(req.Files) == 0 {
		writeError(w, r, http.StatusBadRequest, "files is required")
		return
	}
	if len(req.Files) > maxBatchFiles {
		writeError(w, r, http.StatusBadRequest, "too many files, max "+strconv.Itoa(maxBatchFiles))
		return
	}
	if req.Concurrency < 0 || req.Concurrency > 64 {
		writeError(w, r, http.StatusBadRequest, "concurrency must be between 0 and 64")
		return
	}

	reference := h.DefaultReference
	if strings.TrimSpace(req.Reference) != "" {
		p, err := domain.ParseReferencePolicy(req.Reference)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		reference = p
	}

	svcReq := services.BuildRecordsRequest{
		FileNames:   req.Files,
		Projection:  req.Projection,
		Reference:   reference,
		Concurrency: req.Concurrency,
	}
	if svcReq.Concurrency == 0 {
		svcReq.Concurrency = h.Concurrency
	}
	if req.Origin != nil {
		svcReq.Origin = &domain.Coordinates{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
	}

	batch, err := services.BuildRecords(r.Context(), svcReq, h.Extractor, h.Projections)
	if err != nil {
		if isRequestError(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "build records failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Repo.SaveBatch(r.Context(), batch); err != nil {
		slog.ErrorContext(r.Context(), "save batch failed", "batch_id", batch.ID, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	sum := batch.Summary()
	slog.InfoContext(r.Context(), "batch built",
		"batch_id", sum.ID,
		"projection", sum.Projection,
		"reference", sum.Reference,
		"records", sum.RecordCount,
		"failures", len(batch.Failures),
	)
	w.Header().Set("Location", "/batches/"+sum.ID)

	if h.Publisher != nil {
		if err := h.Publisher.PublishBatch(r.Context(), batch); err != nil {
			slog.WarnContext(r.Context(), "publish batch failed", "batch_id", batch.ID, "err", err)
		}
	}

	writeJSON(w, r, http.StatusCreated, dto.BatchFromDomain(batch))
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	sums, err := h.Repo.ListBatches(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list batches failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListBatchesResponse{
		Batches: make([]dto.BatchSummaryResponse, 0, len(sums)),
	}
	for _, s := range sums {
		res.Batches = append(res.Batches, dto.SummaryFromDomain(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.BatchFromDomain(batch))
}

func (h *BatchHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", `inline; filename="`+batch.ID+`.geojson"`)
	writeJSON(w, r, http.StatusOK, dto.GeoJSONFromRecords(batch.Records))
}

func (h *BatchHandler) Bands(w http.ResponseWriter, r *http.Request) {
	count := defaultBandCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxBandCount {
			writeError(w, r, http.StatusBadRequest, "count must be between 1 and "+strconv.Itoa(maxBandCount))
			return
		}
		count = n
	}

	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	bands, err := services.GroupByDistance(batch.Records, count)
	if err != nil {
		slog.ErrorContext(r.Context(), "group by distance failed", "batch_id", batch.ID, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListBandsResponse{
		BatchID: batch.ID,
		Bands:   make([]dto.BandResponse, 0, len(bands)),
	}
	for _, b := range bands {
		res.Bands = append(res.Bands, dto.BandResponse{
			Index:       b.Index,
			MinDistance: b.MinDistance,
			MaxDistance: b.MaxDistance,
			Records:     dto.RecordsFromDomain(b.Records),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// loadBatch writes the 404/500 response itself when it returns false.
func (h *BatchHandler) loadBatch(w http.ResponseWriter, r *http.Request) (*domain.RecordBatch, bool) {
	id := chi.URLParam(r, "id")

	batch, err := h.Repo.GetBatch(r.Context(), id)
	if errors.Is(err, ports.ErrBatchNotFound) {
		writeError(w, r, http.StatusNotFound, "batch not found")
		return nil, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "get batch failed", "batch_id", id, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return batch, true
}

func isRequestError(err error) bool {
	return errors.Is(err, domain.ErrUnknownProjection) ||
		errors.Is(err, domain.ErrUnknownReference) ||
		errors.Is(err, domain.ErrMissingOrigin) ||
		errors.Is(err, domain.ErrInvalidCoordinate)
}

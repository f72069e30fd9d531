package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/cohortpulse/cohortpulse/internal/analysis"
	"github.com/cohortpulse/cohortpulse/internal/cohort"
	"github.com/cohortpulse/cohortpulse/internal/record"
)

// UploadResponse is the upload contract: row count, available filter values,
// the retained rows echoed back, and the unfiltered first matrix so clients
// avoid a second round trip.
type UploadResponse struct {
	Message       string                `json:"message"`
	Rows          int                   `json:"rows"`
	Filters       FilterValues          `json:"filters"`
	Data          []ClaimRow            `json:"data"`
	Matrix        []analysis.MatrixRow  `json:"matrix"`
	PaymentMonths []string              `json:"payment_months"`
	Totals        analysis.MatrixTotals `json:"totals"`
	SkippedRows   int                   `json:"skipped_rows,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleAnalyze runs the retention pipeline over an uploaded orders CSV.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	rows, err := s.readCSVUpload(r)
	if err != nil {
		writeJSON(w, http.StatusOK, analysis.ErrorResponse(err.Error()))
		return
	}

	if missing := record.OrderColumns(rows); len(missing) > 0 {
		writeJSON(w, http.StatusOK, analysis.ErrorResponse(
			fmt.Sprintf("Missing required columns: %s", joinComma(missing))))
		return
	}

	orders, rowErrs, err := record.NormalizeOrders(rows, s.cfg.Strict)
	if err != nil {
		writeJSON(w, http.StatusOK, analysis.ErrorResponse(err.Error()))
		return
	}

	resp := analysis.Run(orders)
	resp.SkippedRows = len(rowErrs)
	writeJSON(w, http.StatusOK, resp)
}

// handleUpload ingests a claims CSV, persists it as the retained dataset,
// and returns the first (unfiltered) waterfall matrix.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	rows, err := s.readCSVUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if missing := record.ClaimColumns(rows); len(missing) > 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Missing required columns: %s", joinComma(missing)))
		return
	}

	claims, rowErrs, err := record.NormalizeClaims(rows, s.cfg.Strict)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.db != nil {
		if _, err := s.db.SaveDataset(uploadName(r), claims); err != nil {
			log.Error().Err(err).Msg("saving dataset")
			writeError(w, http.StatusInternalServerError, "failed to persist dataset")
			return
		}
	}
	s.setRetained(claims)

	payers, serviceTypes := cohort.FilterValues(claims)
	matrix := analysis.BuildMatrix(claims, cohort.Filter{})

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:       "File uploaded successfully",
		Rows:          len(claims),
		Filters:       FilterValues{Payers: payers, ServiceTypes: serviceTypes},
		Data:          encodeRows(claims),
		Matrix:        matrix.Matrix,
		PaymentMonths: matrix.PaymentMonths,
		Totals:        matrix.Totals,
		SkippedRows:   len(rowErrs),
	})
}

// handleMatrixPost computes the waterfall matrix from client-replayed rows.
func (s *Server) handleMatrixPost(w http.ResponseWriter, r *http.Request) {
	var req MatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request: %v", err))
		return
	}

	claims, skipped := decodeRows(req.Data)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("dropped rows with unparseable dates")
	}
	filter := cohort.Filter{Payer: req.Payer, ServiceType: req.ServiceType}

	// A cold controller with replayed rows falls back to the supplied set.
	rc, err := s.retained()
	if err != nil || rc == nil {
		rc = cohort.NewRecomputer(nil)
	}
	m, err := rc.RecomputeWith(claims, filter)
	if errors.Is(err, cohort.ErrSuperseded) {
		// A newer filter change landed first; serve its result when it has
		// already applied, else the superseded one we just computed.
		if latest := rc.Latest(); latest != nil {
			m = latest
		}
	} else if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := analysis.ShapeMatrix(m)
	resp.SkippedRows = skipped
	writeJSON(w, http.StatusOK, resp)
}

// handleMatrixGet computes the waterfall matrix from the retained dataset.
func (s *Server) handleMatrixGet(w http.ResponseWriter, r *http.Request) {
	rc, err := s.retained()
	if err != nil {
		log.Error().Err(err).Msg("loading retained dataset")
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	if rc == nil {
		writeError(w, http.StatusNotFound, "no dataset uploaded")
		return
	}

	filter := cohort.Filter{
		Payer:       r.URL.Query().Get("payer"),
		ServiceType: r.URL.Query().Get("service_type"),
	}
	m, err := rc.Recompute(filter)
	if errors.Is(err, cohort.ErrSuperseded) {
		if latest := rc.Latest(); latest != nil {
			m = latest
		}
	} else if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analysis.ShapeMatrix(m))
}

// readCSVUpload pulls the multipart "file" field and parses it into loose
// rows.
func (s *Server) readCSVUpload(r *http.Request) ([]record.RawRow, error) {
	maxBytes := int64(s.cfg.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	rows, err := record.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return rows, nil
}

func uploadName(r *http.Request) string {
	if _, header, err := r.FormFile("file"); err == nil && header != nil {
		return header.Filename
	}
	return "upload"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}

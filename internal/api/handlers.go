package api

import (
	"encoding/json"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

type validateRequest struct {
	Price string `json:"price"`
	Actor string `json:"actor"`
}

type validateResponse struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
	DeviationBps   uint64 `json:"deviation_bps"`
	OracleEnabled  bool   `json:"oracle_enabled"`
	ConsensusPrice string `json:"consensus_price"`
	Confidence     uint64 `json:"confidence"`
	ObservedAt     int64  `json:"observed_at"`
}

type consensusResponse struct {
	PoolID             string `json:"pool_id"`
	Price              string `json:"price"`
	TotalStake         string `json:"total_stake"`
	ParticipatingStake string `json:"participating_stake"`
	ConfidenceLevel    uint64 `json:"confidence_level"`
	ConvergenceScore   uint64 `json:"convergence_score"`
	AttestationCount   int    `json:"attestation_count"`
	Status             string `json:"status"`
	ObservedAt         int64  `json:"observed_at"`
	ExpiresAt          int64  `json:"expires_at"`
}

type poolConfigRequest struct {
	Enabled               bool   `json:"enabled"`
	ConsensusThresholdBps uint64 `json:"consensus_threshold_bps"`
	MaxPriceDeviationBps  uint64 `json:"max_price_deviation_bps"`
	MaxStalenessSeconds   int64  `json:"max_staleness_seconds"`
	MinStakeRequired      string `json:"min_stake_required"`
}

type operatorStateRequest struct {
	State string `json:"state"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// handleValidatePrice gates one proposed price for a pool-dependent action.
// A denial is a 200 with valid=false; error statuses are reserved for
// malformed requests and infrastructure failures.
func (s *Server) handleValidatePrice(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "poolID")

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request body"))
		return
	}
	if req.Actor == "" {
		writeError(w, r, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "actor is required"))
		return
	}

	price, ok := sdkmath.NewIntFromString(req.Price)
	if !ok || !price.IsPositive() {
		writeError(w, r, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "price must be a positive integer string"))
		return
	}

	validation, apiErr := s.service.ValidatePriceForPool(r.Context(), poolID, req.Actor, price)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	writeJSON(w, r, http.StatusOK, validateResponse{
		Valid:          validation.Result.Valid,
		Reason:         validation.Result.Reason,
		DeviationBps:   validation.Result.DeviationBps,
		OracleEnabled:  validation.OracleEnabled,
		ConsensusPrice: validation.ConsensusPrice.String(),
		Confidence:     validation.Confidence,
		ObservedAt:     validation.ObservedAt,
	})
}

func (s *Server) handleGetConsensus(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "poolID")

	state, apiErr := s.service.GetConsensusSnapshot(r.Context(), poolID)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	writeJSON(w, r, http.StatusOK, consensusResponse{
		PoolID:             state.PoolID,
		Price:              state.Price,
		TotalStake:         state.TotalStake,
		ParticipatingStake: state.ParticipatingStake,
		ConfidenceLevel:    state.ConfidenceLevel,
		ConvergenceScore:   state.ConvergenceScore,
		AttestationCount:   state.AttestationCount,
		Status:             state.Status.String(),
		ObservedAt:         state.ObservedAt,
		ExpiresAt:          state.ExpiresAt,
	})
}

func (s *Server) handleUpsertPoolConfig(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "poolID")

	var req poolConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request body"))
		return
	}

	apiErr := s.service.UpsertPoolConfig(r.Context(), &model.OracleConfigDocument{
		PoolID:                poolID,
		Enabled:               req.Enabled,
		ConsensusThresholdBps: req.ConsensusThresholdBps,
		MaxPriceDeviationBps:  req.MaxPriceDeviationBps,
		MaxStalenessSeconds:   req.MaxStalenessSeconds,
		MinStakeRequired:      req.MinStakeRequired,
	})
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateOperatorState(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")

	var req operatorStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request body"))
		return
	}

	newState, err := types.OperatorStateFromString(req.State)
	if err != nil {
		writeError(w, r, types.NewValidationFailedError(err))
		return
	}

	if apiErr := s.service.UpdateOperatorState(r.Context(), operatorID, newState); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if apiErr := s.service.HealthCheck(r.Context()); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response body")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, apiErr *types.Error) {
	event := log.Ctx(r.Context()).Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(apiErr.Err).
		Int("status_code", apiErr.StatusCode).
		Str("path", r.URL.Path).
		Msg("Request failed")

	writeJSON(w, r, apiErr.StatusCode, errorResponse{
		ErrorCode: apiErr.ErrorCode.String(),
		Message:   apiErr.Error(),
	})
}

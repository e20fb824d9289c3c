package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
)

// stockLevelsHandler returns the aggregated stock level of every blood type.
func (a *API) stockLevelsHandler(w http.ResponseWriter, _ *http.Request) {
	levels, err := a.db.StockLevels()
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not list stock levels: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.StockResponse{Levels: levels})
}

// stockLevelByTypeHandler returns the stock level of one blood type.
func (a *API) stockLevelByTypeHandler(w http.ResponseWriter, r *http.Request) {
	bloodType := chi.URLParam(r, "bloodType")
	level, err := a.db.StockLevelByType(bloodType)
	if err != nil {
		switch err {
		case db.ErrInvalidData:
			errors.ErrInvalidBloodGroup.Write(w)
		case db.ErrNotFound:
			errors.ErrStockNotFound.Write(w)
		default:
			errors.ErrGenericInternalServerError.Withf("could not get stock level: %v", err).Write(w)
		}
		return
	}
	apicommon.HTTPWriteJSON(w, level)
}

// stockCorrectionHandler applies a manual correction to a stock level. Only
// admins may correct the ledger.
func (a *API) stockCorrectionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	if user.Role != db.AdminRole {
		errors.ErrForbiddenRole.Write(w)
		return
	}
	req := &apicommon.StockCorrectionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Units == 0 && req.Volume == 0 {
		errors.ErrMalformedBody.With("correction deltas are zero").Write(w)
		return
	}
	if err := a.db.AdjustStockLevel(req.BloodType, req.Units, req.Volume); err != nil {
		if err == db.ErrInvalidData {
			errors.ErrInvalidBloodGroup.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not adjust stock level: %v", err).Write(w)
		return
	}
	level, err := a.db.StockLevelByType(req.BloodType)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not get stock level: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, level)
}

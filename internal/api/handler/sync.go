package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/paid-social-sync/internal/domain"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing"
	"github.com/vfg2006/paid-social-sync/pkg/apiErrors"
	"github.com/vfg2006/paid-social-sync/pkg/log"
	"github.com/vfg2006/paid-social-sync/pkg/utils"
)

// SyncInsights executa uma sincronização síncrona de insights para uma conta
func SyncInsights(service syncing.Orchestrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req syncing.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("sync: corpo da requisição inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		if req.AccountID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campo account_id é obrigatório", nil)
			return
		}

		if req.Since != "" {
			if _, err := utils.ParseDate(req.Since); err != nil {
				logger.WithFields(log.Fields{
					"account_id": req.AccountID,
					"since":      req.Since,
				}).Warn("sync: parâmetro since inválido")
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Campo since deve estar no formato YYYY-MM-DD", nil)
				return
			}
		}

		if req.Until != "" {
			if _, err := utils.ParseDate(req.Until); err != nil {
				logger.WithFields(log.Fields{
					"account_id": req.AccountID,
					"until":      req.Until,
				}).Warn("sync: parâmetro until inválido")
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Campo until deve estar no formato YYYY-MM-DD", nil)
				return
			}
		}

		logger.WithFields(log.Fields{
			"account_id":  req.AccountID,
			"level":       req.Level,
			"date_preset": req.Preset,
			"since":       req.Since,
			"until":       req.Until,
		}).Info("sync: iniciando sincronização de insights")

		result, err := service.Sync(r.Context(), req)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": req.AccountID,
				"error":      err.Error(),
			}).Error("sync: falha na sincronização de insights")

			if domain.IsTransientUpstream(err) || domain.IsLevelUnavailable(err) {
				apiErrors.WriteError(w, apiErrors.ErrExternalService, err.Error(), nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
			return
		}

		logger.WithFields(log.Fields{
			"account_id": req.AccountID,
			"rows":       result.Rows,
			"table":      result.Table,
		}).Info("sync: sincronização concluída")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("sync: falha ao serializar resposta")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

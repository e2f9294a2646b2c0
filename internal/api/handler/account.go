package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/domain"
	"github.com/vfg2006/paid-social-sync/pkg/apiErrors"
	"github.com/vfg2006/paid-social-sync/pkg/log"
	"github.com/vfg2006/paid-social-sync/pkg/utils"
)

// AdAccountList lista as contas de anúncios registradas, com filtro opcional
// de status via query string
func AdAccountList(repo repository.AccountRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var statuses []domain.AdAccountStatus
		if status := r.URL.Query().Get("status"); status != "" {
			statuses = append(statuses, domain.AdAccountStatus(status))
		}

		accounts, err := repo.ListAccounts(statuses)
		if err != nil {
			logger.WithError(err).Error("accounts: erro ao listar contas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar contas", nil)
			return
		}

		logger.WithField("total", len(accounts)).Info("accounts: contas listadas")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(accounts); err != nil {
			logger.WithError(err).Error("accounts: falha ao serializar resposta")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// RegisterAdAccounts registra ou atualiza contas de anúncios em lote
func RegisterAdAccounts(repo repository.AccountRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var accounts []*domain.AdAccount
		if err := json.NewDecoder(r.Body).Decode(&accounts); err != nil {
			logger.WithError(err).Warn("accounts: corpo da requisição inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		if len(accounts) == 0 {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhuma conta informada", nil)
			return
		}

		for _, account := range accounts {
			if account.ExternalID == "" {
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campo external_id é obrigatório", nil)
				return
			}

			account.ExternalID = domain.NormalizeAccountID(account.ExternalID)

			if account.ID == "" {
				id, err := utils.GenerateID()
				if err != nil {
					logger.WithError(err).Error("accounts: erro ao gerar ID da conta")
					apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar ID da conta", nil)
					return
				}
				account.ID = id
			}

			if account.Status == "" {
				account.Status = domain.AdAccountStatusActive
			}

			if account.Origin == "" {
				account.Origin = string(domain.PlatformMeta)
			}
		}

		if err := repo.SaveOrUpdate(accounts); err != nil {
			logger.WithError(err).Error("accounts: erro ao salvar contas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao salvar contas", nil)
			return
		}

		logger.WithField("total", len(accounts)).Info("accounts: contas registradas")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(accounts); err != nil {
			logger.WithError(err).Error("accounts: falha ao serializar resposta")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

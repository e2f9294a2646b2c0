package metaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/paid-social-sync/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// insightFields são os campos solicitados à API de insights, incluindo os
// identificadores hierárquicos de cada nível
var insightFields = "date_start,date_stop,impressions,clicks,spend,ctr,frequency,ad_id,adset_id,campaign_id,actions"

// ResponseInsights representa uma página da API de insights
type ResponseInsights struct {
	Data   []domain.RawRecord `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// FetchInsights busca insights diários paginados da conta, entregando cada
// página ao handler. Erros da API são classificados em transitórios (retry),
// de permissão/granularidade (fallback de nível) ou definitivos; a decisão
// de retry fica com o chamador.
func (c *MetaClient) FetchInsights(ctx context.Context, query domain.FetchQuery, handler domain.PageHandler) error {
	baseURL := fmt.Sprintf(
		"%s/%s/insights",
		c.Cfg.Meta.URL,
		domain.NormalizeAccountID(query.AccountID),
	)

	params := url.Values{}
	params.Add("access_token", c.Cfg.Meta.AccessToken)
	params.Add("level", string(query.Level))
	params.Add("fields", insightFields)
	params.Add("time_increment", "1") // linhas diárias
	params.Add("limit", strconv.Itoa(query.PageSize))

	if query.Range != nil {
		timeRange := fmt.Sprintf(
			"{\"since\":\"%s\",\"until\":\"%s\"}",
			query.Range.Since.Format(time.DateOnly),
			query.Range.Until.Format(time.DateOnly),
		)
		params.Add("time_range", timeRange)
	} else if query.Preset != "" {
		params.Add("date_preset", string(query.Preset))
	}

	pageURL := baseURL + "?" + params.Encode()

	for pageURL != "" {
		page, err := c.fetchPage(ctx, pageURL, query.Level)
		if err != nil {
			return err
		}

		if len(page.Data) > 0 {
			if err := handler(page.Data); err != nil {
				return err
			}
		}

		// A URL de next já carrega todos os parâmetros da primeira página
		pageURL = page.Paging.Next
	}

	return nil
}

func (c *MetaClient) fetchPage(ctx context.Context, pageURL string, level domain.Level) (*ResponseInsights, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição de insights")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Falhas de rede e timeout são transitórias por definição
		return nil, &domain.UpstreamError{Transient: true, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Transient: true, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyError(resp.StatusCode, body, level)
	}

	var page ResponseInsights
	if err := json.Unmarshal(body, &page); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar resposta de insights do Meta")
		return nil, errors.Wrap(err, "erro ao decodificar resposta de insights")
	}

	return &page, nil
}

// classifyError converte o envelope de erro da Graph API na taxonomia de
// erros da sincronização
func (c *MetaClient) classifyError(statusCode int, body []byte, level domain.Level) error {
	var errResp metadomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &domain.UpstreamError{
			Transient: statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests,
			Code:      statusCode,
			Message:   string(body),
		}
	}

	logrus.WithFields(logrus.Fields{
		"status_code": statusCode,
		"code":        errResp.Error.Code,
		"subcode":     errResp.Error.ErrorSubcode,
		"type":        errResp.Error.Type,
		"fbtrace_id":  errResp.Error.FBTraceID,
	}).Warn("Erro retornado pela API de insights do Meta")

	if errResp.Error.IsPermission() {
		return &domain.LevelUnavailableError{
			Level:   level,
			Code:    errResp.Error.Code,
			Message: errResp.Error.Message,
		}
	}

	return &domain.UpstreamError{
		Transient: errResp.Error.IsTransient() || statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests,
		Code:      errResp.Error.Code,
		Message:   errResp.Error.Message,
	}
}

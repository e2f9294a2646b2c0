package domain

import (
	"errors"
	"fmt"
)

// UpstreamError representa uma falha na comunicação com a API da plataforma.
// Falhas transitórias (rede, timeout, limite de requisições) são elegíveis
// para retry do chunk inteiro.
type UpstreamError struct {
	Transient bool
	Code      int
	Message   string
}

func (e *UpstreamError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("erro da plataforma (código %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("erro da plataforma: %s", e.Message)
}

// IsTransientUpstream indica se o erro é uma falha transitória da plataforma
func IsTransientUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.Transient
}

// LevelUnavailableError indica que o nível de granularidade solicitado não
// está disponível para a conta (permissão ou dados inexistentes). Dispara o
// fallback hierárquico em vez de retry.
type LevelUnavailableError struct {
	Level   Level
	Code    int
	Message string
}

func (e *LevelUnavailableError) Error() string {
	return fmt.Sprintf("nível %s indisponível para a conta (código %d): %s", e.Level, e.Code, e.Message)
}

// IsLevelUnavailable indica se o erro representa um nível indisponível
func IsLevelUnavailable(err error) bool {
	var levelErr *LevelUnavailableError
	return errors.As(err, &levelErr)
}

// MalformedRecordError indica que um registro bruto falhou na normalização
// de um campo obrigatório
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("registro malformado: campo %q %s", e.Field, e.Reason)
}

// IsMalformedRecord indica se o erro representa um registro malformado
func IsMalformedRecord(err error) bool {
	var malformedErr *MalformedRecordError
	return errors.As(err, &malformedErr)
}

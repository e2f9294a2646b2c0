package metadomain

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTransient verifica se o erro é transitório e elegível para retry.
// Os códigos 1 e 2 são erros temporários da API; 4, 17, 32 e 613 indicam
// limite de requisições atingido.
func (e *ErrorDetails) IsTransient() bool {
	switch e.Code {
	case 1, 2, 4, 17, 32, 613:
		return true
	}
	return false
}

// IsPermission verifica se o erro é de permissão ou de granularidade
// indisponível para a conta. O código 10 representa permissão negada e a
// faixa 200-299 cobre os erros de permissão específicos da API.
func (e *ErrorDetails) IsPermission() bool {
	if e.Code == 10 {
		return true
	}
	return e.Code >= 200 && e.Code <= 299
}

// Package i18n 存放面向用户的错误与提示文案
// 对外文案为巴西葡萄牙语，日志保持英文
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key 文案键
type Key string

const (
	TokenMissing       Key = "token_missing"
	Forbidden          Key = "forbidden"
	BackendMissing     Key = "backend_missing"
	ConnectionFailed   Key = "connection_failed"
	InvalidBody        Key = "invalid_body"
	FieldRequired      Key = "field_required"
	InvalidIDs         Key = "invalid_ids"
	InvalidPathParam   Key = "invalid_path_param"
	InvalidCredentials Key = "invalid_credentials"
	UserPending        Key = "user_pending"
	UserRejected       Key = "user_rejected"
	LoginSuccess       Key = "login_success"
	LogoutSuccess      Key = "logout_success"
	SessionFailed      Key = "session_failed"
	TooManyRequests    Key = "too_many_requests"
	RateLimiterFailed  Key = "rate_limiter_failed"
	Internal           Key = "internal"
)

// Default 默认语言
var Default = language.BrazilianPortuguese

var (
	cat     = catalog.NewBuilder(catalog.Fallback(Default))
	printer *message.Printer
)

func init() {
	entries := map[Key]string{
		TokenMissing:       "Token de acesso não encontrado",
		Forbidden:          "Acesso negado: permissão insuficiente",
		BackendMissing:     "URL da API não configurada",
		ConnectionFailed:   "Erro de conexão com o servidor",
		InvalidBody:        "Corpo da requisição inválido",
		FieldRequired:      "Campo obrigatório ausente: %s",
		InvalidIDs:         "IDs inválidos: informe uma lista de números",
		InvalidPathParam:   "Parâmetro %s inválido",
		InvalidCredentials: "Usuário ou senha inválidos",
		UserPending:        "Usuário aguardando aprovação",
		UserRejected:       "Cadastro rejeitado",
		LoginSuccess:       "Login realizado com sucesso",
		LogoutSuccess:      "Logout realizado com sucesso",
		SessionFailed:      "Não foi possível criar a sessão",
		TooManyRequests:    "Muitas requisições, tente novamente mais tarde",
		RateLimiterFailed:  "Erro no controle de requisições",
		Internal:           "Erro interno do servidor",
	}
	for key, text := range entries {
		if err := cat.SetString(Default, string(key), text); err != nil {
			panic(err)
		}
	}
	printer = message.NewPrinter(Default, message.Catalog(cat))
}

// T 返回指定键的文案，args 用于填充占位符
func T(key Key, args ...interface{}) string {
	return printer.Sprintf(string(key), args...)
}

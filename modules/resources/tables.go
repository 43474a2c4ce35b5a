package resources

import (
	"net/http"

	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// Table 一个后端资源的端点描述表
type Table struct {
	Name        string
	Description string
	Descriptors []proxy.Descriptor
}

var (
	adminOnly = []model.Role{model.RoleAdmin}
	staff     = []model.Role{model.RoleAdmin, model.RoleAttendant}
)

// All 返回全部资源表
func All() []Table {
	return []Table{
		Users(),
		Roles(),
		Chairs(),
		Schedules(),
		Approvals(),
		Appointments(),
		Dashboard(),
	}
}

// Users 用户管理，除 /me 外仅管理员可用
func Users() Table {
	return Table{
		Name:        "users",
		Description: "User administration",
		Descriptors: []proxy.Descriptor{
			{
				Name: "users.list", Method: http.MethodGet, Path: "/users", Roles: adminOnly,
				Query:    []proxy.QueryParam{proxy.Param("search"), proxy.Param("role"), proxy.Param("status"), proxy.Page(), proxy.Limit("10")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar usuários",
			},
			{
				Name: "users.me", Method: http.MethodGet, Route: "/me", Path: "/users/me",
				FallbackError: "Erro ao buscar perfil",
			},
			{
				Name: "users.get", Method: http.MethodGet, Route: "/:id", Path: "/users/{id}", Roles: adminOnly,
				FallbackError: "Usuário não encontrado",
			},
			{
				Name: "users.create", Method: http.MethodPost, Path: "/users", Roles: adminOnly,
				Body: proxy.BodyJSON, Required: []string{"username", "password", "role"},
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Usuário criado com sucesso",
				FallbackError: "Erro ao criar usuário",
			},
			{
				Name: "users.update", Method: http.MethodPatch, Route: "/:id", Path: "/users/{id}", Roles: adminOnly,
				Body:     proxy.BodyJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Usuário atualizado com sucesso",
				FallbackError: "Erro ao atualizar usuário",
			},
			{
				Name: "users.delete", Method: http.MethodDelete, Route: "/:id", Path: "/users/{id}", Roles: adminOnly,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Usuário excluído com sucesso",
				FallbackError: "Erro ao excluir usuário",
			},
			{
				Name: "users.bulk_delete", Method: http.MethodPost, Route: "/bulk-delete",
				UpstreamMethod: http.MethodDelete, Path: "/users/bulk-delete", Roles: adminOnly,
				Body:     proxy.BodyIDs,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Usuários excluídos com sucesso",
				FallbackError: "Erro ao excluir usuários",
			},
		},
	}
}

// Roles 角色列表
func Roles() Table {
	return Table{
		Name:        "roles",
		Description: "Available user roles",
		Descriptors: []proxy.Descriptor{
			{
				Name: "roles.list", Method: http.MethodGet, Path: "/roles",
				FallbackError: "Erro ao buscar perfis de acesso",
			},
		},
	}
}

// Chairs 座位（椅子）
func Chairs() Table {
	return Table{
		Name:        "chairs",
		Description: "Bookable chairs",
		Descriptors: []proxy.Descriptor{
			{
				Name: "chairs.list", Method: http.MethodGet, Path: "/chairs",
				Query:    []proxy.QueryParam{proxy.Param("search"), proxy.Param("status"), proxy.Page(), proxy.Limit("6")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar cadeiras",
			},
			{
				Name: "chairs.get", Method: http.MethodGet, Route: "/:id", Path: "/chairs/{id}",
				FallbackError: "Cadeira não encontrada",
			},
			{
				Name: "chairs.create", Method: http.MethodPost, Path: "/chairs", Roles: adminOnly,
				Body: proxy.BodyJSON, Required: []string{"name"},
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Cadeira criada com sucesso",
				FallbackError: "Erro ao criar cadeira",
			},
			{
				Name: "chairs.update", Method: http.MethodPatch, Route: "/:id", Path: "/chairs/{id}", Roles: adminOnly,
				Body:     proxy.BodyJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Cadeira atualizada com sucesso",
				FallbackError: "Erro ao atualizar cadeira",
			},
			{
				Name: "chairs.delete", Method: http.MethodDelete, Route: "/:id", Path: "/chairs/{id}", Roles: adminOnly,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Cadeira excluída com sucesso",
				FallbackError: "Erro ao excluir cadeira",
			},
			{
				Name: "chairs.bulk_delete", Method: http.MethodPost, Route: "/bulk-delete",
				UpstreamMethod: http.MethodDelete, Path: "/chairs/bulk-delete", Roles: adminOnly,
				Body:     proxy.BodyIDs,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Cadeiras excluídas com sucesso",
				FallbackError: "Erro ao excluir cadeiras",
			},
		},
	}
}

// Schedules 排班，修改仅管理员可用
func Schedules() Table {
	return Table{
		Name:        "schedules",
		Description: "Opening schedules",
		Descriptors: []proxy.Descriptor{
			{
				Name: "schedules.list", Method: http.MethodGet, Path: "/schedules",
				Query:    []proxy.QueryParam{proxy.Param("dayOfWeek"), proxy.Page(), proxy.Limit("10")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar horários",
			},
			{
				Name: "schedules.create", Method: http.MethodPost, Path: "/schedules", Roles: adminOnly,
				Body: proxy.BodyJSON, Required: []string{"dayOfWeek", "startTime", "endTime"},
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Horário criado com sucesso",
				FallbackError: "Erro ao criar horário",
			},
			{
				Name: "schedules.update", Method: http.MethodPatch, Route: "/:id", Path: "/schedules/{id}", Roles: adminOnly,
				Body:     proxy.BodyJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Horário atualizado com sucesso",
				FallbackError: "Erro ao atualizar horário",
			},
			{
				Name: "schedules.delete", Method: http.MethodDelete, Route: "/:id", Path: "/schedules/{id}", Roles: adminOnly,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Horário excluído com sucesso",
				FallbackError: "Erro ao excluir horário",
			},
		},
	}
}

// Approvals 注册审批
func Approvals() Table {
	return Table{
		Name:        "approvals",
		Description: "Pending registration approvals",
		Descriptors: []proxy.Descriptor{
			{
				Name: "approvals.list", Method: http.MethodGet, Path: "/approvals", Roles: adminOnly,
				Query:    []proxy.QueryParam{proxy.Param("status"), proxy.Page(), proxy.Limit("10")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar aprovações",
			},
			{
				Name: "approvals.update", Method: http.MethodPatch, Route: "/:id", Path: "/approvals/{id}", Roles: adminOnly,
				Body: proxy.BodyJSON, Required: []string{"status"},
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Status de aprovação atualizado",
				FallbackError: "Erro ao atualizar aprovação",
			},
		},
	}
}

// Appointments 预约
func Appointments() Table {
	return Table{
		Name:        "appointments",
		Description: "Appointments and availability",
		Descriptors: []proxy.Descriptor{
			{
				Name: "appointments.list", Method: http.MethodGet, Path: "/appointments",
				Query:    []proxy.QueryParam{proxy.Param("status"), proxy.Param("date"), proxy.Param("chairId"), proxy.Page(), proxy.Limit("10")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar agendamentos",
			},
			{
				Name: "appointments.create", Method: http.MethodPost, Path: "/appointments",
				Body: proxy.BodyJSON, Required: []string{"chairId", "datetimeStart"},
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Agendamento criado com sucesso",
				FallbackError: "Erro ao criar agendamento",
			},
			{
				Name: "appointments.available_times", Method: http.MethodGet, Route: "/available-times",
				Path:          "/appointments/available-times",
				Query:         []proxy.QueryParam{proxy.Param("date"), proxy.Param("chairId"), proxy.Page(), proxy.Limit("9")},
				FallbackError: "Erro ao buscar horários disponíveis",
			},
			{
				Name: "appointments.mine", Method: http.MethodGet, Route: "/my-appointments",
				Path:     "/appointments/my-appointments",
				Query:    []proxy.QueryParam{proxy.Param("status"), proxy.Page(), proxy.Limit("6")},
				Envelope: proxy.EnvelopeWrap, List: true,
				FallbackError: "Erro ao buscar seus agendamentos",
			},
			{
				Name: "appointments.all_status", Method: http.MethodGet, Route: "/all-status",
				Path:          "/appointments/allStatus",
				FallbackError: "Erro ao buscar status dos agendamentos",
			},
			{
				Name: "appointments.confirm", Method: http.MethodPatch, Route: "/:id/confirm",
				Path: "/appointments/{id}/confirm", Roles: staff,
				Body:     proxy.BodyOptionalJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Agendamento confirmado com sucesso",
				FallbackError: "Erro ao confirmar agendamento",
			},
			{
				Name: "appointments.cancel", Method: http.MethodPatch, Route: "/:id/cancel",
				Path:     "/appointments/{id}/cancel",
				Body:     proxy.BodyOptionalJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Agendamento cancelado com sucesso",
				FallbackError: "Erro ao cancelar agendamento",
			},
			{
				Name: "appointments.cancel_by_admin", Method: http.MethodPatch, Route: "/:id/cancel-by-admin",
				Path: "/appointments/{id}/cancel", Roles: staff,
				Body:     proxy.BodyOptionalJSON,
				Envelope: proxy.EnvelopeWrap, SuccessMessage: "Agendamento cancelado com sucesso",
				FallbackError: "Erro ao cancelar agendamento",
			},
		},
	}
}

// Dashboard 管理面板统计
func Dashboard() Table {
	return Table{
		Name:        "dashboard",
		Description: "Admin dashboard statistics",
		Descriptors: []proxy.Descriptor{
			{
				Name: "dashboard.get", Method: http.MethodGet, Path: "/dashboard", Roles: adminOnly,
				Query:         []proxy.QueryParam{proxy.Param("from"), proxy.Param("to")},
				FallbackError: "Erro ao carregar o painel",
			},
		},
	}
}

package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

func TestDescriptor_Validate(t *testing.T) {
	valid := Descriptor{
		Name: "appointments.confirm", Method: http.MethodPatch, Route: "/:id/confirm",
		Path: "/appointments/{id}/confirm", Roles: []model.Role{model.RoleAdmin, model.RoleAttendant},
		Body: BodyOptionalJSON, FallbackError: "Erro ao confirmar agendamento",
	}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, []string{"id"}, valid.PathParams())

	cases := map[string]func(d *Descriptor){
		"missing fallback":      func(d *Descriptor) { d.FallbackError = "" },
		"unknown role":          func(d *Descriptor) { d.Roles = []model.Role{"root"} },
		"param not in route":    func(d *Descriptor) { d.Route = "/confirm" },
		"list without paging":   func(d *Descriptor) { d.List = true },
		"body on GET":           func(d *Descriptor) { d.Method = http.MethodGet },
		"required without JSON": func(d *Descriptor) { d.Required = []string{"reason"} },
		"missing path":          func(d *Descriptor) { d.Path = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := valid
			mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDescriptor_Allows(t *testing.T) {
	open := Descriptor{}
	assert.True(t, open.Allows(model.RoleUser))

	gated := Descriptor{Roles: []model.Role{model.RoleAdmin, model.RoleAttendant}}
	assert.True(t, gated.Allows(model.RoleAttendant))
	assert.False(t, gated.Allows(model.RoleUser))
	assert.False(t, gated.Allows(""))
}

func TestExtractMessage(t *testing.T) {
	assert.Equal(t, "a", ExtractMessage([]byte(`{"message":"a","error":"b"}`)))
	assert.Equal(t, "b", ExtractMessage([]byte(`{"message":"","error":"b"}`)))
	assert.Equal(t, "", ExtractMessage([]byte(`{"error":{"code":1}}`)))
	assert.Equal(t, "", ExtractMessage([]byte(`["x"]`)))
	assert.Equal(t, "", ExtractMessage([]byte(`garbage`)))
	assert.Equal(t, "", ExtractMessage(nil))
}

func TestUpstream_StatusOutsideErrorRange(t *testing.T) {
	e := Upstream(http.StatusNotModified, nil, "fallback")
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "fallback", e.Message)
	assert.Nil(t, e.Details)
}

package proxy

import (
	"encoding/json"

	"github.com/vera-byte/vgo-booking/pkg/model"
)

// wrap 将后端成功响应包装为统一信封
// 后端已返回 {data, pagination, message} 时取其字段，否则整个响应体作为 data
func wrap(d Descriptor, body []byte) model.Envelope {
	env := model.Envelope{
		Success: true,
		Message: d.SuccessMessage,
	}

	var data json.RawMessage
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && fields != nil {
		if inner, ok := fields["data"]; ok {
			data = inner
			if msg := stringField(fields, "message"); msg != "" {
				env.Message = msg
			}
			if raw, ok := fields["pagination"]; ok {
				var p model.Pagination
				if err := json.Unmarshal(raw, &p); err == nil {
					env.Pagination = &p
				}
			}
		} else {
			data = body
		}
	} else if json.Valid(body) {
		data = body
	} else {
		encoded, _ := json.Marshal(string(body))
		data = encoded
	}
	env.Data = data

	if d.List && env.Pagination == nil {
		p := model.SinglePage(countItems(data))
		env.Pagination = &p
	}
	return env
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// countItems 数组返回元素个数，其他值返回 0
func countItems(data json.RawMessage) int {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0
	}
	return len(items)
}

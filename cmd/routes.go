package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/modules/resources"
)

// routesCmd 输出代理端点表，无需配置文件
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the proxy endpoint table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printDescriptorTable(cmd.OutOrStdout(), resources.All())
	},
}

// configCmd 输出解析后的配置，密钥类字段不输出
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, string(data))
		fmt.Fprintf(out, "\nresolved backend URL: %q\n", cfg.BackendURL())
		fmt.Fprintf(out, "session secret set:   %t\n", cfg.Session.Secret != "")
		return nil
	},
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// printRouteTable 输出gin注册的全部路由
func printRouteTable(w io.Writer, routes gin.RoutesInfo) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	table := newTable(w, []string{"Method", "Path", "Handler"})
	for _, route := range routes {
		// 截断过长的处理器名称
		handler := route.Handler
		if len(handler) > 60 {
			handler = handler[:57] + "..."
		}
		table.Append([]string{route.Method, route.Path, handler})
	}

	fmt.Fprintf(w, "\nRoutes (%d):\n", len(routes))
	table.Render()
}

// printDescriptorTable 输出每个代理端点的后端映射、角色与查询白名单
func printDescriptorTable(w io.Writer, tables []resources.Table) error {
	table := newTable(w, []string{"Method", "Route", "Upstream", "Roles", "Query", "Envelope"})
	count := 0
	for _, t := range tables {
		for _, d := range t.Descriptors {
			if err := d.Validate(); err != nil {
				return err
			}
			table.Append([]string{
				d.Method,
				"/api/" + t.Name + d.Route,
				upstream(d),
				roles(d),
				query(d.Query),
				envelope(d),
			})
			count++
		}
	}

	fmt.Fprintf(w, "\nProxy endpoints (%d):\n", count)
	table.Render()
	return nil
}

func upstream(d proxy.Descriptor) string {
	method := d.UpstreamMethod
	if method == "" {
		method = d.Method
	}
	return method + " " + d.Path
}

func roles(d proxy.Descriptor) string {
	if !d.RequiresRole() {
		return "session"
	}
	names := make([]string, 0, len(d.Roles))
	for _, r := range d.Roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ",")
}

func query(params []proxy.QueryParam) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Default != "" {
			parts = append(parts, p.Name+"="+p.Default)
		} else {
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, " ")
}

func envelope(d proxy.Descriptor) string {
	switch {
	case d.Envelope == proxy.EnvelopeWrap && d.List:
		return "wrap+pagination"
	case d.Envelope == proxy.EnvelopeWrap:
		return "wrap"
	}
	return "raw"
}

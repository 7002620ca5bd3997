package cli

import (
	"io"
	"sort"

	"momentum/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RouteInfo is one line of the route table.
type RouteInfo struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the HTTP route table as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes do not touch the connections, so none are opened.
		app := server.NewServerWithDeps(cfg, nil, nil, nil, nil).App()
		return writeRoutes(cmd.OutOrStdout(), routeTable(app))
	},
}

func routeTable(app *fiber.App) []RouteInfo {
	var routes []RouteInfo
	seen := make(map[RouteInfo]bool)
	for _, r := range app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodOptions {
			continue
		}
		info := RouteInfo{Method: r.Method, Path: r.Path}
		if seen[info] {
			continue
		}
		seen[info] = true
		routes = append(routes, info)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

func writeRoutes(w io.Writer, routes []RouteInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]RouteInfo{"routes": routes}); err != nil {
		return err
	}
	return enc.Close()
}

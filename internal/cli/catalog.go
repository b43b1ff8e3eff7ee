package cli

import (
	"fmt"

	"github.com/julianstephens/dailycal/internal/daily"
)

type CatalogCmd struct{}

func (c *CatalogCmd) Run(ctx *Context) error {
	presets := ctx.Catalog.Presets()
	ctx.printf("%d presets, played in order then at random:\n\n", len(presets))

	invalid := 0
	for i, p := range presets {
		route, err := daily.RouteFor(p.Mode)
		if err != nil {
			route = failStyle.Render("no route")
			invalid++
		}
		line := fmt.Sprintf("  %3d. level %-5d %-7s %s", i+1, p.LevelID, p.Mode, route)
		if p.Name != "" {
			line += "  " + headerStyle.Render(p.Name)
		}
		ctx.println(line)
	}

	if invalid > 0 {
		return fmt.Errorf("%d presets use an unknown game mode", invalid)
	}
	return nil
}

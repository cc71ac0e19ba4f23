// Command storefront runs the storefront API and its maintenance commands.
package main

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/providers"
	"github.com/shashiranjanraj/storefront/app/routes"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

func main() {
	app.New("storefront", provide).Seeds(seeders.RunAll).Run()
}

func provide(_ context.Context, in *app.Infra) (func(*router.Router), error) {
	c, err := providers.Boot(in)
	if err != nil {
		return nil, err
	}
	return func(r *router.Router) { routes.RegisterAPI(r, c) }, nil
}

// storectl is the operator CLI for the storefront slot store: seeding,
// product inventory edits, order status changes and a live view of the
// cart-change signal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/example/planshop/internal/adapter/natsstan"
	"github.com/example/planshop/internal/adapter/repo"
	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/obs"
	"github.com/example/planshop/internal/usecase"
)

func main() {
	obs.InitLogger()

	app := &cli.App{
		Name:  "storectl",
		Usage: "administer the storefront slot store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: "planshop.db", Usage: "path to the sqlite slot store"},
		},
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "write the default seed products when the store is empty",
				Action: func(c *cli.Context) error {
					catalog, _, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					if err := catalog.EnsureSeeded(c.Context); err != nil {
						return err
					}
					return catalog.Reconcile(c.Context)
				},
			},
			{
				Name:  "products",
				Usage: "list the unified catalog",
				Action: func(c *cli.Context) error {
					catalog, _, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					products, err := catalog.List(c.Context)
					if err != nil {
						return err
					}
					return printJSON(products)
				},
			},
			{
				Name:  "product-add",
				Usage: "insert or replace an authored product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id"},
					&cli.StringFlag{Name: "modelo"},
					&cli.Int64Flag{Name: "precio"},
					&cli.StringFlag{Name: "categoria"},
					&cli.StringFlag{Name: "img"},
				},
				Action: func(c *cli.Context) error {
					catalog, _, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					stored, err := catalog.Upsert(c.Context, domain.AuthoredProduct{
						ID:        c.String("id"),
						Modelo:    c.String("modelo"),
						Precio:    c.Int64("precio"),
						Categoria: c.String("categoria"),
						Img:       c.String("img"),
					})
					if err != nil {
						return err
					}
					return printJSON(stored)
				},
			},
			{
				Name:      "product-rm",
				Usage:     "remove an authored product by id",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					catalog, _, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					return catalog.Remove(c.Context, c.Args().First())
				},
			},
			{
				Name:  "orders",
				Usage: "list the order log",
				Action: func(c *cli.Context) error {
					_, orders, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					list, err := orders.List(c.Context)
					if err != nil {
						return err
					}
					return printJSON(list)
				},
			},
			{
				Name:      "order-status",
				Usage:     "set an order's status",
				ArgsUsage: "<id> <pending|paid|shipped|cancelled>",
				Action: func(c *cli.Context) error {
					_, orders, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					return orders.SetStatus(c.Context, c.Args().Get(0), domain.OrderStatus(c.Args().Get(1)))
				},
			},
			{
				Name:      "order-rm",
				Usage:     "delete an order from the log",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					_, orders, closeStore, err := open(c)
					if err != nil {
						return err
					}
					defer closeStore()
					return orders.Delete(c.Context, c.Args().First())
				},
			},
			{
				Name:  "watch",
				Usage: "print cart-change signals from the STAN subject",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cluster", Value: "planshop-cluster"},
					&cli.StringFlag{Name: "url", Value: "nats://localhost:4222"},
					&cli.StringFlag{Name: "subject", Value: "cart.changed"},
					&cli.StringFlag{Name: "durable", Value: "storectl-watch"},
				},
				Action: func(c *cli.Context) error {
					sub := &natsstan.Subscriber{
						ClusterID: c.String("cluster"),
						URL:       c.String("url"),
						Subject:   c.String("subject"),
						Durable:   c.String("durable"),
					}
					err := sub.Subscribe(c.Context, func(_ context.Context, count int64) error {
						fmt.Printf("cart count: %d\n", count)
						return nil
					})
					if err != nil {
						return err
					}
					<-c.Context.Done()
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		obs.Logger.WithError(err).Fatal("storectl")
	}
}

func open(c *cli.Context) (*usecase.Catalog, *usecase.Orders, func(), error) {
	store, err := repo.OpenSQLite(c.String("db"))
	if err != nil {
		return nil, nil, nil, err
	}
	return usecase.NewCatalog(store), usecase.NewOrders(store), func() { _ = store.Close() }, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

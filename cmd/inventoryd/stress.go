package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// stressCommand fires concurrent single-unit removals at one item location
// and reports how the store and the cache ended up. Without per-item
// locking the final stock may disagree with the request count.
func stressCommand() *cli.Command {
	return &cli.Command{
		Name:  "stress",
		Usage: "run concurrent stock removals against one item",
		Flags: append(credentialFlags(),
			&cli.StringFlag{Name: "item", Required: true},
			&cli.StringFlag{Name: "location", Required: true},
			&cli.IntFlag{Name: "requests", Value: 50},
		),
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				session, err := rt.login(c)
				if err != nil {
					return err
				}
				if _, _, err := rt.inventory.LoadAll(c.Context); err != nil {
					return err
				}

				itemID, location := c.String("item"), c.String("location")
				before, err := rt.cache.GetItem(c.Context, itemID)
				if err != nil {
					return err
				}
				if before == nil {
					return fmt.Errorf("item %s not found", itemID)
				}

				var successCount, failCount atomic.Int32
				var wg sync.WaitGroup
				start := time.Now()

				for i := 0; i < c.Int("requests"); i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						if _, err := rt.stock.RemoveStock(c.Context, session, itemID, location); err != nil {
							failCount.Add(1)
							return
						}
						successCount.Add(1)
					}()
				}
				wg.Wait()
				elapsed := time.Since(start)

				if _, _, err := rt.inventory.LoadAll(c.Context); err != nil {
					return err
				}
				after, err := rt.cache.GetItem(c.Context, itemID)
				if err != nil {
					return err
				}

				fmt.Println("========== STRESS TEST RESULTS ==========")
				fmt.Printf("Item:             %s @ %s\n", before.Article, location)
				fmt.Printf("Total Requests:   %d\n", c.Int("requests"))
				fmt.Printf("Successful:       %d\n", successCount.Load())
				fmt.Printf("Failed:           %d\n", failCount.Load())
				fmt.Printf("Duration:         %v\n", elapsed)
				slot := domain.ResolveLocationSlot(*before, location)
				fmt.Printf("Stock before:     %d\n", before.Stock(slot))
				if after != nil {
					fmt.Printf("Stock after:      %d\n", after.Stock(slot))
				}
				fmt.Println("==========================================")
				return nil
			})
		},
	}
}

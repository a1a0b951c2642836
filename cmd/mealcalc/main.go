// mealcalc works with culinary quantities from the command line.
//
// Usage:
//
//	mealcalc parse "1 1/2"
//	mealcalc format --whole 1 --num 3 --denom 4 --unit cup --long
//	mealcalc convert --from cup --to ml "3/4"
//	mealcalc shopping-list --catalog catalog.yaml --user 1 --week 2024-03-04
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/mealplanner/backend/internal/infrastructure/cache"
	"github.com/mealplanner/backend/internal/infrastructure/catalog"
	"github.com/mealplanner/backend/internal/infrastructure/logging"
	"github.com/mealplanner/backend/internal/usecase"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "mealcalc",
		Usage:     "Exact fraction arithmetic, unit conversion and shopping lists",
		Version:   version,
		Writer:    out,
		ErrWriter: os.Stderr,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"MEALCALC_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "display",
				Value:   string(usecase.FormatAuto),
				Usage:   "Display mode (auto, fraction, decimal)",
				EnvVars: []string{"MEALCALC_DISPLAY"},
			},
		},

		Commands: []*cli.Command{
			parseCommand(),
			formatCommand(),
			convertCommand(),
			scaleCommand(),
			shoppingListCommand(),
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a quantity and print its normalized forms",
		ArgsUsage: "QUANTITY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Value: string(usecase.InputModeFraction),
				Usage: "Input mode (fraction, decimal)",
			},
		},
		Action: func(c *cli.Context) error {
			mode, err := usecase.ParseInputMode(c.String("mode"))
			if err != nil {
				return err
			}
			q, err := usecase.NewQuantityParser(mode).Parse(argument(c))
			if err != nil {
				return err
			}

			n := q.Normalize()
			fmt.Fprintf(c.App.Writer, "%s\t(%s)\n",
				usecase.FormatQuantity(n, usecase.FormatFraction),
				usecase.FormatQuantity(n, usecase.FormatDecimal))
			return nil
		},
	}
}

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:  "format",
		Usage: "Render a stored whole/num/denom triple",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "whole", Usage: "Whole part"},
			&cli.Int64Flag{Name: "num", Usage: "Numerator"},
			&cli.Int64Flag{Name: "denom", Value: 1, Usage: "Denominator"},
			&cli.StringFlag{Name: "unit", Usage: "Unit to append"},
			&cli.BoolFlag{Name: "long", Usage: "Use long, pluralized unit labels"},
		},
		Action: func(c *cli.Context) error {
			display, err := usecase.ParseFormatMode(c.String("display"))
			if err != nil {
				return err
			}
			q, err := usecase.DBToQuantity(c.Int64("whole"), c.Int64("num"), c.Int64("denom"))
			if err != nil {
				return err
			}

			formatter := usecase.NewQuantityFormatter(usecase.DefaultDecimalPlaces)
			if c.String("unit") == "" {
				fmt.Fprintln(c.App.Writer, formatter.Format(q, display))
				return nil
			}
			unit, err := domain.ParseUnit(c.String("unit"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, formatter.FormatWithUnit(q, unit, display, c.Bool("long")))
			return nil
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a quantity between units of one measurement type",
		ArgsUsage: "QUANTITY",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Source unit", Required: true},
			&cli.StringFlag{Name: "to", Usage: "Target unit", Required: true},
		},
		Action: func(c *cli.Context) error {
			display, err := usecase.ParseFormatMode(c.String("display"))
			if err != nil {
				return err
			}
			q, err := usecase.ParseQuantity(argument(c))
			if err != nil {
				return err
			}
			from, err := domain.ParseUnit(c.String("from"))
			if err != nil {
				return err
			}
			to, err := domain.ParseUnit(c.String("to"))
			if err != nil {
				return err
			}

			converter := usecase.NewUnitConverter(usecase.DefaultKitchenDenominator)
			converted, err := converter.Convert(q, from, to)
			if err != nil {
				return err
			}
			value, err := converter.ConvertValue(usecase.DecimalValue(q, 10), from, to)
			if err != nil {
				return err
			}

			formatter := usecase.NewQuantityFormatter(usecase.DefaultDecimalPlaces)
			fmt.Fprintf(c.App.Writer, "%s = %s (%s %s)\n",
				formatter.FormatWithUnit(q, from, display, true),
				formatter.FormatWithUnit(converted, to, display, true),
				value.StringFixed(usecase.DisplayPlaces), to)
			return nil
		},
	}
}

func scaleCommand() *cli.Command {
	return &cli.Command{
		Name:      "scale",
		Usage:     "Scale a quantity from one serving count to another",
		ArgsUsage: "QUANTITY",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "from", Usage: "Servings the quantity is written for", Required: true},
			&cli.Int64Flag{Name: "to", Usage: "Servings to cook", Required: true},
		},
		Action: func(c *cli.Context) error {
			display, err := usecase.ParseFormatMode(c.String("display"))
			if err != nil {
				return err
			}
			q, err := usecase.ParseQuantity(argument(c))
			if err != nil {
				return err
			}
			factor, err := usecase.ScaleFactor(c.Int64("to"), c.Int64("from"))
			if err != nil {
				return err
			}
			scaled, err := q.Mul(factor)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, usecase.FormatQuantity(scaled, display))
			return nil
		},
	}
}

func shoppingListCommand() *cli.Command {
	return &cli.Command{
		Name:  "shopping-list",
		Usage: "Aggregate a user's planned meals from a catalog file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Aliases: []string{"c"}, Value: "catalog.yaml", Usage: "Path to the catalog YAML", EnvVars: []string{"MEALPLANNER_CATALOG_PATH"}},
			&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Usage: "User id", Required: true},
			&cli.StringFlag{Name: "week", Usage: "First day of a seven day range (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "start", Usage: "First day of the range (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "Last day of the range (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format (text, json)"},
		},
		Action: runShoppingList,
	}
}

func runShoppingList(c *cli.Context) error {
	logger, err := logging.New(c.String("log-level"), true, c.App.ErrWriter)
	if err != nil {
		return err
	}
	display, err := usecase.ParseFormatMode(c.String("display"))
	if err != nil {
		return err
	}

	start, end, err := dateRange(c.String("week"), c.String("start"), c.String("end"))
	if err != nil {
		return err
	}

	store, err := catalog.Open(c.String("catalog"), logger)
	if err != nil {
		return err
	}
	service := usecase.NewShoppingListService(
		store, store, store,
		cache.NewNoopCache(),
		usecase.NewAggregator(usecase.NewUnitConverter(usecase.DefaultKitchenDenominator), logger),
		usecase.ShoppingListServiceConfig{},
		logger,
	)

	list, err := service.Generate(c.Context, c.Int64("user"), start, end)
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "text":
		printShoppingList(c.App.Writer, list, display)
		return nil
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

// dateRange resolves --week or --start/--end into an inclusive range
func dateRange(week, start, end string) (time.Time, time.Time, error) {
	if week != "" {
		t, err := time.Parse("2006-01-02", week)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --week: %w", err)
		}
		from, to := usecase.WeekRange(t)
		return from, to, nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either --week or both --start and --end are required")
	}

	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func printShoppingList(w io.Writer, list *domain.ShoppingList, mode usecase.FormatMode) {
	formatter := usecase.NewQuantityFormatter(usecase.DefaultDecimalPlaces)

	fmt.Fprintf(w, "Shopping list %s to %s (%d meals)\n",
		list.StartDate.Format("2006-01-02"), list.EndDate.Format("2006-01-02"), list.TotalMeals)

	for _, group := range list.IngredientsByCategory {
		fmt.Fprintf(w, "\n%s\n", group.Category)
		for _, item := range group.Ingredients {
			line := fmt.Sprintf("  [ ] %s %s", formatter.FormatWithUnit(item.Quantity, item.Unit, mode, true), item.IngredientName)
			if item.Checked {
				line = strings.Replace(line, "[ ]", "[x]", 1)
			}
			if item.Accumulation == domain.CrossUnitBaseSum {
				line += fmt.Sprintf(" (%s %s total)", item.BaseValue.StringFixed(usecase.DisplayPlaces), item.BaseUnit)
			}
			if len(item.PrepNotes) > 0 {
				line += " - " + strings.Join(item.PrepNotes, "; ")
			}
			fmt.Fprintln(w, line)
		}
	}
}

func argument(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}

package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

var credentialFlags = []cli.Flag{
	&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
	&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"BILLED_PASSWORD"}},
}

func signupCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "create an account and log in",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Value: entity.UserTypeEmployee, Usage: "Employee or Admin"},
		}, credentialFlags...),
		Action: func(c *cli.Context) error {
			session, err := e.client.Signup(c.Context, c.String("email"), c.String("password"), c.String("type"))
			if err != nil {
				return err
			}
			return e.open(*session)
		},
	}
}

func loginCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and keep the session",
		Flags: credentialFlags,
		Action: func(c *cli.Context) error {
			session, err := e.client.Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			return e.open(*session)
		},
	}
}

// open saves the session and lands on the home view of its user type
func (e *env) open(session entity.Session) error {
	if err := e.sessions.Save(session); err != nil {
		return err
	}

	nav := &consoleNavigator{w: e.stderr}
	if session.IsAdmin() {
		nav.Navigate(port.RouteDashboard)
	} else {
		nav.Navigate(port.RouteBills)
	}
	fmt.Fprintf(e.stdout, "Logged in as %s (%s)\n", session.Email, session.Type)
	return nil
}

func logoutCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the saved session",
		Action: func(c *cli.Context) error {
			if err := e.sessions.Clear(); err != nil {
				return err
			}
			(&consoleNavigator{w: e.stderr}).Navigate(port.RouteLogin)
			return nil
		},
	}
}

func billsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bills",
		Usage: "list your bills, most recent first",
		Action: func(c *cli.Context) error {
			_, client, err := e.connected()
			if err != nil {
				return err
			}
			return e.renderBills(c, client)
		},
	}
}

func (e *env) renderBills(c *cli.Context, store port.BillStore) error {
	rows, err := service.NewBillsList(store, e.serviceLogger()).Load(c.Context)
	if err != nil {
		return fmt.Errorf("%s", service.ErrorMessage(err))
	}
	return printBillRows(e.stdout, rows)
}

func newBillCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "submit a new bill with its receipt",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Required: true, Usage: "one of: " + strings.Join(entity.ExpenseTypes, ", ")},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "amount", Required: true},
			&cli.StringFlag{Name: "vat"},
			&cli.StringFlag{Name: "pct", Usage: "VAT percentage, 20 when empty"},
			&cli.StringFlag{Name: "commentary"},
			&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "receipt image (.jpg, .jpeg, .png)"},
		},
		Action: func(c *cli.Context) error {
			session, client, err := e.connected()
			if err != nil {
				return err
			}

			nav := &consoleNavigator{w: e.stderr}
			nav.Navigate(port.RouteNewBill)

			submission := service.NewBillSubmission(client, session, consoleNotifier{w: e.stderr}, nav, e.serviceLogger())
			if err := submission.Fill(entity.BillForm{
				Type:       c.String("type"),
				Name:       c.String("name"),
				Date:       c.String("date"),
				Amount:     c.String("amount"),
				VAT:        c.String("vat"),
				Pct:        c.String("pct"),
				Commentary: c.String("commentary"),
			}); err != nil {
				return err
			}

			receipt, err := readReceipt(c.Path("file"))
			if err != nil {
				return err
			}
			if _, err := submission.SelectFile(receipt); err != nil {
				return err
			}

			if err := submission.Submit(c.Context); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "Bill %s created\n", submission.Result().ID)

			if nav.route == port.RouteBills {
				return e.renderBills(c, client)
			}
			return nil
		},
	}
}

func readReceipt(path string) (*entity.ReceiptFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	name := filepath.Base(path)
	return &entity.ReceiptFile{
		Name:        name,
		ContentType: mime.TypeByExtension(strings.ToLower(bills.Extension(name))),
		Content:     content,
	}, nil
}

func dashboardCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "show the review queues by status",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "open", Aliases: []string{"o"}, Usage: "status groups to expand: pending, accepted, refused"},
		},
		Action: func(c *cli.Context) error {
			dashboard, err := e.dashboard(c)
			if err != nil {
				return err
			}
			for _, s := range c.StringSlice("open") {
				status := entity.BillStatus(strings.TrimSpace(s))
				if !status.IsValid() {
					return fmt.Errorf("unknown status %q", s)
				}
				if !dashboard.IsGroupOpen(status) {
					dashboard.ToggleGroup(status)
				}
			}
			return printGroups(e.stdout, dashboard.Groups())
		},
	}
}

func (e *env) dashboard(c *cli.Context) (*service.DashboardReview, error) {
	_, client, err := e.connected()
	if err != nil {
		return nil, err
	}

	dashboard := service.NewDashboardReview(client, e.serviceLogger())
	if err := dashboard.Load(c.Context); err != nil {
		return nil, fmt.Errorf("%s", dashboard.ErrorMessage())
	}
	return dashboard, nil
}

// selectArg loads the dashboard and shows the bill named by the first argument
func (e *env) selectArg(c *cli.Context) (*service.DashboardReview, error) {
	id := c.Args().First()
	if id == "" {
		return nil, fmt.Errorf("bill id argument is required")
	}

	dashboard, err := e.dashboard(c)
	if err != nil {
		return nil, err
	}
	if err := dashboard.SelectBill(id); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func showCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show one bill in the review form",
		ArgsUsage: "<bill-id>",
		Action: func(c *cli.Context) error {
			dashboard, err := e.selectArg(c)
			if err != nil {
				return err
			}
			return printBill(e.stdout, dashboard.Selected())
		},
	}
}

func acceptCommand(e *env) *cli.Command {
	return reviewCommand(e, "accept", "accept a pending bill", bills.FormatStatus(entity.StatusAccepted), (*service.DashboardReview).Accept)
}

func refuseCommand(e *env) *cli.Command {
	return reviewCommand(e, "refuse", "refuse a pending bill", bills.FormatStatus(entity.StatusRefused), (*service.DashboardReview).Refuse)
}

func reviewCommand(e *env, name, usage, done string, apply func(*service.DashboardReview, context.Context, string) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<bill-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "comment", Aliases: []string{"m"}, Usage: "admin comment, the current one is kept when empty"},
		},
		Action: func(c *cli.Context) error {
			dashboard, err := e.selectArg(c)
			if err != nil {
				return err
			}
			id := dashboard.Selected().ID
			if err := apply(dashboard, c.Context, c.String("comment")); err != nil {
				return err
			}

			fmt.Fprintf(e.stdout, "Bill %s: %s\n", id, done)
			return printGroups(e.stdout, dashboard.Groups())
		},
	}
}

func exportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "download every bill as an xlsx workbook",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Value: "bills.xlsx"},
		},
		Action: func(c *cli.Context) error {
			_, client, err := e.connected()
			if err != nil {
				return err
			}

			out, err := os.Create(c.Path("output"))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := client.Export(c.Context, out); err != nil {
				out.Close()
				_ = os.Remove(c.Path("output"))
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			fmt.Fprintf(e.stdout, "Exported to %s\n", c.Path("output"))
			return nil
		},
	}
}
